package logger

import (
	"encoding/json"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

//nolint:gochecknoglobals // palette is a static lookup shared across encoder instances.
var levelColors = map[zapcore.Level]*color.Color{
	zapcore.DebugLevel:  color.New(color.FgCyan),
	zapcore.InfoLevel:   color.New(color.FgGreen),
	zapcore.WarnLevel:   color.New(color.FgYellow),
	zapcore.ErrorLevel:  color.New(color.FgRed, color.Bold),
	zapcore.DPanicLevel: color.New(color.FgRed, color.Bold),
	zapcore.PanicLevel:  color.New(color.FgRed, color.Bold),
	zapcore.FatalLevel:  color.New(color.FgMagenta, color.Bold),
}

// prettyEncoder renders a one-line colored header and indents any fields
// below it as JSON.
type prettyEncoder struct {
	zapcore.Encoder
	pool buffer.Pool
}

func newPrettyEncoder(inner zapcore.Encoder) zapcore.Encoder {
	return &prettyEncoder{Encoder: inner, pool: buffer.NewPool()}
}

// Clone keeps derived loggers on the pretty encoder.
func (e *prettyEncoder) Clone() zapcore.Encoder {
	return &prettyEncoder{Encoder: e.Encoder.Clone(), pool: e.pool}
}

func (e *prettyEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	jsonBuf, err := e.Encoder.EncodeEntry(entry, fields)
	if err != nil {
		return nil, err
	}
	defer jsonBuf.Free()

	out := e.pool.Get()
	out.AppendString(header(entry))

	var payload map[string]any
	if err = json.Unmarshal(jsonBuf.Bytes(), &payload); err != nil {
		out.AppendByte(' ')
		out.AppendString(strings.TrimSpace(jsonBuf.String()))
		out.AppendByte('\n')
		return out, nil
	}

	for _, k := range []string{timeKey, levelKey, messageKey, nameKey} {
		delete(payload, k)
	}

	if len(payload) > 0 {
		pretty, marshalErr := json.MarshalIndent(payload, "", "  ")
		if marshalErr == nil {
			out.AppendByte('\n')
			out.AppendString(color.New(color.Faint).Sprint(string(pretty)))
		}
	}
	out.AppendByte('\n')

	return out, nil
}

func header(entry zapcore.Entry) string {
	var b strings.Builder
	b.WriteString(color.New(color.Faint).Sprint("[" + entry.Time.Format("2006-01-02 15:04:05") + "]"))
	b.WriteByte(' ')

	lvl := entry.Level.CapitalString()
	if c, ok := levelColors[entry.Level]; ok {
		lvl = c.Sprint(lvl)
	}
	b.WriteString(lvl)

	if entry.LoggerName != "" {
		b.WriteString(" (" + entry.LoggerName + ")")
	}
	b.WriteByte(' ')
	b.WriteString(entry.Message)
	return b.String()
}
