package cfgloader

import (
	"reflect"

	"github.com/rise-and-shine/gallery/logger"
	"gopkg.in/yaml.v3"
)

const (
	maskTag    = "mask"
	maskedText = "********"
)

func printConfig(log logger.Logger, config any) {
	if log == nil {
		log = logger.L().Named("cfgloader")
	}
	out, err := yaml.Marshal(redact(config))
	if err != nil {
		log.Warnx(err)
		return
	}
	log.Infof("loaded config:\n%s", out)
}

// redact returns a copy of cfg where every field tagged `mask:"true"` has
// its strings replaced, including strings nested in maps and slices.
func redact(cfg any) any {
	v := reflect.ValueOf(cfg)
	if !v.IsValid() {
		return cfg
	}
	return walk(v, false).Interface()
}

func walk(v reflect.Value, secret bool) reflect.Value {
	switch v.Kind() { //nolint:exhaustive // remaining kinds are copied as is
	case reflect.String:
		if secret && v.Len() > 0 {
			return reflect.ValueOf(maskedText).Convert(v.Type())
		}
		return v

	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return v
		}
		inner := walk(v.Elem(), secret)
		if v.Kind() == reflect.Interface {
			return inner
		}
		p := reflect.New(inner.Type())
		p.Elem().Set(inner)
		return p

	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := range v.NumField() {
			f := v.Type().Field(i)
			if !f.IsExported() {
				continue
			}
			out.Field(i).Set(walk(v.Field(i), secret || f.Tag.Get(maskTag) == "true"))
		}
		return out

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), walk(iter.Value(), secret))
		}
		return out

	case reflect.Slice:
		if v.IsNil() || v.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			out.Index(i).Set(walk(v.Index(i), secret))
		}
		return out

	default:
		if secret && !v.IsZero() {
			return reflect.Zero(v.Type())
		}
		return v
	}
}
