// Package uploadsrv serves the remote side of the sync protocol:
//
//	GET    /uploads/{owner}/{id}  200 + URL when stored, 200 + empty body otherwise
//	POST   /uploads/{owner}/{id}  multipart field "file", 200 + URL
//	DELETE /uploads/{owner}/{id}  200 + empty body, also for absent objects
//
// Requests carry a bearer token whose subject must equal {owner}. Stored
// files are readable without a token under /files, and /metrics exposes
// request and cache metrics in the prometheus text format.
package uploadsrv

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rise-and-shine/gallery/bytecache"
	"github.com/rise-and-shine/gallery/filestore"
	"github.com/rise-and-shine/gallery/http/server/middleware"
	"github.com/rise-and-shine/gallery/logger"
	"github.com/rise-and-shine/gallery/meta"
	"github.com/rise-and-shine/gallery/syncclient"
	"github.com/rise-and-shine/gallery/token"
)

const metricsNamespace = "gallery_uploadsrv"

// Service implements the upload protocol over a FileStore.
type Service struct {
	cfg   Config
	store filestore.FileStore
	maker *token.JWTMaker
	cache *bytecache.Cache
	log   logger.Logger

	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

// New returns a Service storing files in store and verifying tokens with maker.
func New(cfg Config, store filestore.FileStore, maker *token.JWTMaker, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		cfg:      cfg,
		store:    store,
		maker:    maker,
		cache:    bytecache.New(cfg.CacheCapacity),
		log:      log.Named("uploadsrv"),
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Protocol requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	s.registry.MustRegister(s.requests, bytecache.NewCollector(metricsNamespace+"_files", s.cache))
	return s
}

// Register mounts the service routes on r.
func (s *Service) Register(r fiber.Router) {
	r.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	r.Post("/token", s.issueToken)
	r.Get("/files/:owner/:name", s.serveFile)

	const uploads = "/uploads/:owner/:id"
	r.Get(uploads, s.authenticate, s.exists)
	r.Post(uploads, s.authenticate, s.upload)
	r.Delete(uploads, s.authenticate, s.remove)
}

// Registry returns the registry behind /metrics.
func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Service) authenticate(c *fiber.Ctx) error {
	raw, err := token.FromHeader(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	payload, err := s.maker.VerifyToken(raw)
	if err != nil {
		return err
	}

	owner, _ := url.PathUnescape(c.Params("owner"))
	if payload.Owner() != owner {
		return errx.New("token does not belong to this owner",
			errx.WithCode(CodeOwnerMismatch),
			errx.WithType(errx.T_Forbidden),
			errx.WithDetails(errx.D{"owner": owner}),
		)
	}

	c.Locals(middleware.LocalOwner, owner)
	c.SetUserContext(meta.InjectMetaToContext(c.UserContext(), map[meta.ContextKey]string{
		meta.Owner:   owner,
		meta.AssetID: c.Params("id"),
	}))
	return c.Next()
}

// key maps the route to the object key the sync clients use. Params arrive
// escaped; ObjectKey escapes again, so they are unescaped first.
func (s *Service) key(c *fiber.Ctx) string {
	owner, _ := url.PathUnescape(c.Params("owner"))
	id, _ := url.PathUnescape(c.Params("id"))
	return syncclient.ObjectKey(owner, id)
}

func (s *Service) fileURL(key string) string {
	return strings.TrimRight(s.cfg.PublicURL, "/") + "/files/" + key
}

func (s *Service) exists(c *fiber.Ctx) error {
	key := s.key(c)
	ok, err := s.store.Exists(c.UserContext(), key)
	if err != nil {
		s.requests.WithLabelValues("exists", "error").Inc()
		return errx.Wrap(err)
	}
	if !ok {
		s.requests.WithLabelValues("exists", "absent").Inc()
		return c.SendString("")
	}
	s.requests.WithLabelValues("exists", "present").Inc()
	return c.SendString(s.fileURL(key))
}

func (s *Service) upload(c *fiber.Ctx) error {
	fh, err := c.FormFile(syncclient.FileField)
	if err != nil {
		s.requests.WithLabelValues("upload", "rejected").Inc()
		return errx.New("multipart field \"file\" is required",
			errx.WithCode(CodeMissingFile),
			errx.WithType(errx.T_Validation),
		)
	}
	if fh.Size > s.cfg.MaxUploadSize {
		s.requests.WithLabelValues("upload", "rejected").Inc()
		return errx.New("file too large",
			errx.WithCode(filestore.CodeFileTooLarge),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"size": fh.Size, "limit": s.cfg.MaxUploadSize}),
		)
	}

	data, err := readForm(fh)
	if err != nil {
		s.requests.WithLabelValues("upload", "error").Inc()
		return err
	}
	if _, err = filestore.RequireContentType(data, filestore.ContentTypeGIF); err != nil {
		s.requests.WithLabelValues("upload", "rejected").Inc()
		return err
	}

	key := s.key(c)
	if _, err = s.store.Upload(c.UserContext(), key, bytes.NewReader(data)); err != nil {
		s.requests.WithLabelValues("upload", "error").Inc()
		return errx.Wrap(err)
	}
	s.cache.Put(key, data, s.cache.Cost(len(data)))

	s.requests.WithLabelValues("upload", "stored").Inc()
	s.log.WithContext(c.UserContext()).Debugf("stored %s (%d bytes)", key, len(data))
	return c.SendString(s.fileURL(key))
}

func (s *Service) remove(c *fiber.Ctx) error {
	key := s.key(c)
	if err := s.store.Delete(c.UserContext(), key); err != nil {
		s.requests.WithLabelValues("delete", "error").Inc()
		return errx.Wrap(err)
	}
	s.cache.Remove(key)

	s.requests.WithLabelValues("delete", "deleted").Inc()
	return c.SendString("")
}

func (s *Service) serveFile(c *fiber.Ctx) error {
	key := c.Params("owner") + "/" + c.Params("name")

	data, _, err := s.cache.Load(key, func() ([]byte, error) {
		data, _, err := filestore.ReadAll(c.UserContext(), s.store, key, s.cfg.MaxUploadSize)
		return data, err
	})
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, filestore.DetectContentType(data))
	return c.Send(data)
}

func readForm(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errx.Wrap(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return data, nil
}
