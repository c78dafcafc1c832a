package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"companion_mock/internal/config"
	"companion_mock/internal/logbus"
	"companion_mock/internal/store/sqlite"
	"companion_mock/internal/ws"
)

type Options struct {
	Cfg   config.Config
	Bus   *logbus.Bus
	Log   *zap.Logger
	Store *sqlite.Store
	// Now defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	cfg      config.Config
	bus      *logbus.Bus
	log      *zap.Logger
	store    *sqlite.Store
	now      func() time.Time
	ws       *ws.Handler
	validate *validator.Validate
	limiter  *rate.Limiter
	legacy   *legacyProxy
}

func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	bus := opts.Bus
	if bus == nil {
		bus = logbus.New(opts.Cfg.Log.BusSize, log)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Server{
		cfg:      opts.Cfg,
		bus:      bus,
		log:      log,
		store:    opts.Store,
		now:      now,
		ws:       ws.NewHandler(bus, opts.Cfg.Server.Cors.AllowOrigins),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	if qps := opts.Cfg.Limits.QPS; qps > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(qps), max(opts.Cfg.Limits.Burst, 1))
	}
	s.legacy = newLegacyProxy(opts.Cfg.Legacy, bus)
	return s
}

// routeGroup binds a path prefix to its payload key and handlers.
type routeGroup struct {
	prefix string
	key    string
	mount  func(s *Server, out responder, r *mux.Router)
}

var routeGroups = []routeGroup{
	{"/api/auth", keyContext, func(s *Server, out responder, r *mux.Router) { authAPI{s, out}.routes(r) }},
	{"/api/parent", keyContext, func(s *Server, out responder, r *mux.Router) { parentAPI{s, out}.routes(r) }},
	{"/api/companion", keyContext, func(s *Server, out responder, r *mux.Router) { companionAPI{s, out}.routes(r) }},
	{"/api/demand", keyData, func(s *Server, out responder, r *mux.Router) { demandAPI{s, out}.routes(r) }},
	{"/api/order", keyData, func(s *Server, out responder, r *mux.Router) { orderAPI{s, out}.routes(r) }},
	{"/api/extension", keyData, func(s *Server, out responder, r *mux.Router) { extensionAPI{s, out}.routes(r) }},
	{"/api/payment", keyContext, func(s *Server, out responder, r *mux.Router) { paymentAPI{s, out}.routes(r) }},
	{"/api/message", keyContext, func(s *Server, out responder, r *mux.Router) { messageAPI{s, out}.routes(r) }},
	{"/api/review", keyData, func(s *Server, out responder, r *mux.Router) { reviewAPI{s, out}.routes(r) }},
	{"/api/admin", keyContext, func(s *Server, out responder, r *mux.Router) { adminAPI{s, out}.routes(r) }},
	{"/api/mourning", keyData, func(s *Server, out responder, r *mux.Router) { mourningAPI{s, out}.routes(r) }},
}

var legacyPrefixes = []string{"/api/luxmall-infra", "/api/luxmall-staff"}

func (s *Server) responder(key string) responder {
	return responder{key: key, log: s.log, validate: s.validate}
}

// responderFor picks the payload key of the group owning path.
func (s *Server) responderFor(path string) responder {
	for _, g := range routeGroups {
		if path == g.prefix || strings.HasPrefix(path, g.prefix+"/") {
			return s.responder(g.key)
		}
	}
	return s.responder(keyData)
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/api/dev/logs", s.ws)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	for _, g := range routeGroups {
		g.mount(s, s.responder(g.key), r.PathPrefix(g.prefix).Subrouter())
	}
	for _, p := range legacyPrefixes {
		r.PathPrefix(p + "/").HandlerFunc(s.handleLegacy)
	}

	notFound := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.responderFor(req.URL.Path).fail(w, http.StatusNotFound, msgNotFoundRoute)
	})
	r.NotFoundHandler = s.observe(notFound)
	r.MethodNotAllowedHandler = s.observe(notFound)
	r.Use(s.observe)

	var h http.Handler = r
	h = s.recoverPanics(h)
	h = s.rateLimit(h)
	h = s.limitBody(h)
	return corsMiddleware(s.cfg.Server.Cors, h)
}

type healthStatus struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		down := map[string]any{"database": map[string]string{"status": "down", "message": err.Error()}}
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":  "error",
			"info":    map[string]any{},
			"error":   down,
			"details": down,
		})
		return
	}
	up := map[string]healthStatus{"database": {Status: "up"}}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"info":    up,
		"error":   map[string]any{},
		"details": up,
	})
}
