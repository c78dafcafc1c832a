package httpapi

import (
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"companion_mock/internal/config"
	"companion_mock/internal/logbus"
	"companion_mock/internal/metrics"
)

// legacyProxy forwards the old luxmall routes to an upstream service.
type legacyProxy struct {
	cfg      config.LegacyConfig
	bus      *logbus.Bus
	sessions *legacyJars
}

func newLegacyProxy(cfg config.LegacyConfig, bus *logbus.Bus) *legacyProxy {
	return &legacyProxy{
		cfg:      cfg,
		bus:      bus,
		sessions: newLegacyJars(cfg),
	}
}

func (p *legacyProxy) enabled() bool {
	return strings.TrimSpace(p.cfg.BaseURL) != ""
}

func (p *legacyProxy) newClient(jar *cookiejar.Jar) *resty.Client {
	client := resty.New().
		SetTimeout(p.cfg.Timeout()).
		SetCookieJar(jar).
		SetRetryCount(p.cfg.Retry.Count).
		SetRetryWaitTime(p.cfg.Retry.Wait()).
		SetRetryMaxWaitTime(p.cfg.Retry.MaxWait()).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			if r == nil {
				return true
			}
			return r.StatusCode() >= 500
		})

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		p.bus.Log("debug", "代理请求", map[string]any{
			"method": req.Method,
			"url":    req.URL,
		})
		return nil
	})
	return client
}

func (s *Server) handleLegacy(w http.ResponseWriter, r *http.Request) {
	out := s.responder(keyData)
	if !s.legacy.enabled() {
		out.fail(w, http.StatusNotFound, msgNotFoundRoute)
		return
	}
	upURL, err := buildUpstreamURL(s.legacy.cfg.BaseURL, r.URL.Path, r.URL.RawQuery)
	if err != nil {
		out.internal(w, r, err)
		return
	}

	var body []byte
	if r.Body != nil {
		body, err = io.ReadAll(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				out.fail(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
				return
			}
			out.fail(w, http.StatusBadRequest, msgBadBody)
			return
		}
	}

	jar, err := s.legacy.sessions.For(w, r)
	if err != nil {
		out.internal(w, r, err)
		return
	}
	req := s.legacy.newClient(jar).R().SetContext(r.Context())
	for _, h := range []string{"Content-Type", "Accept", "Accept-Language", "Authorization"} {
		if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
			req.SetHeader(h, v)
		}
	}
	if len(body) > 0 {
		req.SetBody(body)
	}

	resp, err := req.Execute(r.Method, upURL.String())
	if err != nil {
		metrics.LegacyForwardErrorsTotal.Inc()
		s.bus.Log("warn", "代理请求失败", map[string]any{"url": upURL.String(), "error": err.Error()})
		out.fail(w, http.StatusBadGateway, "上游服务不可用")
		return
	}

	if ct := strings.TrimSpace(resp.Header().Get("Content-Type")); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.StatusCode())
	_, _ = w.Write(resp.Body())
}

func buildUpstreamURL(base, path, rawQuery string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return nil, err
	}
	basePath := strings.TrimRight(u.Path, "/")
	u.Path = basePath + path
	u.RawQuery = rawQuery
	return u, nil
}
