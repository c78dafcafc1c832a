package httpapi

import (
	"container/list"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"companion_mock/internal/config"
)

const legacySessionCookie = "mock_sid"

type legacyJar struct {
	id   string
	jar  *cookiejar.Jar
	seen time.Time
}

// legacyJars keeps one upstream cookie jar per browser, keyed by the
// mock_sid cookie, so a login made through the legacy routes sticks to that
// browser only. recent is ordered by last use, newest at the front.
type legacyJars struct {
	mu     sync.Mutex
	recent *list.List
	byID   map[string]*list.Element
	idle   time.Duration
	limit  int
	now    func() time.Time
}

func newLegacyJars(cfg config.LegacyConfig) *legacyJars {
	idle, limit := cfg.SessionIdle(), cfg.MaxSessions
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	if limit <= 0 {
		limit = 2000
	}
	return &legacyJars{
		recent: list.New(),
		byID:   make(map[string]*list.Element),
		idle:   idle,
		limit:  limit,
		now:    time.Now,
	}
}

// For returns the caller's jar, issuing a fresh one (and its cookie) when
// the request carries no live session.
func (j *legacyJars) For(w http.ResponseWriter, r *http.Request) (*cookiejar.Jar, error) {
	var sid string
	if c, err := r.Cookie(legacySessionCookie); err == nil {
		sid = strings.TrimSpace(c.Value)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now()
	j.expireLocked(now)

	if el, ok := j.byID[sid]; ok && sid != "" {
		s := el.Value.(*legacyJar)
		s.seen = now
		j.recent.MoveToFront(el)
		return s.jar, nil
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	for j.recent.Len() >= j.limit {
		j.dropLocked(j.recent.Back())
	}
	s := &legacyJar{id: uuid.NewString(), jar: jar, seen: now}
	j.byID[s.id] = j.recent.PushFront(s)

	http.SetCookie(w, &http.Cookie{
		Name:     legacySessionCookie,
		Value:    s.id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(j.idle / time.Second),
	})
	return jar, nil
}

func (j *legacyJars) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.recent.Len()
}

// expireLocked trims idle jars from the back; it stops at the first live one.
func (j *legacyJars) expireLocked(now time.Time) {
	for el := j.recent.Back(); el != nil; el = j.recent.Back() {
		if now.Sub(el.Value.(*legacyJar).seen) <= j.idle {
			return
		}
		j.dropLocked(el)
	}
}

func (j *legacyJars) dropLocked(el *list.Element) {
	s := j.recent.Remove(el).(*legacyJar)
	delete(j.byID, s.id)
}
