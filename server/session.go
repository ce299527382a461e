package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/etnz/dividends"
	"github.com/google/uuid"
)

const sessionCookie = "divs_session"

// session is the state of one user of the dashboard.
type session struct {
	portfolio *dividends.Portfolio // nil for the default portfolio
	filename  string
	rejected  []dividends.RowError
	report    *dividends.Report
	narrative string
	seen      time.Time
}

// sessions is the only shared state of the server.
type sessions struct {
	mu  sync.Mutex
	m   map[string]*session
	ttl time.Duration
}

func newSessions(ttl time.Duration) *sessions {
	return &sessions{m: make(map[string]*session), ttl: ttl}
}

// get returns the session of the request, creating one and setting the
// cookie if needed. The session must be used through update.
func (s *sessions) get(w http.ResponseWriter, r *http.Request) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expire()
	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := s.m[c.Value]; ok {
			sess.seen = time.Now()
			return c.Value
		}
	}
	id := uuid.NewString()
	s.m[id] = &session{seen: time.Now()}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return id
}

// update runs f with the session id locked.
func (s *sessions) update(id string, f func(*session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[id]
	if !ok {
		sess = &session{seen: time.Now()}
		s.m[id] = sess
	}
	f(sess)
}

// snapshot returns a copy of the session id.
func (s *sessions) snapshot(id string) session {
	var res session
	s.update(id, func(sess *session) { res = *sess })
	return res
}

// expire forgets idle sessions. mu must be held.
func (s *sessions) expire() {
	for id, sess := range s.m {
		if time.Since(sess.seen) > s.ttl {
			delete(s.m, id)
		}
	}
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
