// Package servemux is the HTTP router of the strata server, a ServeMux with
// CORS handling, an optional request rate limit and request logging in front
// of it.
package servemux

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

type S struct {
	*http.ServeMux
	handler http.Handler
	limiter *rate.Limiter
}

func New() (s *S) {
	s = &S{ServeMux: http.NewServeMux()}
	s.handler = cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Confirm"},
	}).Handler(s.ServeMux)
	return
}

// Limit caps the requests served per second across all clients, allowing
// bursts of up to burst requests. Requests over the limit get 429. A limit of
// 0 removes the cap.
func (s *S) Limit(perSecond float64, burst int) {
	if perSecond <= 0 {
		s.limiter = nil
		return
	}
	s.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
}

func (s *S) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if s.limiter != nil && !s.limiter.Allow() {
		log.D.F("%s %s %s rate limited", Remote(r), r.Method, r.URL.Path)
		w.Header().Set("Retry-After", "1")
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}
	s.handler.ServeHTTP(w, r)
	log.T.F("%s %s %s %v", Remote(r), r.Method, r.URL.Path, time.Since(start))
}

// Remote is the address of the client, as reported by a reverse proxy if
// there is one in front.
func Remote(r *http.Request) (rr st) {
	rem := r.Header.Get("X-Forwarded-For")
	if rem == "" {
		return r.RemoteAddr
	}
	split := strings.Split(rem, " ")
	return strings.TrimSuffix(split[0], ",")
}
