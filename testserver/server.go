// Package testserver provides a WebDAV-like HTTP server for exercising the
// load generator against evidence folder paths.
package testserver

import (
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config controls the server's credentials and response behavior.
type Config struct {
	// Username and Password are the Basic auth credentials every request
	// must present.
	Username string
	Password string
	// Realm is advertised in WWW-Authenticate challenges.
	Realm string
	// FailRate is the percentage of authenticated evidence requests
	// answered with 500, for exercising failure classification.
	FailRate int
	// Delay is added before every evidence response.
	Delay time.Duration
}

// Server is a WebDAV-like test target.
type Server struct {
	cfg Config
	mux *http.ServeMux

	logMu sync.Mutex
	logW  io.Writer
}

// NewServer creates a test server with the evidence endpoints configured.
func NewServer(cfg Config) *Server {
	if cfg.Realm == "" {
		cfg.Realm = "WebDAV Test Realm"
	}

	s := &Server{
		cfg:  cfg,
		mux:  http.NewServeMux(),
		logW: io.Discard,
	}
	s.registerHandlers()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// SetAccessLog directs the per-request access log to w.
func (s *Server) SetAccessLog(w io.Writer) {
	s.logMu.Lock()
	s.logW = w
	s.logMu.Unlock()
}

func (s *Server) registerHandlers() {
	s.mux.HandleFunc("/evidence/", s.withAuth(s.handleEvidence))
	s.mux.HandleFunc("/", s.withAuth(s.handleNotFound))
}

// statusRecorder captures the status a handler writes so the access log
// can report it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// withAuth enforces Basic auth and writes one access log line per request,
// authenticated or not.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authenticate(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", s.cfg.Realm))
			w.WriteHeader(http.StatusUnauthorized)
			s.logAccess(r, http.StatusUnauthorized, user)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.logAccess(r, rec.status, user)
	}
}

// authenticate reports the username to log and whether the request may
// proceed. Requests without credentials log "-", requests with wrong
// credentials log "invalid_user", following IIS log conventions.
func (s *Server) authenticate(r *http.Request) (string, bool) {
	user, pass, ok := r.BasicAuth()
	if !ok {
		return "-", false
	}
	if user != s.cfg.Username || pass != s.cfg.Password {
		return "invalid_user", false
	}
	return user, true
}

// handleEvidence answers HEAD and GET probes on evidence folders.
func (s *Server) handleEvidence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodHead && r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if s.cfg.Delay > 0 {
		time.Sleep(s.cfg.Delay)
	}

	if s.cfg.FailRate > 0 && rand.Intn(100) < s.cfg.FailRate {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	folder := strings.TrimPrefix(r.URL.Path, "/evidence/")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "evidence folder %s\n", folder)
}

// handleNotFound answers for paths outside the evidence tree.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
}

// logAccess writes one W3C extended log style line per request:
// date time c-ip cs-method cs-uri-stem sc-status cs(User-Agent) cs-username
func (s *Server) logAccess(r *http.Request, status int, user string) {
	agent := r.UserAgent()
	if agent == "" {
		agent = "-"
	}
	// IIS logs encode spaces in field values as plus signs.
	agent = strings.ReplaceAll(agent, " ", "+")

	s.logMu.Lock()
	defer s.logMu.Unlock()
	fmt.Fprintf(s.logW, "%s %s %s %s %d %s %s\n",
		time.Now().UTC().Format("2006-01-02 15:04:05"),
		clientIP(r), r.Method, r.URL.Path, status, agent, user)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
