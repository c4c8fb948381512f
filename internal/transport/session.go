package transport

import (
	"context"
	"net/http"

	"github.com/gorilla/securecookie"

	"github.com/capstonehub/capstone-hub/internal/domain/session"
)

type sessionKey struct{}

// SessionFromContext returns the request's session, if the session
// middleware ran.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(*session.Session)
	return sess, ok
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name string
	// HashKey signs the cookie value; at least 32 bytes.
	HashKey []byte
	Secure  bool
}

// cookieCodec signs and verifies the opaque session ID carried in the cookie.
type cookieCodec struct {
	name   string
	secure bool
	sc     *securecookie.SecureCookie
}

func newCookieCodec(cfg CookieConfig) *cookieCodec {
	sc := securecookie.New(cfg.HashKey, nil)
	// Expiry is enforced server-side by the idle timeout.
	sc.MaxAge(0)
	sc.SetSerializer(securecookie.JSONEncoder{})
	return &cookieCodec{name: cfg.Name, secure: cfg.Secure, sc: sc}
}

func (c *cookieCodec) read(r *http.Request) string {
	ck, err := r.Cookie(c.name)
	if err != nil {
		return ""
	}
	var id string
	if err := c.sc.Decode(c.name, ck.Value, &id); err != nil {
		return ""
	}
	return id
}

func (c *cookieCodec) write(w http.ResponseWriter, id string) error {
	value, err := c.sc.Encode(c.name, id)
	if err != nil {
		return err
	}
	http.SetCookie(w, c.cookie(value, 0))
	return nil
}

func (c *cookieCodec) expire(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

func (c *cookieCodec) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// sessionMiddleware loads the session named by the cookie and commits it
// just before the response header is written.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Load(r.Context(), s.cookies.read(r))
		if err != nil {
			writeInternalError(w, s.logger, "failed to load session", err)
			return
		}

		cw := &commitWriter{ResponseWriter: w}
		cw.commit = func() bool {
			result, err := s.sessions.Commit(r.Context(), sess)
			if err != nil {
				s.logger.Error("failed to commit session", "error", err)
				return false
			}
			switch result {
			case session.CommitSaved:
				if err := s.cookies.write(w, sess.ID); err != nil {
					s.logger.Error("failed to encode session cookie", "error", err)
					return false
				}
			case session.CommitDeleted:
				s.cookies.expire(w)
			}
			return true
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next.ServeHTTP(cw, r.WithContext(ctx))
		if !cw.wroteHeader {
			cw.WriteHeader(http.StatusOK)
		}
	})
}

// commitWriter runs commit once, before the first byte of the response. A
// failed commit replaces the response with a 500.
type commitWriter struct {
	http.ResponseWriter
	commit      func() bool
	wroteHeader bool
	discard     bool
}

func (w *commitWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	if !w.commit() {
		w.discard = true
		w.Header().Del("Content-Disposition")
		writeError(w.ResponseWriter, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *commitWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.discard {
		return len(p), nil
	}
	return w.ResponseWriter.Write(p)
}

func (w *commitWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func sessionOf(r *http.Request) *session.Session {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		// Routes are always mounted behind the session middleware.
		panic("transport: session middleware not installed")
	}
	return sess
}
