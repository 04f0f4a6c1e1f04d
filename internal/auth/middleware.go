package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const contextKeyState = "request_state"

// SignInPath is where the auth gate sends anonymous clients.
const SignInPath = "/users/signin"

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// RequestState is built once per request by LoadSession and handed to every
// handler and to the persistence gateway.
type RequestState struct {
	Session *Session
	// Incoming holds the flashes queued by the previous response. They were
	// removed from the session when it was loaded.
	Incoming []Flash
	now      []Flash
}

// FlashNow adds a message to the page rendered by this request only.
func (rs *RequestState) FlashNow(kind FlashKind, msg string) {
	rs.now = append(rs.now, Flash{Kind: kind, Message: msg})
}

// Flashes returns the messages to show on a page rendered by this request.
func (rs *RequestState) Flashes() []Flash {
	out := make([]Flash, 0, len(rs.Incoming)+len(rs.now))
	out = append(out, rs.Incoming...)
	return append(out, rs.now...)
}

// StateFromContext returns the state set by LoadSession, or nil.
func StateFromContext(c *gin.Context) *RequestState {
	v, ok := c.Get(contextKeyState)
	if !ok {
		return nil
	}
	rs, _ := v.(*RequestState)
	return rs
}

// SetCookie writes the session cookie: HTTP-only, root path.
func SetCookie(c *gin.Context, cfg CookieConfig, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.Name, id, int(cfg.MaxAge/time.Second), "/", "", cfg.Secure, true)
}

// LoadSession returns a middleware that loads the client's session, creating
// one when the cookie is missing or unknown, and moves pending flashes into
// the request state.
func LoadSession(sessions *Store, cfg CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var sess *Session
		if id, err := c.Cookie(cfg.Name); err == nil && id != "" {
			sess, err = sessions.Load(ctx, id)
			if err != nil {
				_ = c.Error(fmt.Errorf("load session: %w", err))
				c.Abort()
				return
			}
		}
		if sess == nil {
			var err error
			sess, err = sessions.Create(ctx)
			if err != nil {
				_ = c.Error(fmt.Errorf("create session: %w", err))
				c.Abort()
				return
			}
			SetCookie(c, cfg, sess.ID)
		}

		rs := &RequestState{Session: sess}
		if len(sess.Flash) > 0 {
			rs.Incoming = sess.TakeFlash()
			if err := sessions.Save(ctx, sess); err != nil {
				_ = c.Error(fmt.Errorf("save session: %w", err))
				c.Abort()
				return
			}
		}
		c.Set(contextKeyState, rs)
		c.Next()
	}
}

// RequireSignIn returns a middleware that lets signed-in clients through.
// Anyone else is sent to the sign-in page; for GET requests the original URI
// is remembered so sign-in can return there.
func RequireSignIn(sessions *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		rs := StateFromContext(c)
		if rs == nil {
			_ = c.Error(fmt.Errorf("auth gate: no session loaded"))
			c.Abort()
			return
		}
		if rs.Session.SignedIn {
			c.Next()
			return
		}
		if c.Request.Method == http.MethodGet {
			rs.Session.Path = c.Request.URL.RequestURI()
		}
		rs.Session.AddFlash(FlashInfo, "Please sign in order to access your profile.")
		if err := sessions.Save(c.Request.Context(), rs.Session); err != nil {
			_ = c.Error(fmt.Errorf("save session: %w", err))
			c.Abort()
			return
		}
		c.Redirect(http.StatusFound, SignInPath)
		c.Abort()
	}
}
