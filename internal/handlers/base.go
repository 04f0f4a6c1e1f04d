package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"Tracker/internal/auth"
	"Tracker/internal/service"
	"Tracker/internal/validate"

	"github.com/gin-gonic/gin"
)

const homePath = "/activities/page/1"

// Messages shared by more than one handler.
const (
	msgNoEdits       = "No edits were made."
	msgUsernameTaken = "Sorry, this username is already taken. Please try again."
)

// Deps are the collaborators shared by every handler.
type Deps struct {
	Sessions *auth.Store
	Cookie   auth.CookieConfig
	Gateways *service.Gateways
	Log      *slog.Logger
}

type base struct {
	Deps
}

// render shows a page with the request's flashes and identity merged into data.
func (b *base) render(c *gin.Context, status int, name string, rs *auth.RequestState, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Flash"] = rs.Flashes()
	data["SignedIn"] = rs.Session.SignedIn
	data["Username"] = rs.Session.Username
	c.HTML(status, name, data)
}

// bindForm reads a form body and checks its rules. Failed rules come back as
// messages; the error is set only when the body could not be read.
func bindForm(c *gin.Context, f validate.Form) ([]string, error) {
	if err := c.ShouldBind(f); err != nil && !validate.IsBindingFailure(err) {
		return nil, err
	}
	return validate.Check(f)
}

// flashErrors queues messages for the page rendered by this request.
func flashErrors(rs *auth.RequestState, msgs []string) {
	for _, m := range msgs {
		rs.FlashNow(auth.FlashError, m)
	}
}

// commit saves the session. It must run before the response is written so
// the client's next request sees the change.
func (b *base) commit(c *gin.Context, rs *auth.RequestState) error {
	if err := b.Sessions.Save(c.Request.Context(), rs.Session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (b *base) redirect(c *gin.Context, rs *auth.RequestState, location string) {
	if err := b.commit(c, rs); err != nil {
		b.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, location)
}

// signIn moves the client to a fresh session ID and marks it signed in.
func (b *base) signIn(c *gin.Context, rs *auth.RequestState, username string) error {
	if err := b.Sessions.Rotate(c.Request.Context(), rs.Session); err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	auth.SetCookie(c, b.Cookie, rs.Session.ID)
	rs.Session.SignIn(username)
	return nil
}

// fail hands err to ErrorBoundary.
func (b *base) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
