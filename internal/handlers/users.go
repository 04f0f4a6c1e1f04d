package handlers

import (
	"errors"
	"net/http"
	"strings"

	"Tracker/internal/auth"
	"Tracker/internal/dto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	base
}

func NewUserHandler(d Deps) *UserHandler {
	return &UserHandler{base{d}}
}

// SignInForm godoc
// @Summary      Show the sign-in form
// @Tags         users
// @Produce      html
// @Success      200
// @Router       /users/signin [get]
func (h *UserHandler) SignInForm(c *gin.Context) {
	h.render(c, http.StatusOK, "signin.html", auth.StateFromContext(c), gin.H{"FormUsername": ""})
}

// SignIn godoc
// @Summary      Sign in
// @Description  On success the session ID is rotated and the client is sent back to the page that required sign-in, if any.
// @Tags         users
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      302
// @Failure      401
// @Router       /users/signin [post]
func (h *UserHandler) SignIn(c *gin.Context) {
	rs := auth.StateFromContext(c)
	var req dto.SignInRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, err)
		return
	}
	username := strings.TrimSpace(req.Username)

	ok, err := h.Gateways.For(rs).Authenticate(c.Request.Context(), username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		rs.FlashNow(auth.FlashError, "Invalid credentials.")
		h.render(c, http.StatusUnauthorized, "signin.html", rs, gin.H{"FormUsername": username})
		return
	}

	if err := h.signIn(c, rs, username); err != nil {
		h.fail(c, err)
		return
	}
	h.Log.InfoContext(c.Request.Context(), "signed in", "username", username)
	rs.Session.AddFlash(auth.FlashInfo, "Welcome!")
	target := rs.Session.TakePath()
	if target == "" {
		target = homePath
	}
	h.redirect(c, rs, target)
}

// SignOut godoc
// @Summary      Sign out
// @Description  The sort order stays in the session.
// @Tags         users
// @Success      302
// @Router       /users/signout [post]
func (h *UserHandler) SignOut(c *gin.Context) {
	rs := auth.StateFromContext(c)
	rs.Session.SignOut()
	h.redirect(c, rs, auth.SignInPath)
}

// CreateAccountForm godoc
// @Summary      Show the create account form
// @Tags         users
// @Produce      html
// @Success      200
// @Router       /users/create-account [get]
func (h *UserHandler) CreateAccountForm(c *gin.Context) {
	h.render(c, http.StatusOK, "create-account.html", auth.StateFromContext(c), gin.H{"FormUsername": ""})
}

// CreateAccount godoc
// @Summary      Create an account and sign in
// @Tags         users
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        username  formData  string  true  "Letters and digits only"
// @Param        password  formData  string  true  "Password"
// @Success      201
// @Failure      400
// @Failure      409
// @Router       /users/create-account [post]
func (h *UserHandler) CreateAccount(c *gin.Context) {
	rs := auth.StateFromContext(c)
	var req dto.CreateAccountRequest
	msgs, err := bindForm(c, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	rerender := func(status int) {
		h.render(c, status, "create-account.html", rs, gin.H{"FormUsername": req.Username})
	}
	if len(msgs) > 0 {
		flashErrors(rs, msgs)
		rerender(http.StatusBadRequest)
		return
	}

	gw := h.Gateways.For(rs)
	ctx := c.Request.Context()

	taken, err := gw.CheckIfUsernameExists(ctx, req.Username)
	if err != nil {
		h.fail(c, err)
		return
	}
	if taken {
		rs.FlashNow(auth.FlashError, msgUsernameTaken)
		rerender(http.StatusConflict)
		return
	}

	created, err := gw.CreateAccount(ctx, req.Username, req.Password)
	if err != nil {
		// Someone took the name between the check and the insert.
		if gw.IsUniqueConstraintViolation(err) {
			rs.FlashNow(auth.FlashError, msgUsernameTaken)
			rerender(http.StatusConflict)
			return
		}
		h.fail(c, err)
		return
	}
	if !created {
		h.fail(c, errors.New("account was not created"))
		return
	}

	h.Log.InfoContext(ctx, "account created", "username", req.Username)
	if err := h.signIn(c, rs, req.Username); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.commit(c, rs); err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusCreated, "success-create-account.html", rs, nil)
}

// Delete godoc
// @Summary      Delete the signed-in account and all its activities
// @Tags         users
// @Security     CookieAuth
// @Success      302
// @Failure      404
// @Router       /users/delete [post]
func (h *UserHandler) Delete(c *gin.Context) {
	rs := auth.StateFromContext(c)
	deleted, err := h.Gateways.For(rs).DeleteAccount(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if !deleted {
		h.fail(c, ErrAccountNotFound)
		return
	}
	h.Log.InfoContext(c.Request.Context(), "account deleted", "username", rs.Session.Username)
	rs.Session.SignOut()
	rs.Session.AddFlash(auth.FlashSuccess, "Your account was successfully deleted.")
	h.redirect(c, rs, auth.SignInPath)
}

// EditAccountForm godoc
// @Summary      Show the edit account form
// @Tags         users
// @Produce      html
// @Security     CookieAuth
// @Success      200
// @Router       /users/edit-account [get]
func (h *UserHandler) EditAccountForm(c *gin.Context) {
	rs := auth.StateFromContext(c)
	username, password := h.Gateways.For(rs).GetAccountInfo()
	h.render(c, http.StatusOK, "edit-account.html", rs, gin.H{
		"NewUsername": username,
		"NewPassword": password,
	})
}

// EditAccount godoc
// @Summary      Rename the account and set a new password
// @Tags         users
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Security     CookieAuth
// @Param        newUsername  formData  string  true  "Letters and digits only"
// @Param        newPassword  formData  string  true  "Password"
// @Success      302
// @Failure      400
// @Failure      409
// @Router       /users/edit-account [post]
func (h *UserHandler) EditAccount(c *gin.Context) {
	rs := auth.StateFromContext(c)
	var req dto.EditAccountRequest
	msgs, err := bindForm(c, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	rerender := func(status int) {
		h.render(c, status, "edit-account.html", rs, gin.H{"NewUsername": req.NewUsername, "NewPassword": ""})
	}
	if len(msgs) > 0 {
		flashErrors(rs, msgs)
		rerender(http.StatusBadRequest)
		return
	}

	gw := h.Gateways.For(rs)
	ctx := c.Request.Context()

	same, err := gw.IsSameAccount(ctx, req.NewUsername, req.NewPassword)
	if err != nil {
		h.fail(c, err)
		return
	}
	if same {
		rs.Session.AddFlash(auth.FlashInfo, msgNoEdits)
		h.redirect(c, rs, homePath)
		return
	}

	if req.NewUsername != rs.Session.Username {
		taken, err := gw.CheckIfUsernameExists(ctx, req.NewUsername)
		if err != nil {
			h.fail(c, err)
			return
		}
		if taken {
			rs.FlashNow(auth.FlashError, msgUsernameTaken)
			rerender(http.StatusConflict)
			return
		}
	}

	updated, err := gw.UpdateAccount(ctx, req.NewUsername, req.NewPassword)
	if err != nil {
		if gw.IsUniqueConstraintViolation(err) {
			rs.FlashNow(auth.FlashError, msgUsernameTaken)
			rerender(http.StatusConflict)
			return
		}
		h.fail(c, err)
		return
	}
	if !updated {
		h.fail(c, ErrAccountNotFound)
		return
	}
	h.Log.InfoContext(ctx, "account updated", "username", rs.Session.Username, "new_username", req.NewUsername)
	rs.Session.SignIn(req.NewUsername)
	rs.Session.AddFlash(auth.FlashSuccess, "The account info has been changed.")
	h.redirect(c, rs, homePath)
}
