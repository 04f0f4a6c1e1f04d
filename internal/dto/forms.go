package dto

import (
	"strings"

	"Tracker/internal/domain"
)

// ActivityForm is the urlencoded body of the add and edit activity forms.
// Date and minutes are only required; Postgres rejects malformed values.
type ActivityForm struct {
	Title         string `form:"title" binding:"required,max=50"`
	Category      string `form:"category" binding:"required,max=50"`
	Date          string `form:"date" binding:"required"`
	MinToComplete string `form:"min_to_complete" binding:"required"`
}

func (f *ActivityForm) TrimSpace() {
	f.Title = strings.TrimSpace(f.Title)
	f.Category = strings.TrimSpace(f.Category)
}

func (f ActivityForm) Input() domain.ActivityInput {
	return domain.ActivityInput{
		Title:         f.Title,
		Category:      f.Category,
		Date:          f.Date,
		MinToComplete: f.MinToComplete,
	}
}

// SignInRequest is the body of POST /users/signin.
type SignInRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// CreateAccountRequest is the body of POST /users/create-account.
type CreateAccountRequest struct {
	Username string `form:"username" binding:"required,alphanum"`
	Password string `form:"password" binding:"required"`
}

// TrimSpace trims the username. Passwords are kept as typed.
func (r *CreateAccountRequest) TrimSpace() {
	r.Username = strings.TrimSpace(r.Username)
}

// EditAccountRequest is the body of POST /users/edit-account.
type EditAccountRequest struct {
	NewUsername string `form:"newUsername" binding:"required,alphanum"`
	NewPassword string `form:"newPassword" binding:"required"`
}

func (r *EditAccountRequest) TrimSpace() {
	r.NewUsername = strings.TrimSpace(r.NewUsername)
}
