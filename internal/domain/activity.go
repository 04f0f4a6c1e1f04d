package domain

import (
	"strconv"
	"time"
)

const (
	formDateLayout    = "2006-01-02"
	displayDateLayout = "01/02/2006"
)

// Activity is a completed task owned by exactly one account.
// Не зависит от Gin, Postgres, Redis.
type Activity struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Category      string    `json:"category"`
	DateCompleted time.Time `json:"date_completed"`
	MinToComplete int       `json:"min_to_complete"`
	Username      string    `json:"username"`
}

// FormDate is the date as an <input type="date"> value.
func (a Activity) FormDate() string { return a.DateCompleted.Format(formDateLayout) }

// DisplayDate is the date as shown in the activity table.
func (a Activity) DisplayDate() string { return a.DateCompleted.Format(displayDateLayout) }

// ActivityInput holds the four editable fields as submitted by a form.
// Date and MinToComplete stay raw: Postgres rejects malformed values.
type ActivityInput struct {
	Title         string
	Category      string
	Date          string
	MinToComplete string
}

// InputOf returns the editable fields of a stored activity in form shape.
func InputOf(a Activity) ActivityInput {
	return ActivityInput{
		Title:         a.Title,
		Category:      a.Category,
		Date:          a.FormDate(),
		MinToComplete: strconv.Itoa(a.MinToComplete),
	}
}
