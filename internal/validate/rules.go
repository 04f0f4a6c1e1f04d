package validate

type rule struct {
	field string
	tag   string
}

const (
	titleRequired    = "The title is required."
	titleLength      = "The title must be between 1 and 50 characters."
	categoryRequired = "The category is required."
	categoryLength   = "The category must be between 1 and 50 characters."
	usernameRequired = "Username cannot be empty."
	usernameCharset  = "Username can only contain alphanumeric characters."
	passwordRequired = "Password cannot be empty."
)

// messages maps a struct field and its failing binding tag to the text
// shown on the form.
var messages = map[rule]string{
	{"Title", "required"}:         titleRequired,
	{"Title", "max"}:              titleLength,
	{"Category", "required"}:      categoryRequired,
	{"Category", "max"}:           categoryLength,
	{"Date", "required"}:          "Please enter a date. Date cannot be empty.",
	{"MinToComplete", "required"}: "Please enter the time spent on this activity. Value cannot be empty",

	{"Username", "required"}:    usernameRequired,
	{"Username", "alphanum"}:    usernameCharset,
	{"Password", "required"}:    passwordRequired,
	{"NewUsername", "required"}: usernameRequired,
	{"NewUsername", "alphanum"}: usernameCharset,
	{"NewPassword", "required"}: passwordRequired,
}

// Message returns the text for a failed rule.
func Message(field, tag string) string {
	if m, ok := messages[rule{field, tag}]; ok {
		return m
	}
	return field + " is invalid."
}
