package domain

// User is the domain entity for an account. Username is the primary key.
type User struct {
	Username     string
	PasswordHash string
}
