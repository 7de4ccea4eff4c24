package model

// User is a registered account. Email is its identifier.
type User struct {
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}
