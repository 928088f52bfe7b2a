package models

import "time"

// User is a credential row: a unique email and a salted password hash.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
