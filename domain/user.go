package domain

import "time"

type UserID string

func (id UserID) String() string { return string(id) }

// User is an account. PasswordHash is opaque to the chat core.
type User struct {
	ID           UserID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

func (u User) AsSender() Sender {
	return Sender{ID: u.ID, Username: u.Username}
}

// PublicUser is the user projection exposed by the request surface.
type PublicUser struct {
	ID        UserID    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

// AuthSession is what a successful signup or login returns.
type AuthSession struct {
	AccessToken string     `json:"accessToken"`
	User        PublicUser `json:"user"`
}
