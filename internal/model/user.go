package model

import "time"

type User struct {
	UUID         string    `db:"uuid" json:"uuid"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsActive     bool      `db:"is_active" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Profile : публичное представление пользователя, без хэша пароля
type Profile struct {
	UUID  string `json:"uuid"`
	Email string `json:"email"`
}

func (u *User) Profile() Profile {
	return Profile{UUID: u.UUID, Email: u.Email}
}
