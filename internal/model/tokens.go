package model

import "time"

// RevocationEntry : запись черного списка refresh токенов
type RevocationEntry struct {
	JTI           string    `db:"jti" json:"jti"`
	UserUUID      string    `db:"user_uuid" json:"user_uuid"`
	ExpiresAt     time.Time `db:"expires_at" json:"expires_at"`
	BlacklistedAt time.Time `db:"blacklisted_at" json:"blacklisted_at"`
}

// TokensPair содержит пару access и refresh токенов, выданных при входе
type TokensPair struct {
	AccessToken  string
	RefreshToken string
}
