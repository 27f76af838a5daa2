package models

import (
	"time"

	"github.com/google/uuid"
)

// IssuedToken is a freshly minted token together with its expiry
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Claims is the payload recovered from a verified token
type Claims struct {
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Session is issued on register and login: the identity plus both tokens
type Session struct {
	UserID  uuid.UUID
	Access  IssuedToken
	Refresh IssuedToken
}
