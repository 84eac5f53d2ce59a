package user

import (
	"time"

	"github.com/google/uuid"
)

func NewFromRegistration(in NewUser) User {
	now := time.Now().UTC()

	return User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Name:         in.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
