package response

import (
	"time"

	"labor-market/internal/data/entity"
)

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	DisplayName *string         `json:"display_name,omitempty"`
	Role        entity.UserRole `json:"role"`
}

func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}
}

func AuthToResponse(user *entity.User, session *entity.Session) AuthResponse {
	return AuthResponse{
		Token:     session.Token.String(),
		ExpiresAt: session.ExpiresAt,
		User:      UserToResponse(user),
	}
}
