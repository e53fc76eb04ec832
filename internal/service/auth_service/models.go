package auth_service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/code_drill/drill/internal/database"
	"github.com/code_drill/drill/internal/service/user_service"
)

const SessionTTL = 7 * 24 * time.Hour

// UserConfig is the part of the user service auth depends on.
type UserConfig interface {
	CreateUser(ctx context.Context, params database.CreateUserParams) (user_service.User, error)
	FetchUserByEmail(ctx context.Context, email string) (database.User, error)
	GetUserProfile(ctx context.Context, userID uuid.UUID) (user_service.User, error)
}

type AuthService struct {
	UserConfig UserConfig
}

type UserRegistration struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Image    *string `json:"image" validate:"omitempty,url"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is a signed session token for the jwt cookie.
type Session struct {
	Token  string
	Expiry time.Time
}
