package user_service

import (
	"context"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/code_drill/drill/internal/database"
)

type UserStore interface {
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	GetUserById(ctx context.Context, id uuid.UUID) (database.User, error)
	GetUserRole(ctx context.Context, id uuid.UUID) (string, error)
}

type UserService struct {
	DB        UserStore
	roleCache *lru.Cache[uuid.UUID, UserRole]
}

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"

	defaultRoleCacheSize = 1024
)

// User is the public profile of a user. The password hash never leaves the
// service layer.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	Image     *string   `json:"image"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func UserFromDB(dbUser database.User) User {
	return User{
		ID:        dbUser.ID,
		Email:     dbUser.Email,
		Name:      dbUser.Name,
		Image:     dbUser.Image,
		Role:      UserRole(dbUser.Role),
		CreatedAt: dbUser.CreatedAt,
	}
}
