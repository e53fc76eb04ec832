package user_service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/database"
	"github.com/code_drill/drill/internal/drill_errors"
	"github.com/code_drill/drill/internal/service"
)

var (
	errMsgs = map[string]map[string]string{
		drill_errors.CodeUniqueConstraint: {
			"uq_users_email": "User already exists",
		},
	}
)

func (u *UserService) InitializeUserService() error {
	if u.DB == nil {
		panic("user service expects non-nil db")
	}
	cache, err := lru.New[uuid.UUID, UserRole](defaultRoleCacheSize)
	if err != nil {
		return fmt.Errorf("cannot create role cache, %w", err)
	}
	u.roleCache = cache
	return nil
}

func (u *UserService) CreateUser(
	ctx context.Context,
	params database.CreateUserParams,
) (User, error) {
	dbUser, err := u.DB.CreateUser(ctx, params)
	if err != nil {
		return User{}, drill_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot create user %s", params.Email),
		)
	}
	u.roleCache.Add(dbUser.ID, UserRole(dbUser.Role))
	return UserFromDB(dbUser), nil
}

func (u *UserService) GetUserProfile(
	ctx context.Context,
	userID uuid.UUID,
) (User, error) {
	dbUser, err := u.DB.GetUserById(ctx, userID)
	if err != nil {
		return User{}, drill_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot fetch user with id %v from db", userID),
		)
	}
	return UserFromDB(dbUser), nil
}

func (u *UserService) GetMe(ctx context.Context) (User, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return User{}, err
	}

	return u.GetUserProfile(ctx, claims.UserId)
}

// FetchUserByEmail returns the full row, password hash included, for
// credential checks.
func (u *UserService) FetchUserByEmail(
	ctx context.Context,
	email string,
) (database.User, error) {
	dbUser, err := u.DB.GetUserByEmail(ctx, email)
	if err != nil {
		err = drill_errors.HandleDBErrors(err, errMsgs, "cannot fetch user by email")
		return database.User{}, err
	}
	return dbUser, nil
}

// FetchUserRole reads the role of a user, served from cache once seen.
func (u *UserService) FetchUserRole(ctx context.Context, userId uuid.UUID) (UserRole, error) {
	if role, ok := u.roleCache.Get(userId); ok {
		return role, nil
	}
	role, err := u.DB.GetUserRole(ctx, userId)
	if err != nil {
		return "", drill_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot fetch role of user %v", userId),
		)
	}
	u.roleCache.Add(userId, UserRole(role))
	return UserRole(role), nil
}

func (u *UserService) AuthorizeUserRole(
	ctx context.Context,
	userId uuid.UUID,
	role UserRole,
	warnMessage string,
) error {
	actual, err := u.FetchUserRole(ctx, userId)
	if err != nil {
		return err
	}
	if actual == role {
		return nil
	}
	if warnMessage != "" {
		log.Warn(warnMessage)
	}
	return fmt.Errorf("%w, %s role is required", drill_errors.ErrUnAuthorized, role)
}
