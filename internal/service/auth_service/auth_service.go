package auth_service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/code_drill/drill/internal/database"
	"github.com/code_drill/drill/internal/drill_errors"
	"github.com/code_drill/drill/internal/service"
	"github.com/code_drill/drill/internal/service/user_service"
)

func (a *AuthService) Register(
	ctx context.Context,
	request UserRegistration,
) (user_service.User, Session, error) {
	request.Email = strings.ToLower(strings.TrimSpace(request.Email))
	if err := service.ValidateInput(request); err != nil {
		return user_service.User{}, Session{}, err
	}

	// reject known emails before paying for a hash
	_, err := a.UserConfig.FetchUserByEmail(ctx, request.Email)
	if err == nil {
		return user_service.User{}, Session{}, fmt.Errorf("%w, User already exists", drill_errors.ErrInvalidRequest)
	}
	if !errors.Is(err, drill_errors.ErrNotFound) {
		return user_service.User{}, Session{}, err
	}

	passwordHash, err := generatePasswordHash(request.Password)
	if err != nil {
		return user_service.User{}, Session{}, err
	}

	user, err := a.UserConfig.CreateUser(ctx, database.CreateUserParams{
		Name:         request.Name,
		Email:        request.Email,
		Image:        request.Image,
		Role:         string(user_service.RoleUser),
		PasswordHash: passwordHash,
	})
	if err != nil {
		return user_service.User{}, Session{}, err
	}

	session, err := newSession(user)
	if err != nil {
		return user_service.User{}, Session{}, err
	}

	log.WithFields(log.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("created user")
	return user, session, nil
}

func (a *AuthService) Login(
	ctx context.Context,
	request UserLoginRequest,
) (user_service.User, Session, error) {
	request.Email = strings.ToLower(strings.TrimSpace(request.Email))
	if err := service.ValidateInput(request); err != nil {
		return user_service.User{}, Session{}, err
	}

	dbUser, err := a.UserConfig.FetchUserByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, drill_errors.ErrNotFound) {
			return user_service.User{}, Session{}, fmt.Errorf("%w, User not found", drill_errors.ErrInvalidUserCredentials)
		}
		return user_service.User{}, Session{}, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(dbUser.PasswordHash), []byte(request.Password)); err != nil {
		log.WithField("user_id", dbUser.ID).Debug("password mismatch")
		return user_service.User{}, Session{}, fmt.Errorf("%w, Invalid credentials", drill_errors.ErrInvalidUserCredentials)
	}

	user := user_service.UserFromDB(dbUser)
	session, err := newSession(user)
	if err != nil {
		return user_service.User{}, Session{}, err
	}

	log.WithField("user_id", user.ID).Info("logged in")
	return user, session, nil
}

// Check returns the profile of the authenticated caller.
func (a *AuthService) Check(ctx context.Context) (user_service.User, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return user_service.User{}, err
	}
	return a.UserConfig.GetUserProfile(ctx, claims.UserId)
}

func newSession(user user_service.User) (Session, error) {
	token, expiry, err := service.SignClaims(user.ID, user.Email, string(user.Role), SessionTTL)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, Expiry: expiry}, nil
}

func generatePasswordHash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("%w, cannot hash password, %w", drill_errors.ErrInternal, err)
		log.Error(err)
		return "", err
	}
	return string(hash), nil
}
