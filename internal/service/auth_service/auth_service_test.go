package auth_service

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/database"
	"github.com/code_drill/drill/internal/drill_errors"
	"github.com/code_drill/drill/internal/service"
	"github.com/code_drill/drill/internal/service/user_service"
)

func TestMain(m *testing.M) {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	logrus.SetLevel(logrus.DebugLevel)
	service.InitializeServices("test-secret")
	os.Exit(m.Run())
}

type fakeUsers struct {
	byEmail map[string]database.User
}

func (f *fakeUsers) CreateUser(_ context.Context, p database.CreateUserParams) (user_service.User, error) {
	u := database.User{ID: uuid.New(), Email: p.Email, Name: p.Name, Role: p.Role, PasswordHash: p.PasswordHash}
	f.byEmail[p.Email] = u
	return user_service.UserFromDB(u), nil
}

func (f *fakeUsers) FetchUserByEmail(_ context.Context, email string) (database.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return database.User{}, drill_errors.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetUserProfile(_ context.Context, id uuid.UUID) (user_service.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return user_service.UserFromDB(u), nil
		}
	}
	return user_service.User{}, drill_errors.ErrNotFound
}

func newAuth() *AuthService {
	return &AuthService{UserConfig: &fakeUsers{byEmail: make(map[string]database.User)}}
}

func TestRegisterThenLogin(t *testing.T) {
	a := newAuth()
	user, session, err := a.Register(context.Background(), UserRegistration{
		Email:    "Ada@Drill.dev",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "ada@drill.dev" || user.Role != user_service.RoleUser {
		t.Errorf("unexpected user %+v", user)
	}
	if session.Token == "" {
		t.Errorf("register should issue a session")
	}

	claims, err := service.ParseClaims(session.Token)
	if err != nil || claims.UserId != user.ID {
		t.Errorf("session token does not identify the user: %+v %v", claims, err)
	}

	loggedIn, _, err := a.Login(context.Background(), UserLoginRequest{Email: "ada@drill.dev", Password: "hunter22"})
	if err != nil || loggedIn.ID != user.ID {
		t.Errorf("login failed: %+v %v", loggedIn, err)
	}

	ctx := service.ContextWithClaims(context.Background(), claims)
	me, err := a.Check(ctx)
	if err != nil || me.ID != user.ID {
		t.Errorf("check failed: %+v %v", me, err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	a := newAuth()
	req := UserRegistration{Email: "ada@drill.dev", Password: "hunter22"}
	if _, _, err := a.Register(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	_, _, err := a.Register(context.Background(), req)
	if !errors.Is(err, drill_errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	a := newAuth()
	for _, req := range []UserRegistration{
		{Email: "not-an-email", Password: "hunter22"},
		{Email: "ada@drill.dev", Password: "123"},
	} {
		if _, _, err := a.Register(context.Background(), req); !errors.Is(err, drill_errors.ErrInvalidRequest) {
			t.Errorf("%+v: expected ErrInvalidRequest, got %v", req, err)
		}
	}
}

func TestLoginFailures(t *testing.T) {
	a := newAuth()
	if _, _, err := a.Register(context.Background(), UserRegistration{Email: "ada@drill.dev", Password: "hunter22"}); err != nil {
		t.Fatal(err)
	}
	for _, req := range []UserLoginRequest{
		{Email: "ada@drill.dev", Password: "wrong-password"},
		{Email: "bob@drill.dev", Password: "hunter22"},
	} {
		_, _, err := a.Login(context.Background(), req)
		if !errors.Is(err, drill_errors.ErrInvalidUserCredentials) {
			t.Errorf("%s: expected ErrInvalidUserCredentials, got %v", req.Email, err)
		}
	}
}
