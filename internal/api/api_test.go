package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/database"
	"github.com/code_drill/drill/internal/drill_errors"
	"github.com/code_drill/drill/internal/judge"
	"github.com/code_drill/drill/internal/service"
	"github.com/code_drill/drill/internal/service/auth_service"
	"github.com/code_drill/drill/internal/service/submission_service"
	"github.com/code_drill/drill/internal/service/user_service"
	"github.com/code_drill/drill/middleware"
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

// fakeJudge0 accepts every submission whose source is not "wrong". It
// answers 503 on submit while down is set and keeps submissions processing
// while busy is set.
type fakeJudge0 struct {
	mu      sync.Mutex
	down    bool
	busy    bool
	byToken map[string]judge.SubmissionRequest
	server  *httptest.Server
}

func newFakeJudge0(t *testing.T) *fakeJudge0 {
	t.Helper()
	fj := &fakeJudge0{byToken: make(map[string]judge.SubmissionRequest)}
	fj.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fj.mu.Lock()
		defer fj.mu.Unlock()
		if r.Method == http.MethodPost {
			if fj.down {
				http.Error(w, "down", http.StatusServiceUnavailable)
				return
			}
			var body struct {
				Submissions []judge.SubmissionRequest `json:"submissions"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			tokens := make([]map[string]string, len(body.Submissions))
			for i, sub := range body.Submissions {
				token := strconv.Itoa(len(fj.byToken)) + "-" + strconv.Itoa(i)
				fj.byToken[token] = sub
				tokens[i] = map[string]string{"token": token}
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(tokens)
			return
		}
		var results []map[string]any
		for _, token := range strings.Split(r.URL.Query().Get("tokens"), ",") {
			sub := fj.byToken[token]
			status, stdout := judge.StatusAccepted, sub.ExpectedOutput
			if sub.SourceCode == "wrong" {
				status, stdout = judge.StatusWrongAnswer, "nope"
			}
			if fj.busy {
				status = judge.StatusProcessing
			}
			results = append(results, map[string]any{
				"token":  token,
				"status": map[string]any{"id": status, "description": "done"},
				"time":   "0.010",
				"memory": 2048,
				"stdout": stdout,
			})
		}
		json.NewEncoder(w).Encode(map[string]any{"submissions": results})
	}))
	t.Cleanup(fj.server.Close)
	return fj
}

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]database.User
}

func (m *memoryUsers) CreateUser(_ context.Context, params database.CreateUserParams) (user_service.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := database.User{
		ID:           uuid.New(),
		Name:         params.Name,
		Email:        params.Email,
		Role:         params.Role,
		PasswordHash: params.PasswordHash,
	}
	m.users[u.Email] = u
	return user_service.UserFromDB(u), nil
}

func (m *memoryUsers) FetchUserByEmail(_ context.Context, email string) (database.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return database.User{}, fmt.Errorf("%w, no user %s", drill_errors.ErrNotFound, email)
	}
	return u, nil
}

func (m *memoryUsers) GetUserProfile(_ context.Context, id uuid.UUID) (user_service.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return user_service.UserFromDB(u), nil
		}
	}
	return user_service.User{}, drill_errors.ErrNotFound
}

func newTestApi(t *testing.T) (*Api, *fakeJudge0) {
	t.Helper()
	fj := newFakeJudge0(t)
	client, err := judge.NewClient(judge.ClientConfig{
		BaseURL:      fj.server.URL,
		PollInterval: 5 * time.Millisecond,
		PollTimeout:  2 * time.Second,
		HTTPTimeout:  time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	runs := judge.NewRunRegistry()
	return &Api{
		AuthServiceConfig: &auth_service.AuthService{
			UserConfig: &memoryUsers{users: make(map[string]database.User)},
		},
		SubmissionServiceConfig: &submission_service.SubmissionService{
			Judge: judge.NewJudge(client, judge.DefaultLanguages(), runs, nil),
		},
		Runs: runs,
	}, fj
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("undecodable error body, %v", err)
	}
	return body.Error
}

func TestHandlerError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			"reference failure",
			fmt.Errorf("cannot create problem, %w", &judge.ReferenceFailure{Language: "PYTHON", Index: 2}),
			http.StatusBadRequest,
			"Testcase 3 failed for language PYTHON",
		},
		{
			"judge unavailable",
			fmt.Errorf("%w, connection refused", drill_errors.ErrJudgeUnavailable),
			http.StatusInternalServerError,
			"execution service unavailable",
		},
		{
			"judge timeout",
			fmt.Errorf("%w, 30s elapsed", drill_errors.ErrJudgeTimeout),
			http.StatusInternalServerError,
			"execution service unavailable",
		},
		{
			"invalid request",
			fmt.Errorf("%w, User already exists", drill_errors.ErrInvalidRequest),
			http.StatusBadRequest,
			"User already exists",
		},
		{
			"unsupported language",
			fmt.Errorf("%w, Language COBOL is not supported", drill_errors.ErrUnsupportedLanguage),
			http.StatusBadRequest,
			"Language COBOL is not supported",
		},
		{"credentials", drill_errors.ErrInvalidUserCredentials, http.StatusUnauthorized, drill_errors.ErrInvalidUserCredentials.Error()},
		{"forbidden", fmt.Errorf("%w, admins only", drill_errors.ErrUnAuthorized), http.StatusForbidden, "admins only"},
		{"not found", fmt.Errorf("%w, problem missing", drill_errors.ErrNotFound), http.StatusNotFound, "problem missing"},
		{
			"internal hides cause",
			fmt.Errorf("%w, insert failed, %w", drill_errors.ErrInternal, fmt.Errorf("pq: secret detail")),
			http.StatusInternalServerError,
			drill_errors.ErrInternal.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlerError(tt.err, rec)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := decodeError(t, rec); got != tt.body {
				t.Errorf("body = %q, want %q", got, tt.body)
			}
		})
	}
}

func TestAuthFlow(t *testing.T) {
	a, _ := newTestApi(t)
	body := `{"email":"Ada@Example.com","password":"secret123","name":"Ada"}`

	rec := httptest.NewRecorder()
	a.HandlerRegister(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != middleware.KeyJwtSessionCookieName {
		t.Fatalf("expected a session cookie, got %v", cookies)
	}
	session := cookies[0]
	if !session.HttpOnly || session.SameSite != http.SameSiteStrictMode {
		t.Errorf("session cookie flags %+v", session)
	}

	rec = httptest.NewRecorder()
	a.HandlerRegister(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest || decodeError(t, rec) != "User already exists" {
		t.Errorf("duplicate register = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	a.HandlerLogin(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ada@example.com","password":"wrong-one"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/check", nil)
	req.AddCookie(&http.Cookie{Name: session.Name, Value: session.Value})
	middleware.JWTMiddleware(a.HandlerCheck)(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("check status = %d, body %s", rec.Code, rec.Body)
	}
	var checked userResponse
	json.NewDecoder(rec.Body).Decode(&checked)
	if checked.User.Email != "ada@example.com" {
		t.Errorf("checked user %+v", checked.User)
	}

	rec = httptest.NewRecorder()
	a.HandlerLogout(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	if c := rec.Result().Cookies(); len(c) != 1 || c[0].MaxAge >= 0 {
		t.Errorf("logout should expire the cookie, got %v", c)
	}
}

func TestRunCode(t *testing.T) {
	a, fj := newTestApi(t)

	run := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		a.HandlerRunCode(rec, httptest.NewRequest(http.MethodPost, "/execute-code/run", strings.NewReader(body)))
		return rec
	}

	rec := run(`{"source_code":"print(input())","language_id":71,"stdin":["1","2"],"expected_outputs":["1","2"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("run status = %d, body %s", rec.Code, rec.Body)
	}
	var ok runResponse
	json.NewDecoder(rec.Body).Decode(&ok)
	if !ok.Result.Passed || ok.Result.Language != "PYTHON" || len(ok.Result.TestCases) != 2 {
		t.Errorf("unexpected result %+v", ok.Result)
	}

	rec = run(`{"source_code":"wrong","language_id":71,"stdin":["1"],"expected_outputs":["1"]}`)
	var failed runResponse
	json.NewDecoder(rec.Body).Decode(&failed)
	if rec.Code != http.StatusOK || failed.Result.Passed {
		t.Errorf("wrong answer should still be 200 with passed=false, got %d %+v", rec.Code, failed.Result)
	}

	if rec = run(`{"source_code":"x","language_id":71,"stdin":["1","2"],"expected_outputs":["1"]}`); rec.Code != http.StatusBadRequest {
		t.Errorf("mismatched cases status = %d", rec.Code)
	}
	if rec = run(`{"source_code":"x","language_id":9999,"stdin":["1"],"expected_outputs":["1"]}`); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown language status = %d", rec.Code)
	}
	if rec = run(`not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad payload status = %d", rec.Code)
	}

	fj.mu.Lock()
	fj.down = true
	fj.mu.Unlock()
	rec = run(`{"source_code":"x","language_id":71,"stdin":["1"],"expected_outputs":["1"]}`)
	if rec.Code != http.StatusInternalServerError || decodeError(t, rec) != "execution service unavailable" {
		t.Errorf("judge down = %d %s", rec.Code, rec.Body)
	}
}

func TestReadiness(t *testing.T) {
	a, fj := newTestApi(t)

	readiness := func() readinessResponse {
		t.Helper()
		rec := httptest.NewRecorder()
		a.HandlerReadiness(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("readiness status = %d", rec.Code)
		}
		var body readinessResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		return body
	}

	if body := readiness(); body.Status != "ok" || body.ActiveRuns != 0 || len(body.Runs) != 0 {
		t.Errorf("idle readiness = %+v", body)
	}

	fj.mu.Lock()
	fj.busy = true
	fj.mu.Unlock()
	done := make(chan struct{})
	go func() {
		defer close(done)
		rec := httptest.NewRecorder()
		a.HandlerRunCode(rec, httptest.NewRequest(http.MethodPost, "/execute-code/run",
			strings.NewReader(`{"source_code":"x","language_id":71,"stdin":["1"],"expected_outputs":["1"]}`)))
	}()

	deadline := time.Now().Add(time.Second)
	var body readinessResponse
	for time.Now().Before(deadline) {
		if body = readiness(); len(body.Runs) == 1 && body.Runs[0].State == judge.StatePolling {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if body.ActiveRuns != 1 || len(body.Runs) != 1 {
		t.Fatalf("expected one run in flight, got %+v", body)
	}
	if run := body.Runs[0]; run.Language != "PYTHON" || run.State != judge.StatePolling || run.StartedAt.IsZero() {
		t.Errorf("unexpected run %+v", run)
	}

	fj.mu.Lock()
	fj.busy = false
	fj.mu.Unlock()
	<-done
	if body = readiness(); body.ActiveRuns != 0 {
		t.Errorf("finished runs should leave the registry, got %+v", body)
	}
}
