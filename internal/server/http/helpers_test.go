package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/auth"
	"github.com/dmitrijs2005/todolist/internal/server/config"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/memory"
	"github.com/dmitrijs2005/todolist/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/abtime"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret   = "test-secret"
	testFrontend = "http://localhost:5173"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeOAuth struct {
	cred  *models.OAuthCredential
	err   error
	codes []string
}

func (f *fakeOAuth) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + state
}

func (f *fakeOAuth) Exchange(_ context.Context, code string) (*models.OAuthCredential, error) {
	f.codes = append(f.codes, code)
	if f.err != nil {
		return nil, f.err
	}
	return f.cred, nil
}

type testServer struct {
	srv   *Server
	rm    *memory.RepositoryManager
	clock *abtime.ManualTime
	cfg   *config.Config
}

// newTestServer wires the HTTP server over memory repositories and a
// manual clock. oauth may be nil.
func newTestServer(t *testing.T, oauth auth.OAuthProvider) *testServer {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SessionSecret = testSecret
	cfg.FrontendURL = testFrontend

	rm := memory.NewRepositoryManager()
	clock := abtime.NewManualAtTime(epoch)
	log := logging.NewNop()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	identity := services.NewIdentityService(nil, rm, hasher, log)
	sessions := services.NewSessionService(nil, rm, clock, cfg.SessionTTL, log)
	svc := Services{
		Auth:     services.NewAuthService(memory.Transactor{}, identity, sessions, log),
		Sessions: sessions,
		Notes:    services.NewNoteService(nil, rm),
	}
	verifiers := services.Verifiers{
		Password:  services.NewPasswordVerifier(nil, rm, hasher),
		OAuth:     services.NewOAuthVerifier(),
		Principal: services.NewPrincipalVerifier(),
	}
	tokens := auth.NewTokenCodec([]byte(cfg.SessionSecret), sessions.Now)

	return &testServer{
		srv:   NewServer(cfg, svc, verifiers, oauth, tokens, log),
		rm:    rm,
		clock: clock,
		cfg:   cfg,
	}
}

func (ts *testServer) do(t *testing.T, method, target string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}

	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

// register signs up a user and returns the session cookie it got.
func (ts *testServer) register(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/register", credentialsRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c := findCookie(rec, common.SessionCookieName)
	require.NotNil(t, c)
	return c
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type userBody struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

type noteBody struct {
	Message string       `json:"message"`
	Note    *models.Note `json:"note"`
}

func fmtErr(sentinel error, msg string) error {
	return fmt.Errorf("%w: %s", sentinel, msg)
}

func newRawRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

func serve(ts *testServer, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}
