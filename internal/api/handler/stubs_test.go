package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/identification/identity-service/internal/core/domain"
)

type stubIdentityService struct {
	createAccountFn func(ctx context.Context, username, password string, roles []string) (*domain.Account, error)
	createRoleFn    func(ctx context.Context, name string) (*domain.Role, error)
	assignRolesFn   func(ctx context.Context, username string, roles []string) (bool, error)
	loginFn         func(ctx context.Context, username, password string) (string, error)
	listRolesFn     func(ctx context.Context) ([]*domain.Role, error)
}

func (s *stubIdentityService) CreateAccount(ctx context.Context, username, password string, roles []string) (*domain.Account, error) {
	return s.createAccountFn(ctx, username, password, roles)
}

func (s *stubIdentityService) CreateRole(ctx context.Context, name string) (*domain.Role, error) {
	return s.createRoleFn(ctx, name)
}

func (s *stubIdentityService) AssignRoles(ctx context.Context, username string, roles []string) (bool, error) {
	return s.assignRolesFn(ctx, username, roles)
}

func (s *stubIdentityService) Login(ctx context.Context, username, password string) (string, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubIdentityService) ListRoles(ctx context.Context) ([]*domain.Role, error) {
	return s.listRolesFn(ctx)
}

type stubThrottle struct {
	locked   bool
	failures map[string]int
	resets   map[string]int
}

func newStubThrottle() *stubThrottle {
	return &stubThrottle{failures: map[string]int{}, resets: map[string]int{}}
}

func (s *stubThrottle) Locked(context.Context, string) (bool, error) { return s.locked, nil }

func (s *stubThrottle) RecordFailure(_ context.Context, key string) error {
	s.failures[key]++
	return nil
}

func (s *stubThrottle) Reset(_ context.Context, key string) error {
	s.resets[key]++
	return nil
}

func newContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d (%v)", code, he.Code, he.Message)
	}
}
