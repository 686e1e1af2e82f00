package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/identification/identity-service/internal/core/domain"
)

func TestAuthHandler_SignIn_Success(t *testing.T) {
	stub := &stubIdentityService{
		loginFn: func(ctx context.Context, username, password string) (string, error) {
			if username != "alice" || password != "Secret123!" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return "signed.jwt.token", nil
		},
	}
	throttle := newStubThrottle()
	h := NewAuthHandler(stub, throttle, zerolog.Nop())

	c, rec := newContext(t, http.MethodPost, "/api/account/signin", `{"username":"alice","password":"Secret123!"}`)
	if err := h.SignIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "signed.jwt.token" {
		t.Fatalf("unexpected token: %q", resp["token"])
	}
	if throttle.resets["ALICE"] != 1 {
		t.Errorf("expected throttle reset for ALICE, got %v", throttle.resets)
	}
}

func TestAuthHandler_SignIn_InvalidCredentials(t *testing.T) {
	stub := &stubIdentityService{
		loginFn: func(ctx context.Context, username, password string) (string, error) {
			return "", &domain.AuthenticationError{}
		},
	}
	throttle := newStubThrottle()
	h := NewAuthHandler(stub, throttle, zerolog.Nop())

	c, _ := newContext(t, http.MethodPost, "/api/account/signin", `{"username":" Alice ","password":"WrongPass"}`)
	err := h.SignIn(c)

	var authErr *domain.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if throttle.failures["ALICE"] != 1 {
		t.Errorf("expected one failure recorded under the canonical name, got %v", throttle.failures)
	}
}

func TestAuthHandler_SignIn_BackendErrorIsNotCountedAsFailure(t *testing.T) {
	stub := &stubIdentityService{
		loginFn: func(ctx context.Context, username, password string) (string, error) {
			return "", errors.New("connection reset")
		},
	}
	throttle := newStubThrottle()
	h := NewAuthHandler(stub, throttle, zerolog.Nop())

	c, _ := newContext(t, http.MethodPost, "/api/account/signin", `{"username":"alice","password":"Secret123!"}`)
	if err := h.SignIn(c); err == nil {
		t.Fatal("expected error")
	}
	if len(throttle.failures) != 0 {
		t.Errorf("backend errors must not count as failed sign-ins, got %v", throttle.failures)
	}
}

func TestAuthHandler_SignIn_Throttled(t *testing.T) {
	stub := &stubIdentityService{
		loginFn: func(ctx context.Context, username, password string) (string, error) {
			t.Fatal("service must not be called while locked out")
			return "", nil
		},
	}
	throttle := newStubThrottle()
	throttle.locked = true
	h := NewAuthHandler(stub, throttle, zerolog.Nop())

	c, _ := newContext(t, http.MethodPost, "/api/account/signin", `{"username":"alice","password":"Secret123!"}`)
	expectHTTPError(t, h.SignIn(c), http.StatusTooManyRequests)
}

func TestAuthHandler_SignIn_WithoutThrottle(t *testing.T) {
	stub := &stubIdentityService{
		loginFn: func(ctx context.Context, username, password string) (string, error) {
			return "", &domain.AuthenticationError{}
		},
	}
	h := NewAuthHandler(stub, nil, zerolog.Nop())

	c, _ := newContext(t, http.MethodPost, "/api/account/signin", `{"username":"alice","password":"Secret123!"}`)
	var authErr *domain.AuthenticationError
	if err := h.SignIn(c); !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
}

func TestAuthHandler_SignIn_InvalidPayload(t *testing.T) {
	stub := &stubIdentityService{
		loginFn: func(ctx context.Context, username, password string) (string, error) {
			t.Fatal("service must not be called for invalid payloads")
			return "", nil
		},
	}
	h := NewAuthHandler(stub, nil, zerolog.Nop())

	cases := map[string]string{
		"malformed json": `{"username":`,
		"missing fields": `{}`,
		"short username": `{"username":"al","password":"Secret123!"}`,
		"short password": `{"username":"alice","password":"12345"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newContext(t, http.MethodPost, "/api/account/signin", body)
			expectHTTPError(t, h.SignIn(c), http.StatusBadRequest)
		})
	}
}
