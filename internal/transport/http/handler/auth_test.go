package handler

import (
	"net/http"
	"testing"
	"time"

	"civicsync/internal/core/auth"
)

func TestRegisterValidation(t *testing.T) {
	r, _, _ := newTestServer(t)

	tests := []struct {
		name     string
		body     map[string]string
		wantMsg  string
	}{
		{
			"missing fields",
			map[string]string{"email": "a@example.com"},
			"All fields (email, password, name) are required",
		},
		{
			"bad email",
			map[string]string{"email": "not-an-email", "password": "password123", "name": "A"},
			"Invalid email format",
		},
		{
			"short password",
			map[string]string{"email": "a@example.com", "password": "12345", "name": "A"},
			"Password must be at least 6 characters long",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if got := errorOf(t, w); got != tt.wantMsg {
				t.Fatalf("error = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestRegisterStoresLowercaseEmail(t *testing.T) {
	r, st, _ := newTestServer(t)
	registerUser(t, r, "Mixed.Case@Example.COM", "Case")

	u, err := st.FindUserByEmail("mixed.case@example.com")
	if err != nil || u == nil {
		t.Fatalf("lookup: %v %v", u, err)
	}
	if u.Email != "mixed.case@example.com" {
		t.Fatalf("stored email = %q", u.Email)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r, _, _ := newTestServer(t)
	registerUser(t, r, "dup@example.com", "First")

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "DUP@example.com", "password": "password123", "name": "Second",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := errorOf(t, w); got != "User with this email already exists" {
		t.Fatalf("error = %q", got)
	}
}

func TestLogin(t *testing.T) {
	r, _, _ := newTestServer(t)
	registerUser(t, r, "login@example.com", "Login")

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "login@example.com", "password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var out struct {
		Message string `json:"message"`
		Token   string `json:"token"`
		User    struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	decode(t, w, &out)
	if out.Token == "" || out.User.Email != "login@example.com" {
		t.Fatalf("body = %s", w.Body.String())
	}

	// 账号不存在和密码错误都是同一个 400
	for _, body := range []map[string]string{
		{"email": "login@example.com", "password": "wrong-password"},
		{"email": "nobody@example.com", "password": "password123"},
	} {
		w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		if got := errorOf(t, w); got != "Invalid email or password" {
			t.Fatalf("error = %q", got)
		}
	}
}

func TestMe(t *testing.T) {
	r, _, _ := newTestServer(t)
	tok := registerUser(t, r, "me@example.com", "Me")

	w := doJSON(t, r, http.MethodGet, "/api/auth/me", tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out struct {
		User struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"user"`
	}
	decode(t, w, &out)
	if out.User.Email != "me@example.com" || out.User.Name != "Me" {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestAuthGate(t *testing.T) {
	r, _, jwter := newTestServer(t)

	// 缺凭证 401 / 凭证无效 403，必须区分
	w := doJSON(t, r, http.MethodGet, "/api/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d, want 401", w.Code)
	}
	if got := errorOf(t, w); got != "Access denied. No token provided." {
		t.Fatalf("error = %q", got)
	}

	w = doJSON(t, r, http.MethodGet, "/api/auth/me", "garbage-token", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("invalid token: status = %d, want 403", w.Code)
	}
	if got := errorOf(t, w); got != "Invalid or expired token" {
		t.Fatalf("error = %q", got)
	}

	expired := &auth.JWTer{Secret: jwter.Secret, Issuer: jwter.Issuer, TTL: -2 * time.Minute}
	tok, err := expired.Issue("u1", "u1@example.com")
	if err != nil {
		t.Fatal(err)
	}
	w = doJSON(t, r, http.MethodGet, "/api/auth/me", tok, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expired token: status = %d, want 403", w.Code)
	}
}
