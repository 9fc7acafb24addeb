package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civicsync/internal/analytics"
	"civicsync/internal/core/auth"
	"civicsync/internal/query"
	"civicsync/internal/store/memory"
	"civicsync/internal/transport/http/router"
	"civicsync/internal/upload"
)

// newTestServer 完整引擎 + 空内存 store
func newTestServer(t *testing.T) (*gin.Engine, *memory.Store, *auth.JWTer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memory.New()
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "civicsync", TTL: time.Hour}
	saver, err := upload.NewSaver(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	router.Reset()
	router.Register(NewHealth())
	router.Register(NewAuth(st, jwter))
	router.Register(NewIssues(st, query.New(st), saver))
	router.Register(NewAnalytics(st, analytics.New(st)))

	return router.NewAPIEngine(zap.NewNop(), jwter, ""), st, jwter
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doForm(t *testing.T, r *gin.Engine, method, path, token string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	_ = mw.Close()

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, w, &body)
	return body.Error
}

// registerUser 走注册接口拿 token
func registerUser(t *testing.T, r *gin.Engine, email, name string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "password123", "name": name,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", email, w.Code, w.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	decode(t, w, &out)
	return out.Token
}

func createIssue(t *testing.T, r *gin.Engine, token, title string) string {
	t.Helper()
	w := doForm(t, r, http.MethodPost, "/api/issues", token, map[string]string{
		"title":       title,
		"description": "some description",
		"category":    "Road",
		"location":    "Main Street",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create issue: %d %s", w.Code, w.Body.String())
	}
	var out struct {
		Issue struct {
			ID string `json:"id"`
		} `json:"issue"`
	}
	decode(t, w, &out)
	return out.Issue.ID
}

func TestHealth(t *testing.T) {
	r, _, _ := newTestServer(t)
	w := doJSON(t, r, http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out struct {
		Status    string              `json:"status"`
		Endpoints map[string][]string `json:"endpoints"`
	}
	decode(t, w, &out)
	if out.Status != "OK" || len(out.Endpoints["auth"]) == 0 {
		t.Fatalf("body = %s", w.Body.String())
	}
}
