package portal_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jhkim09/insuuniverse/internal/config"
	"github.com/jhkim09/insuuniverse/internal/portal"
)

func newTestClient(t *testing.T, apiBaseURL string) *portal.Client {
	t.Helper()
	client, err := portal.New(config.Portal{
		BaseURL:        "https://portal.example",
		APIBaseURL:     apiBaseURL,
		LoginID:        "agent",
		Password:       "secret",
		AcceptLanguage: "ko-KR",
		RequestTimeout: 5,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestLoginCapturesSessionCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/signin" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode signin body: %v", err)
		}
		if body["loginId"] != "agent" || body["password"] != "secret" {
			t.Errorf("unexpected credentials: %v", body)
		}
		http.SetCookie(w, &http.Cookie{Name: "_aT", Value: "token-123"})
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"memId": 808})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	auth, err := client.Login(context.Background())
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if auth.Token != "token-123" {
		t.Errorf("expected token token-123, got %q", auth.Token)
	}
	if auth.AccountID != 808 {
		t.Errorf("expected account 808, got %d", auth.AccountID)
	}
	if auth.IssuedAt.IsZero() {
		t.Error("expected IssuedAt to be set")
	}
}

func TestLoginRejectedIsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Login(context.Background())
	if err == nil {
		t.Fatal("expected error for rejected signin")
	}
	var authErr *portal.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}
	if authErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", authErr.StatusCode)
	}
	if !portal.IsAuthError(err) {
		t.Error("IsAuthError should report true")
	}
}

func TestLoginWithoutCookieIsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"memId": 808})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Login(context.Background())
	if !portal.IsAuthError(err) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestGetCarriesSessionCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("_aT")
		if err != nil || cookie.Value != "token-123" {
			t.Errorf("expected session cookie, got %v", r.Cookies())
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("expected page=2, got %q", got)
		}
		if got := r.Header.Get("Accept-Language"); got != "ko-KR" {
			t.Errorf("expected Accept-Language ko-KR, got %q", got)
		}
		w.Write([]byte(`{"list":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	auth := &portal.AuthContext{AccountID: 808, Token: "token-123"}

	params := url.Values{}
	params.Set("page", "2")
	status, body, err := client.Get(context.Background(), auth, "/analyze/1/basic", params)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("expected status 200, got %d", status)
	}
	if string(body) != `{"list":[]}` {
		t.Errorf("unexpected body %q", body)
	}
}

func TestGetReportsServerStatusWithoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	auth := &portal.AuthContext{AccountID: 808, Token: "token-123"}

	status, _, err := client.Get(context.Background(), auth, "/analyze/1/aggregate", nil)
	if err != nil {
		t.Fatalf("Get should not error on a 404 response: %v", err)
	}
	if status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", status)
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := portal.New(config.Portal{APIBaseURL: "https://api.example"})
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
}
