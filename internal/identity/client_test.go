package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAuthorizationURL_ContainsRequiredParams(t *testing.T) {
	client := NewClient(ClientConfig{
		APIKey:   "sk_test",
		ClientID: "client_12345",
	})

	url := client.AuthorizationURL("authkit", "http://localhost:8080/callback")

	tests := []struct {
		name     string
		contains string
	}{
		{"client_id", "client_id=client_12345"},
		{"provider", "provider=authkit"},
		{"redirect_uri", "redirect_uri="},
		{"response_type", "response_type=code"},
		{"endpoint", "/user_management/authorize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(url, tt.contains) {
				t.Errorf("URL should contain %q, got %q", tt.contains, url)
			}
		})
	}
}

func TestAuthenticateWithCode_Success(t *testing.T) {
	// テスト用のIdP APIサーバーを立てる
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user_management/authenticate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk_test" {
			t.Errorf("unexpected Authorization header: %q", auth)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if body["code"] != "auth-code-123" {
			t.Errorf("code = %v, want %q", body["code"], "auth-code-123")
		}
		session, _ := body["session"].(map[string]any)
		if session["cookie_password"] != "cookie-pw" {
			t.Errorf("cookie_password = %v, want %q", session["cookie_password"], "cookie-pw")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{
				"id":         "user_01",
				"first_name": "Taro",
				"last_name":  "Yamada",
				"email":      "taro@example.com",
			},
			"sealed_session": "sealed-abc",
		})
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		APIKey:         "sk_test",
		ClientID:       "client_12345",
		CookiePassword: "cookie-pw",
		BaseURL:        server.URL,
	})

	sealed, claim, err := client.AuthenticateWithCode(context.Background(), "auth-code-123")
	if err != nil {
		t.Fatalf("AuthenticateWithCode() error = %v", err)
	}
	if sealed != "sealed-abc" {
		t.Errorf("sealed = %q, want %q", sealed, "sealed-abc")
	}
	if claim.Email != "taro@example.com" {
		t.Errorf("Email = %q, want %q", claim.Email, "taro@example.com")
	}
	if claim.FirstName != "Taro" || claim.LastName != "Yamada" {
		t.Errorf("name = %q %q, want Taro Yamada", claim.FirstName, claim.LastName)
	}
}

func TestAuthenticateWithCode_NonOKStatus_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "sk_test", BaseURL: server.URL})

	if _, _, err := client.AuthenticateWithCode(context.Background(), "bad-code"); err == nil {
		t.Fatal("expected error for non-OK response")
	}
}

func TestAuthenticateWithSealedSession_Authenticated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user_management/sessions/authenticate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"authenticated": true,
			"user": map[string]any{
				"id":    "user_01",
				"email": "taro@example.com",
			},
		})
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "sk_test", CookiePassword: "cookie-pw", BaseURL: server.URL})

	auth, err := client.AuthenticateWithSealedSession(context.Background(), "sealed-abc")
	if err != nil {
		t.Fatalf("AuthenticateWithSealedSession() error = %v", err)
	}
	if !auth.Authenticated {
		t.Error("Authenticated should be true")
	}
	if auth.User == nil || auth.User.Email != "taro@example.com" {
		t.Errorf("User = %+v, want claim with email", auth.User)
	}
}

func TestAuthenticateWithSealedSession_NotAuthenticated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"authenticated": false})
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "sk_test", BaseURL: server.URL})

	auth, err := client.AuthenticateWithSealedSession(context.Background(), "expired")
	if err != nil {
		t.Fatalf("AuthenticateWithSealedSession() error = %v", err)
	}
	if auth.Authenticated {
		t.Error("Authenticated should be false")
	}
	if auth.User != nil {
		t.Errorf("User = %+v, want nil", auth.User)
	}
}

func TestGetLogoutURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user_management/sessions/logout_url" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"logout_url": "https://idp.example.com/logout?session=abc",
		})
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "sk_test", BaseURL: server.URL})

	url, err := client.GetLogoutURL(context.Background(), "sealed-abc", "http://localhost:8080")
	if err != nil {
		t.Fatalf("GetLogoutURL() error = %v", err)
	}
	if url != "https://idp.example.com/logout?session=abc" {
		t.Errorf("url = %q", url)
	}
}

// compile-time interface checks
var _ SessionAuthenticator = (*Client)(nil)
var _ IdentityClient = (*Client)(nil)
