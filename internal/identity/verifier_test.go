package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/bizops/internal/model"
)

// --- モック定義 ---

type mockSessionAuthenticator struct {
	authenticateFn func(ctx context.Context, sealedSession string) (*SessionAuth, error)
	calls          int
}

func (m *mockSessionAuthenticator) AuthenticateWithSealedSession(ctx context.Context, sealedSession string) (*SessionAuth, error) {
	m.calls++
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, sealedSession)
	}
	return nil, nil
}

var _ SessionAuthenticator = (*mockSessionAuthenticator)(nil)

// --- テスト ---

// トークンが空の場合は外部IdPを一切呼ばずに未認証を返すこと
func TestVerify_EmptyToken_NoExternalCall(t *testing.T) {
	mock := &mockSessionAuthenticator{}
	verifier := NewSessionVerifier(mock)

	claim := verifier.Verify(context.Background(), "")

	if claim != nil {
		t.Errorf("claim = %+v, want nil", claim)
	}
	if mock.calls != 0 {
		t.Errorf("external authenticator called %d times, want 0", mock.calls)
	}
}

func TestVerify_AuthenticatedSession_ReturnsClaim(t *testing.T) {
	mock := &mockSessionAuthenticator{
		authenticateFn: func(ctx context.Context, sealedSession string) (*SessionAuth, error) {
			if sealedSession != "sealed-token" {
				t.Errorf("sealedSession = %q, want %q", sealedSession, "sealed-token")
			}
			return &SessionAuth{
				Authenticated: true,
				User: &model.Claim{
					ID:        "user_01",
					FirstName: "Taro",
					LastName:  "Yamada",
					Email:     "taro@example.com",
				},
			}, nil
		},
	}
	verifier := NewSessionVerifier(mock)

	claim := verifier.Verify(context.Background(), "sealed-token")

	if claim == nil {
		t.Fatal("expected non-nil claim")
	}
	if claim.Email != "taro@example.com" {
		t.Errorf("Email = %q, want %q", claim.Email, "taro@example.com")
	}
}

// 外部呼び出しの失敗はすべて未認証として扱うこと（fail closed）
func TestVerify_DelegateError_ReturnsNil(t *testing.T) {
	mock := &mockSessionAuthenticator{
		authenticateFn: func(ctx context.Context, sealedSession string) (*SessionAuth, error) {
			return nil, errors.New("network error")
		},
	}
	verifier := NewSessionVerifier(mock)

	if claim := verifier.Verify(context.Background(), "sealed-token"); claim != nil {
		t.Errorf("claim = %+v, want nil on delegate error", claim)
	}
}

func TestVerify_NotAuthenticated_ReturnsNil(t *testing.T) {
	mock := &mockSessionAuthenticator{
		authenticateFn: func(ctx context.Context, sealedSession string) (*SessionAuth, error) {
			return &SessionAuth{Authenticated: false}, nil
		},
	}
	verifier := NewSessionVerifier(mock)

	if claim := verifier.Verify(context.Background(), "expired-token"); claim != nil {
		t.Errorf("claim = %+v, want nil for unauthenticated session", claim)
	}
}

// 認証フラグが真でもユーザークレームが欠落していれば未認証として扱うこと
func TestVerify_MissingUserClaim_ReturnsNil(t *testing.T) {
	mock := &mockSessionAuthenticator{
		authenticateFn: func(ctx context.Context, sealedSession string) (*SessionAuth, error) {
			return &SessionAuth{Authenticated: true, User: nil}, nil
		},
	}
	verifier := NewSessionVerifier(mock)

	if claim := verifier.Verify(context.Background(), "sealed-token"); claim != nil {
		t.Errorf("claim = %+v, want nil for missing user claim", claim)
	}
}

// 1リクエストにつき検証は1回のみ（リトライしない）
func TestVerify_SingleAttempt(t *testing.T) {
	mock := &mockSessionAuthenticator{
		authenticateFn: func(ctx context.Context, sealedSession string) (*SessionAuth, error) {
			return nil, errors.New("transient error")
		},
	}
	verifier := NewSessionVerifier(mock)

	verifier.Verify(context.Background(), "sealed-token")

	if mock.calls != 1 {
		t.Errorf("external authenticator called %d times, want exactly 1", mock.calls)
	}
}

// 検証結果がメトリクスレコーダーに記録されること
func TestVerify_RecordsMetrics(t *testing.T) {
	recorder := &mockSessionRecorder{}
	okMock := &mockSessionAuthenticator{
		authenticateFn: func(ctx context.Context, sealedSession string) (*SessionAuth, error) {
			return &SessionAuth{
				Authenticated: true,
				User:          &model.Claim{ID: "user_01", Email: "taro@example.com"},
			}, nil
		},
	}
	verifier := NewSessionVerifier(okMock, recorder)

	verifier.Verify(context.Background(), "sealed-token")
	if recorder.verified != 1 {
		t.Errorf("verified recorded %d times, want 1", recorder.verified)
	}

	failMock := &mockSessionAuthenticator{
		authenticateFn: func(ctx context.Context, sealedSession string) (*SessionAuth, error) {
			return nil, errors.New("network error")
		},
	}
	verifier = NewSessionVerifier(failMock, recorder)

	verifier.Verify(context.Background(), "sealed-token")
	if len(recorder.rejected) != 1 || recorder.rejected[0] != "verification_error" {
		t.Errorf("rejected reasons = %v, want [verification_error]", recorder.rejected)
	}
}

type mockSessionRecorder struct {
	verified int
	rejected []string
}

func (m *mockSessionRecorder) RecordSessionVerified() {
	m.verified++
}

func (m *mockSessionRecorder) RecordSessionRejected(reason string) {
	m.rejected = append(m.rejected, reason)
}

var _ SessionMetricsRecorder = (*mockSessionRecorder)(nil)
