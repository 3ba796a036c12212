// Package identity は外部IdPへの委譲によるセッション認証と
// ローカルユーザーの遅延プロビジョニングを提供する。
package identity

import (
	"context"
	"log/slog"

	"github.com/hitoshi/bizops/internal/model"
)

// SessionAuthenticator は封印セッション検証に必要なIdPクライアントの部分インターフェース。
type SessionAuthenticator interface {
	AuthenticateWithSealedSession(ctx context.Context, sealedSession string) (*SessionAuth, error)
}

// SessionMetricsRecorder はセッション検証結果のメトリクス記録フック。
type SessionMetricsRecorder interface {
	RecordSessionVerified()
	RecordSessionRejected(reason string)
}

// SessionVerifier は封印セッショントークンを検証する。
// 検証自体は外部IdPに委譲し、結果の判定のみを行う。
// 副作用は持たない（Cookieの削除は呼び出し側のゲートの責務）。
type SessionVerifier struct {
	client    SessionAuthenticator
	recorders []SessionMetricsRecorder
}

// NewSessionVerifier はSessionVerifierを生成する。
// recordersを渡すと検証結果をメトリクスとして記録する。
func NewSessionVerifier(client SessionAuthenticator, recorders ...SessionMetricsRecorder) *SessionVerifier {
	return &SessionVerifier{client: client, recorders: recorders}
}

// Verify はセッショントークンを検証し、認証済みクレームを返す。
// 未認証の場合はnilを返す。
//
//   - トークンが空の場合は外部呼び出しを行わずにnilを返す。
//   - 外部呼び出しの失敗（不正・期限切れトークン、ネットワークエラー）は
//     すべて未認証として扱う（fail closed）。リトライは行わない。
//   - 認証フラグが偽、またはユーザークレームが欠落している場合もnilを返す。
func (v *SessionVerifier) Verify(ctx context.Context, token string) *model.Claim {
	if token == "" {
		v.recordRejected("empty_token")
		return nil
	}

	auth, err := v.client.AuthenticateWithSealedSession(ctx, token)
	if err != nil {
		slog.Warn("sealed session authentication failed",
			slog.String("error", err.Error()),
		)
		v.recordRejected("verification_error")
		return nil
	}

	if !auth.Authenticated || auth.User == nil {
		v.recordRejected("not_authenticated")
		return nil
	}

	v.recordVerified()
	return auth.User
}

func (v *SessionVerifier) recordVerified() {
	for _, r := range v.recorders {
		r.RecordSessionVerified()
	}
}

func (v *SessionVerifier) recordRejected(reason string) {
	for _, r := range v.recorders {
		r.RecordSessionRejected(reason)
	}
}
