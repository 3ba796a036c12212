package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/bizops/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	// userContextKey はリクエストコンテキストにローカルユーザーを格納するためのキー。
	userContextKey = contextKey("user")

	// claimContextKey はリクエストコンテキストにIdPクレームを格納するためのキー。
	claimContextKey = contextKey("claim")
)

// SessionVerifier は封印セッショントークンの検証インターフェース。
// identity.SessionVerifierの部分集合として定義する。
type SessionVerifier interface {
	Verify(ctx context.Context, sealedSession string) *model.Claim
}

// UserProvisioner はローカルユーザーの検索・遅延作成のインターフェース。
type UserProvisioner interface {
	EnsureUser(ctx context.Context, claim *model.Claim) (*model.User, error)
}

// AuthGateConfig は認証ゲートの設定。
type AuthGateConfig struct {
	LoginPath string // 未認証時のリダイレクト先（ローカルのログインパス）
	Cookie    SessionCookieConfig
}

// NewAuthGate は保護ルートの認証ゲートミドルウェアを返す。
//
// 判定は3状態に分かれる:
//   - Cookieなし: 外部IdPを呼ばずにログインへリダイレクト
//   - 検証失敗（無効・期限切れ・IdP到達不能）: Cookieを削除してログインへリダイレクト
//   - 検証成功だがプロビジョニング失敗: 500を返す（認証拒否とは区別する）
//
// 検証成功時はローカルユーザーとクレームをコンテキストに注入して次へ進む。
func NewAuthGate(verifier SessionVerifier, provisioner UserProvisioner, config AuthGateConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. CookieなしはIdPを呼ばずに即リダイレクト
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, config.LoginPath, http.StatusFound)
				return
			}

			// 2. 封印セッションを外部IdPで検証（失敗はすべて未認証扱い）
			claim := safeVerify(r.Context(), verifier, cookie.Value)
			if claim == nil {
				ClearSessionCookie(w, config.Cookie)
				http.Redirect(w, r, config.LoginPath, http.StatusFound)
				return
			}

			// 3. ローカルユーザーを検索または作成
			user, err := provisioner.EnsureUser(r.Context(), claim)
			if err != nil {
				slog.Error("failed to provision user",
					slog.String("email", claim.Email),
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusInternalServerError, model.NewProvisioningError())
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			ctx = context.WithValue(ctx, claimContextKey, claim)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// safeVerify は検証の呼び出しをpanicから保護する。
// 検証段階での想定外の失敗はすべて未認証として扱う。
func safeVerify(ctx context.Context, verifier SessionVerifier, sealedSession string) (claim *model.Claim) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("session verification panicked", slog.Any("panic", rec))
			claim = nil
		}
	}()
	return verifier.Verify(ctx, sealedSession)
}

// UserFromContext はリクエストコンテキストからローカルユーザーを取得する。
// 認証ゲートを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// ClaimFromContext はリクエストコンテキストからIdPクレームを取得する。
func ClaimFromContext(ctx context.Context) (*model.Claim, error) {
	claim, ok := ctx.Value(claimContextKey).(*model.Claim)
	if !ok || claim == nil {
		return nil, fmt.Errorf("claim not found in context")
	}
	return claim, nil
}

// ContextWithUser はコンテキストにローカルユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// ContextWithClaim はコンテキストにIdPクレームを注入する。
func ContextWithClaim(ctx context.Context, claim *model.Claim) context.Context {
	return context.WithValue(ctx, claimContextKey, claim)
}
