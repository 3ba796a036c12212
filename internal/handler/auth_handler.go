package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/bizops/internal/middleware"
	"github.com/hitoshi/bizops/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// LoginURL は外部IdPの認可URLを返す。
	LoginURL() string
	// HandleCallback は認可コードを封印セッションとローカルユーザーに交換する。
	HandleCallback(ctx context.Context, code string) (string, *model.User, error)
	// LogoutURL は封印セッションに対応するIdP側ログアウトURLを返す。
	LogoutURL(ctx context.Context, sealedSession string) (string, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	Cookie      middleware.SessionCookieConfig
	LoginPath   string // ログイン開始のローカルパス
	ProfilePath string // 認証成功後のリダイレクト先
}

// AuthHandler は外部IdP委譲認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// Login は外部IdPの認可URLへリダイレクトする。ローカル状態は一切作成しない。
// GET /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.service.LoginURL(), http.StatusFound)
}

// Callback は外部IdPからの認可コールバックを処理する。
// GET /callback?code=xxx
//
// codeがない場合はCookieを設定せずに400を返す。
// コード交換とプロビジョニングに成功した場合のみセッションCookieを設定し、
// プロフィールへリダイレクトする。失敗の詳細はログのみに記録し、
// ユーザーにはログインへのリダイレクトだけを返す。
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrCodeMissingAuthCode,
			Message: "認可コードがありません。",
		})
		return
	}

	sealedSession, user, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		slog.Error("authentication callback failed", slog.String("error", err.Error()))
		http.Redirect(w, r, h.config.LoginPath, http.StatusFound)
		return
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	middleware.SetSessionCookie(w, sealedSession, h.config.Cookie)
	http.Redirect(w, r, h.config.ProfilePath, http.StatusFound)
}

// Logout はローカルセッションを破棄し、IdP側のログアウトへ誘導する。
// GET /logout
//
// ローカルCookieの削除はIdP呼び出しの成否にかかわらず必ず行う。
// Cookieがない場合やIdP側ログアウトURLの取得に失敗した場合はログインへ戻す。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// 先にCookieを無条件で削除する
	middleware.ClearSessionCookie(w, h.config.Cookie)

	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		http.Redirect(w, r, h.config.LoginPath, http.StatusFound)
		return
	}

	logoutURL, err := h.service.LogoutURL(r.Context(), cookie.Value)
	if err != nil {
		slog.Warn("failed to get logout URL", slog.String("error", err.Error()))
		http.Redirect(w, r, h.config.LoginPath, http.StatusFound)
		return
	}

	http.Redirect(w, r, logoutURL, http.StatusFound)
}

// profileResponse はプロフィールのAPIレスポンス。
type profileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile は認証済みユーザーのローカルレコードを返す。
// GET /profile（認証ゲート配下）
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	})
}
