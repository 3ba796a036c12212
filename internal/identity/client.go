package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/bizops/internal/model"
)

const (
	defaultBaseURL = "https://api.workos.com"
	defaultTimeout = 10 * time.Second
)

// ClientConfig は外部IdP（WorkOS互換API）クライアントの設定。
type ClientConfig struct {
	APIKey         string
	ClientID       string
	CookiePassword string

	// テスト用にオーバーライド可能なベースURL
	BaseURL string

	// 外部呼び出しのタイムアウト。ハングした外部依存がリクエストを
	// 無期限に停滞させないようにする。
	Timeout time.Duration
}

// Client は外部IdPのユーザー管理APIを呼び出すクライアント。
// プロセス起動時に1回だけ生成し、参照で注入して共有する。生成後は変更しない。
type Client struct {
	config     ClientConfig
	httpClient *http.Client
}

// NewClient はClientを生成する。
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// SessionAuth は封印セッション検証の結果を表す。
type SessionAuth struct {
	Authenticated bool
	User          *model.Claim
}

// userPayload はIdPのAPIレスポンス中のユーザー表現。
type userPayload struct {
	ID                string `json:"id"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Email             string `json:"email"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

// toClaim はAPIレスポンスのユーザー表現を認証クレームに変換する。
func (u *userPayload) toClaim() *model.Claim {
	return &model.Claim{
		ID:                u.ID,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             u.Email,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

// AuthorizationURL は外部IdPの認可URLを構築する。外部呼び出しは行わない。
func (c *Client) AuthorizationURL(provider, redirectURI string) string {
	params := url.Values{
		"client_id":     {c.config.ClientID},
		"provider":      {provider},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
	}
	return strings.TrimSuffix(c.config.BaseURL, "/") + "/user_management/authorize?" + params.Encode()
}

// authenticateResponse は認可コード交換のレスポンス。
type authenticateResponse struct {
	User          *userPayload `json:"user"`
	SealedSession string       `json:"sealed_session"`
}

// AuthenticateWithCode は認可コードを封印セッションと認証クレームに交換する。
// 1往復のみでリトライは行わない。
func (c *Client) AuthenticateWithCode(ctx context.Context, code string) (string, *model.Claim, error) {
	body := map[string]any{
		"client_id":  c.config.ClientID,
		"grant_type": "authorization_code",
		"code":       code,
		"session": map[string]any{
			"seal_session":    true,
			"cookie_password": c.config.CookiePassword,
		},
	}

	var resp authenticateResponse
	if err := c.post(ctx, "/user_management/authenticate", body, &resp); err != nil {
		return "", nil, fmt.Errorf("failed to authenticate with code: %w", err)
	}

	if resp.SealedSession == "" {
		return "", nil, fmt.Errorf("empty sealed session in authenticate response")
	}
	if resp.User == nil {
		return "", nil, fmt.Errorf("missing user in authenticate response")
	}

	return resp.SealedSession, resp.User.toClaim(), nil
}

// sessionAuthenticateResponse は封印セッション検証のレスポンス。
type sessionAuthenticateResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *userPayload `json:"user"`
}

// AuthenticateWithSealedSession は封印セッショントークンをIdPに検証させる。
// トークンの復号はIdP側でのみ可能なため、アプリケーションはトークンを
// 解釈せずそのまま転送する。
func (c *Client) AuthenticateWithSealedSession(ctx context.Context, sealedSession string) (*SessionAuth, error) {
	body := map[string]any{
		"sealed_session":  sealedSession,
		"cookie_password": c.config.CookiePassword,
	}

	var resp sessionAuthenticateResponse
	if err := c.post(ctx, "/user_management/sessions/authenticate", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to authenticate sealed session: %w", err)
	}

	auth := &SessionAuth{Authenticated: resp.Authenticated}
	if resp.User != nil {
		auth.User = resp.User.toClaim()
	}
	return auth, nil
}

// logoutURLResponse はログアウトURL取得のレスポンス。
type logoutURLResponse struct {
	LogoutURL string `json:"logout_url"`
}

// GetLogoutURL は封印セッションに対応するIdP側ログアウトURLを取得する。
func (c *Client) GetLogoutURL(ctx context.Context, sealedSession, returnTo string) (string, error) {
	body := map[string]any{
		"sealed_session":  sealedSession,
		"cookie_password": c.config.CookiePassword,
		"return_to":       returnTo,
	}

	var resp logoutURLResponse
	if err := c.post(ctx, "/user_management/sessions/logout_url", body, &resp); err != nil {
		return "", fmt.Errorf("failed to get logout URL: %w", err)
	}

	if resp.LogoutURL == "" {
		return "", fmt.Errorf("empty logout URL in response")
	}
	return resp.LogoutURL, nil
}

// post はIdPのAPIエンドポイントにJSONリクエストを送り、レスポンスをデコードする。
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	endpoint := strings.TrimSuffix(c.config.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request to %s failed with status %d: %s", path, resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
