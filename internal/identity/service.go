package identity

import (
	"context"
	"fmt"

	"github.com/hitoshi/bizops/internal/model"
)

// IdentityClient はログイン・コールバック・ログアウトフローが必要とする
// IdPクライアントのインターフェース。
type IdentityClient interface {
	AuthorizationURL(provider, redirectURI string) string
	AuthenticateWithCode(ctx context.Context, code string) (string, *model.Claim, error)
	GetLogoutURL(ctx context.Context, sealedSession, returnTo string) (string, error)
}

// UserProvisioner はローカルユーザーの検索・遅延作成のインターフェース。
type UserProvisioner interface {
	EnsureUser(ctx context.Context, claim *model.Claim) (*model.User, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	Provider    string // IdPの認可フロー識別子
	RedirectURI string // コールバックURI
	BaseURL     string // ログアウト後の戻り先
}

// Service はログイン・コールバック・ログアウトのフローを提供する。
type Service struct {
	client      IdentityClient
	provisioner UserProvisioner
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(client IdentityClient, provisioner UserProvisioner, config ServiceConfig) *Service {
	return &Service{
		client:      client,
		provisioner: provisioner,
		config:      config,
	}
}

// LoginURL は外部IdPの認可URLを返す。ローカル状態は作成しない。
func (s *Service) LoginURL() string {
	return s.client.AuthorizationURL(s.config.Provider, s.config.RedirectURI)
}

// HandleCallback は認可コードを封印セッションに交換し、
// 対応するローカルユーザーを検索または作成して返す。
func (s *Service) HandleCallback(ctx context.Context, code string) (string, *model.User, error) {
	sealedSession, claim, err := s.client.AuthenticateWithCode(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	user, err := s.provisioner.EnsureUser(ctx, claim)
	if err != nil {
		return "", nil, fmt.Errorf("failed to provision user: %w", err)
	}

	return sealedSession, user, nil
}

// LogoutURL は封印セッションに対応するIdP側ログアウトURLを返す。
func (s *Service) LogoutURL(ctx context.Context, sealedSession string) (string, error) {
	return s.client.GetLogoutURL(ctx, sealedSession, s.config.BaseURL)
}
