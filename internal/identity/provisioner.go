package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/bizops/internal/model"
	"github.com/hitoshi/bizops/internal/repository"
)

// ProvisionRecorder は新規ユーザー作成のメトリクス記録フック。
type ProvisionRecorder interface {
	RecordUserProvisioned()
}

// Provisioner は認証クレームからローカルユーザーを検索または遅延作成する。
// メールアドレスをルックアップキーとし、1メールアドレスにつき高々1レコードを保証する。
type Provisioner struct {
	users     repository.UserRepository
	recorders []ProvisionRecorder
}

// NewProvisioner はProvisionerを生成する。
// recordersを渡すと新規作成をメトリクスとして記録する。
func NewProvisioner(users repository.UserRepository, recorders ...ProvisionRecorder) *Provisioner {
	return &Provisioner{users: users, recorders: recorders}
}

// EnsureUser はクレームのメールアドレスに対応するユーザーを返す。
// 存在しない場合は role=sales、name=「姓名をスペース連結」で新規作成する。
// 既存レコードはクレームの内容で更新しない（冪等）。
//
// 同時初回ログインでusers.emailの一意制約違反が起きた場合は、
// 先に作成された側のレコードを取得し直して返す。エラーは伝播させない。
func (p *Provisioner) EnsureUser(ctx context.Context, claim *model.Claim) (*model.User, error) {
	user, err := p.users.FindByEmail(ctx, claim.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	if user != nil {
		return user, nil
	}

	newUser := &model.User{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(claim.FirstName + " " + claim.LastName),
		Email:     claim.Email,
		Role:      model.RoleSales,
		CreatedAt: time.Now(),
	}

	if err := p.users.Create(ctx, newUser); err != nil {
		if repository.IsUniqueViolation(err) {
			// 別リクエストが直前に同一メールアドレスで作成した
			existing, findErr := p.users.FindByEmail(ctx, claim.Email)
			if findErr != nil {
				return nil, fmt.Errorf("failed to re-fetch user after unique violation: %w", findErr)
			}
			if existing == nil {
				return nil, fmt.Errorf("user missing after unique violation: %w", err)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user provisioned",
		slog.String("user_id", newUser.ID),
		slog.String("email", newUser.Email),
	)
	for _, r := range p.recorders {
		r.RecordUserProvisioned()
	}

	return newUser, nil
}
