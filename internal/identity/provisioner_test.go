package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/bizops/internal/model"
	"github.com/hitoshi/bizops/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn      func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

// インメモリで一意制約を模倣するリポジトリ。競合テスト用。
type inMemoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // key: email
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[string]*model.User)}
}

func (r *inMemoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return nil, nil
}

func (r *inMemoryUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *inMemoryUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return &pq.Error{Code: "23505"}
	}
	copied := *user
	r.users[user.Email] = &copied
	return nil
}

var _ repository.UserRepository = (*inMemoryUserRepo)(nil)

// --- テスト ---

// 新規メールアドレスの場合、role=salesで氏名をスペース連結したユーザーが作成されること
func TestEnsureUser_NewEmail_CreatesWithDefaults(t *testing.T) {
	var created *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	provisioner := NewProvisioner(repo)

	claim := &model.Claim{
		ID:        "user_01",
		FirstName: "Taro",
		LastName:  "Yamada",
		Email:     "taro@example.com",
	}

	user, err := provisioner.EnsureUser(context.Background(), claim)
	if err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}

	if created == nil {
		t.Fatal("expected user to be created")
	}
	if user.Name != "Taro Yamada" {
		t.Errorf("Name = %q, want %q", user.Name, "Taro Yamada")
	}
	if user.Email != "taro@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "taro@example.com")
	}
	if user.Role != model.RoleSales {
		t.Errorf("Role = %q, want %q", user.Role, model.RoleSales)
	}
	if user.ID == "" {
		t.Error("ID should be assigned")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

// 既存ユーザーはクレームの内容で更新されずそのまま返ること（冪等）
func TestEnsureUser_ExistingEmail_ReturnsUnchanged(t *testing.T) {
	existing := &model.User{
		ID:        "existing-id",
		Name:      "Old Name",
		Email:     "taro@example.com",
		Role:      model.RoleAdmin,
		CreatedAt: time.Now().Add(-24 * time.Hour),
	}
	createCalls := 0
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return existing, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			createCalls++
			return nil
		},
	}
	provisioner := NewProvisioner(repo)

	claim := &model.Claim{
		FirstName: "New",
		LastName:  "Name",
		Email:     "taro@example.com",
	}

	user, err := provisioner.EnsureUser(context.Background(), claim)
	if err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}

	if createCalls != 0 {
		t.Errorf("Create called %d times, want 0", createCalls)
	}
	if user.ID != "existing-id" {
		t.Errorf("ID = %q, want existing record", user.ID)
	}
	if user.Name != "Old Name" {
		t.Errorf("Name = %q, should not be synced from claim", user.Name)
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("Role = %q, should not be reset to default", user.Role)
	}
}

// 冪等性: 同一メールアドレスで2回呼んでもレコードは1件のまま
func TestEnsureUser_CalledTwice_SingleRecord(t *testing.T) {
	repo := newInMemoryUserRepo()
	provisioner := NewProvisioner(repo)

	claim := &model.Claim{
		FirstName: "Taro",
		LastName:  "Yamada",
		Email:     "taro@example.com",
	}

	first, err := provisioner.EnsureUser(context.Background(), claim)
	if err != nil {
		t.Fatalf("first EnsureUser() error = %v", err)
	}
	second, err := provisioner.EnsureUser(context.Background(), claim)
	if err != nil {
		t.Fatalf("second EnsureUser() error = %v", err)
	}

	if len(repo.users) != 1 {
		t.Errorf("user records = %d, want 1", len(repo.users))
	}
	if second.ID != first.ID {
		t.Errorf("second call returned ID %q, want first call's ID %q", second.ID, first.ID)
	}
}

// 同時初回ログインの競合: 一意制約違反は再取得に変換され、エラーは伝播しないこと
func TestEnsureUser_UniqueViolationRace_RefetchesExisting(t *testing.T) {
	winner := &model.User{
		ID:    "winner-id",
		Name:  "Taro Yamada",
		Email: "taro@example.com",
		Role:  model.RoleSales,
	}
	lookups := 0
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			lookups++
			// 初回検索時は未登録、作成失敗後の再取得では競合相手のレコードが見える
			if lookups == 1 {
				return nil, nil
			}
			return winner, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			return &pq.Error{Code: "23505"}
		},
	}
	provisioner := NewProvisioner(repo)

	claim := &model.Claim{FirstName: "Taro", LastName: "Yamada", Email: "taro@example.com"}

	user, err := provisioner.EnsureUser(context.Background(), claim)
	if err != nil {
		t.Fatalf("EnsureUser() should not propagate unique violation, got %v", err)
	}
	if user.ID != "winner-id" {
		t.Errorf("ID = %q, want concurrent winner's record", user.ID)
	}
}

// 同時初回ログインをゴルーチンで模擬: レコードは1件、どちらの呼び出しにもエラーが出ないこと
func TestEnsureUser_ConcurrentFirstLogins_OneRecord(t *testing.T) {
	repo := newInMemoryUserRepo()
	provisioner := NewProvisioner(repo)

	claim := &model.Claim{FirstName: "Taro", LastName: "Yamada", Email: "taro@example.com"}

	const goroutines = 8
	var wg sync.WaitGroup
	errs := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := provisioner.EnsureUser(context.Background(), claim); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent EnsureUser() error = %v", err)
	}
	if len(repo.users) != 1 {
		t.Errorf("user records = %d, want 1", len(repo.users))
	}
}

// 一意制約違反以外のストレージエラーはプロビジョニング失敗として伝播すること
func TestEnsureUser_StorageError_Propagates(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return errors.New("connection refused")
		},
	}
	provisioner := NewProvisioner(repo)

	claim := &model.Claim{FirstName: "Taro", LastName: "Yamada", Email: "taro@example.com"}

	if _, err := provisioner.EnsureUser(context.Background(), claim); err == nil {
		t.Fatal("expected storage error to propagate")
	}
}

// 新規作成時のみメトリクスレコーダーに記録されること
func TestEnsureUser_RecordsProvisionMetric(t *testing.T) {
	repo := newInMemoryUserRepo()
	recorder := &mockProvisionRecorder{}
	provisioner := NewProvisioner(repo, recorder)

	claim := &model.Claim{FirstName: "Taro", LastName: "Yamada", Email: "taro@example.com"}

	// 初回は新規作成として記録される
	if _, err := provisioner.EnsureUser(context.Background(), claim); err != nil {
		t.Fatalf("first EnsureUser() error = %v", err)
	}
	if recorder.provisioned != 1 {
		t.Errorf("provisioned recorded %d times, want 1", recorder.provisioned)
	}

	// 既存ユーザーの検索では記録されない
	if _, err := provisioner.EnsureUser(context.Background(), claim); err != nil {
		t.Fatalf("second EnsureUser() error = %v", err)
	}
	if recorder.provisioned != 1 {
		t.Errorf("provisioned recorded %d times after lookup, want still 1", recorder.provisioned)
	}
}

type mockProvisionRecorder struct {
	provisioned int
}

func (m *mockProvisionRecorder) RecordUserProvisioned() {
	m.provisioned++
}

var _ ProvisionRecorder = (*mockProvisionRecorder)(nil)
