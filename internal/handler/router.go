package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/bizops/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Verifier          middleware.SessionVerifier
	Provisioner       middleware.UserProvisioner
	CookieConfig      middleware.SessionCookieConfig
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger
	EnableHSTS        bool

	// 計測
	MetricsHandler http.Handler
	HTTPMetrics    func(next http.Handler) http.Handler

	// ヘルスチェック
	DB Pinger

	// 認証
	AuthService AuthServiceInterface

	// ドメインサービス
	CustomerService  CustomerServiceInterface
	ProductService   ProductServiceInterface
	OrderService     OrderServiceInterface
	ServicingService ServicingServiceInterface
	MaterialService  MaterialServiceInterface
	VisitService     VisitServiceInterface
	ExpenseService   ExpenseServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Metrics → Logging → (保護ルートのみ) AuthGate → RateLimit → CSRF
//
// 認証フロー（/login, /callback, /logout）とヘルスチェック・メトリクスは
// 認証ゲートの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.EnableHSTS))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics)
	}
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}

	authHandler := NewAuthHandler(deps.AuthService, AuthHandlerConfig{
		Cookie:      deps.CookieConfig,
		LoginPath:   "/login",
		ProfilePath: "/profile",
	})
	healthHandler := NewHealthHandler(deps.DB)
	customerHandler := NewCustomerHandler(deps.CustomerService)
	productHandler := NewProductHandler(deps.ProductService)
	orderHandler := NewOrderHandler(deps.OrderService)
	servicingHandler := NewServicingHandler(deps.ServicingService)
	materialHandler := NewMaterialHandler(deps.MaterialService)
	visitHandler := NewVisitHandler(deps.VisitService)
	expenseHandler := NewExpenseHandler(deps.ExpenseService)

	// --- 認証不要のルート ---

	r.Get("/", healthHandler.Check)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// 認証フロー
	r.Get("/login", authHandler.Login)
	r.Get("/callback", authHandler.Callback)
	r.Get("/logout", authHandler.Logout)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: AuthGate → RateLimit(General/Write) → CSRF
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthGate(deps.Verifier, deps.Provisioner, middleware.AuthGateConfig{
			LoginPath: "/login",
			Cookie:    deps.CookieConfig,
		}))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
			r.Use(deps.RateLimiter.WriteMiddleware())
		}

		r.Get("/profile", authHandler.Profile)

		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

			r.Handle("/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

			r.Route("/customers", func(r chi.Router) {
				r.Post("/", customerHandler.Create)
				r.Get("/", customerHandler.List)
				// /near は /{id} より先に宣言して経路の衝突を避ける
				r.Get("/near", customerHandler.ListNear)
				r.Get("/{id}", customerHandler.Get)
			})

			r.Route("/products", func(r chi.Router) {
				r.Post("/", productHandler.Create)
				r.Get("/", productHandler.List)
				r.Get("/{id}", productHandler.Get)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", orderHandler.Create)
				r.Get("/", orderHandler.List)
				r.Get("/{id}", orderHandler.Get)
			})

			r.Route("/services", func(r chi.Router) {
				r.Post("/", servicingHandler.Create)
				r.Get("/", servicingHandler.List)
				r.Get("/{id}", servicingHandler.Get)
			})

			r.Route("/materials", func(r chi.Router) {
				r.Post("/", materialHandler.Create)
				r.Get("/", materialHandler.List)
				r.Get("/{id}", materialHandler.Get)
			})

			r.Route("/visits", func(r chi.Router) {
				r.Post("/", visitHandler.Create)
				r.Get("/", visitHandler.List)
				r.Get("/{id}", visitHandler.Get)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Post("/", expenseHandler.Create)
				r.Get("/", expenseHandler.List)
				r.Get("/{id}", expenseHandler.Get)
			})
		})
	})

	return r
}
