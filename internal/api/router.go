package api

import (
	"net/http"
	"time"

	"paylite/internal/account"
	"paylite/internal/api/response"
	"paylite/internal/ledger"
	"paylite/internal/middleware"
	"paylite/internal/policy"
	"paylite/internal/utils"

	"github.com/gin-gonic/gin"
)

// ServiceName is reported by the index and health endpoints
const ServiceName = "PayLite API"

// Deps are the services the router dispatches to
type Deps struct {
	Accounts       *account.Service
	Ledger         *ledger.Service
	Tokens         *utils.TokenIssuer
	LoginLimiter   *utils.RateLimiter // nil disables login rate limiting
	TrustedProxies []string
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRouter builds the gin engine with every route
func NewRouter(d Deps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, err
	}
	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) { response.Fail(c, http.StatusNotFound, "Not found") })
	r.NoMethod(func(c *gin.Context) { response.Fail(c, http.StatusMethodNotAllowed, "Method not allowed") })

	r.GET("/", func(c *gin.Context) { response.OK(c, http.StatusOK, ServiceName) })
	r.GET("/health", func(c *gin.Context) {
		response.OK(c, http.StatusOK, HealthResponse{Status: "ok", Service: ServiceName, Timestamp: time.Now().UTC()})
	})

	// Auth routes
	auth := r.Group("/auth")
	auth.POST("/register", RegisterHandler(d.Accounts))
	auth.POST("/login", middleware.LoginRateLimit(d.LoginLimiter), LoginHandler(d.Accounts, d.Tokens))

	// Everything below requires a bearer token
	authed := r.Group("/", middleware.JWTAuthMiddleware(d.Tokens, d.Accounts))

	users := authed.Group("/users")
	users.POST("", middleware.AdminOnlyMiddleware(policy.CreateUser), CreateUserHandler(d.Accounts))
	users.GET("", middleware.AdminOnlyMiddleware(policy.ListUsers), ListUsersHandler(d.Accounts))
	users.GET("/:user_id", GetUserHandler(d.Accounts))
	users.PUT("/:user_id", UpdateUserHandler(d.Accounts))
	users.DELETE("/:user_id", middleware.AdminOnlyMiddleware(policy.DeleteUser), DeleteUserHandler(d.Accounts))

	wallets := authed.Group("/wallets")
	wallets.GET("", middleware.AdminOnlyMiddleware(policy.ListWallets), ListWalletsHandler(d.Ledger))
	wallets.GET("/me", GetMyWalletHandler(d.Ledger))
	wallets.GET("/:user_id", GetWalletHandler(d.Ledger))

	txs := authed.Group("/transactions")
	txs.POST("/deposit", DepositHandler(d.Ledger))
	txs.POST("/withdraw", WithdrawHandler(d.Ledger))
	txs.POST("/transfer", TransferHandler(d.Ledger))
	txs.GET("/all", middleware.AdminOnlyMiddleware(policy.ListAllTransactions), ListAllTransactionsHandler(d.Ledger))
	txs.GET("/me", MyTransactionsHandler(d.Ledger))
	txs.GET("/:user_id", UserTransactionsHandler(d.Ledger))
	txs.GET("/:user_id/all", UserAllTransactionsHandler(d.Ledger))

	return r, nil
}
