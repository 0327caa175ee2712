package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/laurarebecasantos/convenience-store/internal/api/client"
	"github.com/laurarebecasantos/convenience-store/internal/api/product"
	"github.com/laurarebecasantos/convenience-store/internal/api/sale"
	"github.com/laurarebecasantos/convenience-store/internal/api/user"
	"github.com/laurarebecasantos/convenience-store/internal/domain"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/cache"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/middleware"
)

// Dependencies agrupa tudo que o roteador precisa para montar as rotas:
// os Handlers já inicializados e os serviços que alimentam os middlewares.
type Dependencies struct {
	ProductHandler *product.Handler
	SaleHandler    *sale.Handler
	ClientHandler  *client.Handler
	UserHandler    *user.Handler

	TokenService middleware.TokenService
	CacheClient  cache.Client

	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
// Usamos o ServeMux padrão do net/http para roteamento.
func NewRouter(deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	auth := middleware.NewAuthMiddleware(deps.TokenService)
	adminOnly := middleware.PermissionMiddleware(domain.RoleAdmin)

	// --- 1. Rotas públicas ---
	mux.HandleFunc("/ping", PingHandler)
	mux.HandleFunc("/v1/users/register", deps.UserHandler.RegisterHandler)
	mux.HandleFunc("/v1/users/login", deps.UserHandler.LoginHandler)

	// Documentação Swagger gerada pelo swag
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// --- 2. Rotas do catálogo de produtos (autenticadas) ---
	mux.HandleFunc("/v1/products", auth(deps.ProductHandler.ProductsHandler))
	mux.HandleFunc("/v1/products/duedate", auth(deps.ProductHandler.ExpiredProductsHandler))
	mux.HandleFunc("/v1/products/", auth(deps.ProductHandler.ProductByIDHandler))

	// --- 3. Rotas de vendas (autenticadas) ---
	mux.HandleFunc("/v1/sales", auth(deps.SaleHandler.SalesHandler))

	// --- 4. Rotas de clientes (autenticadas) ---
	mux.HandleFunc("/v1/clients", auth(deps.ClientHandler.ClientsHandler))

	// --- 5. Rotas de usuários (administração, somente ADMIN) ---
	mux.HandleFunc("/v1/users", auth(adminOnly(deps.UserHandler.UsersHandler)))
	mux.HandleFunc("/v1/users/", auth(adminOnly(deps.UserHandler.UserByIDHandler)))

	// --- 6. Middlewares globais ---
	// O rate limiter envolve o mux inteiro: contagem por IP no Redis.
	return middleware.RateLimiter(deps.CacheClient, deps.RateLimitMaxRequests, deps.RateLimitPeriod)(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
