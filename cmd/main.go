package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Pacotes de infraestrutura e utilitários
	"github.com/laurarebecasantos/convenience-store/config"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/cache"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/database"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/logger"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/token"

	// Camadas da aplicação para Injeção de Dependências
	"github.com/laurarebecasantos/convenience-store/internal/api/client"
	"github.com/laurarebecasantos/convenience-store/internal/api/product"
	"github.com/laurarebecasantos/convenience-store/internal/api/router"
	"github.com/laurarebecasantos/convenience-store/internal/api/sale"
	"github.com/laurarebecasantos/convenience-store/internal/api/user"
	"github.com/laurarebecasantos/convenience-store/internal/repository/clientrepo"
	"github.com/laurarebecasantos/convenience-store/internal/repository/productrepo"
	"github.com/laurarebecasantos/convenience-store/internal/repository/salerepo"
	"github.com/laurarebecasantos/convenience-store/internal/repository/userrepo"
	"github.com/laurarebecasantos/convenience-store/internal/service/clientservice"
	"github.com/laurarebecasantos/convenience-store/internal/service/productservice"
	"github.com/laurarebecasantos/convenience-store/internal/service/saleservice"
	"github.com/laurarebecasantos/convenience-store/internal/service/userservice"
)

func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço da Loja de Conveniência...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	if err := godotenv.Load(); err != nil {
		// Se o arquivo .env não existir, as variáveis essenciais podem
		// estar no ambiente do sistema (ex: Docker).
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient, err := cache.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		log.Fatal("Falha ao conectar ao Redis.", err)
	}
	log.Info("Conexão Redis estabelecida.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios (Camada de Acesso a Dados)
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, log)
	saleRepo := salerepo.NewSaleRepository(db, cfg.DBTimeout, log)
	clientRepo := clientrepo.NewClientRepository(db, cfg.DBTimeout, log)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	// B. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	log.Debug("Serviço de Tokens JWT inicializado.", nil)

	// C. Serviços (Camada de Lógica de Negócio)
	productSvc := productservice.NewService(productRepo, log)
	saleSvc := saleservice.NewService(productRepo, saleRepo, log)
	clientSvc := clientservice.NewService(clientRepo, log)
	userSvc := userservice.NewService(userRepo, tokenSvc, log)
	log.Debug("Serviços inicializados.", nil)

	// D. Handlers (Camada de Apresentação)
	productHandler := product.NewHandler(productSvc, log)
	saleHandler := sale.NewHandler(saleSvc, clientSvc, log)
	clientHandler := client.NewHandler(clientSvc, log)
	userHandler := user.NewHandler(userSvc, log)
	log.Debug("Handlers inicializados.", nil)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(router.Dependencies{
		ProductHandler:       productHandler,
		SaleHandler:          saleHandler,
		ClientHandler:        clientHandler,
		UserHandler:          userHandler,
		TokenService:         tokenSvc,
		CacheClient:          cacheClient,
		RateLimitMaxRequests: cfg.RateLimitMaxRequests,
		RateLimitPeriod:      cfg.RateLimitPeriod,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor da Loja de Conveniência ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	// Lógica do Graceful Shutdown (captura de sinal)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	// Timeout para desligamento (usa o contexto)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
