package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/laurarebecasantos/convenience-store/internal/domain"
	apperror "github.com/laurarebecasantos/convenience-store/internal/errors"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/cache"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/logger"
)

// Chave de cache para produtos (estratégia Cache-Aside).
const productCacheKey = "product:%s"

const productColumns = `id, name, price, stock_quantity, status, expiration_date, version, created_at, updated_at`

// ProductRepository implementa o contrato de persistência de produtos.
// Contém as conexões necessárias para acessar dados (PostgreSQL e Redis).
type ProductRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewProductRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, log logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    log,
	}
}

// scanProduct mapeia uma linha do DB para a struct domain.Product.
func scanProduct(row interface{ Scan(dest ...interface{}) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.StockQuantity,
		&p.Status,
		&p.ExpirationDate,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

// Save persiste um novo Produto no banco de dados.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        INSERT INTO products (id, name, price, stock_quantity, status, expiration_date, version, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		product.ID,
		product.Name,
		product.Price,
		product.StockQuantity,
		product.Status,
		product.ExpirationDate,
		product.Version,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("Falha ao inserir produto", err)
	}

	return product, nil
}

// FindByID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
// O snapshot retornado inclui a coluna version, usada pelo motor de vendas
// no controle de concorrência otimista.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(productCacheKey, id)
	var product domain.Product

	// 1. Tentar obter do Cache (Redis)
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		if json.Unmarshal([]byte(cachedData), &product) == nil {
			// Cache HIT
			return product, nil
		}
		// Se a desserialização falhar, seguimos para o DB
	} else if err != cache.ErrCacheMiss {
		// Erro real de cache (ex: conexão perdida): logamos e seguimos para o DB.
		r.logger.Warn("Falha ao ler produto do cache Redis.", map[string]interface{}{"product_id": id, "error": err.Error()})
	}

	// 2. Busca no Banco de Dados (PostgreSQL)
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err = scanProduct(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.Product{}, apperror.NewProductNotFoundError(id)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("Falha ao buscar produto", err)
	}

	// 3. Popular o cache para futuras requisições (com TTL)
	if productJSON, marshalErr := json.Marshal(product); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, productJSON, r.CacheTTL)
	}

	return product, nil
}

// FindAll lista todos os produtos cadastrados.
func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products ORDER BY name`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao listar produtos no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar produtos", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperror.NewDBError("Falha ao mapear produto", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar produtos", err)
	}

	return products, nil
}

// FindExpired lista os produtos cuja data de validade já passou (ou vence hoje).
func (r *ProductRepository) FindExpired(ctx context.Context, reference time.Time) ([]domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	// Produtos sem validade são gravados com o timestamp zero do Go e nunca vencem.
	query := `SELECT ` + productColumns + ` FROM products WHERE expiration_date > '0001-01-01' AND expiration_date <= $1 ORDER BY expiration_date`

	rows, err := r.DB.QueryContext(ctxTimeout, query, reference)
	if err != nil {
		r.logger.Error("Falha ao listar produtos vencidos no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar produtos vencidos", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperror.NewDBError("Falha ao mapear produto vencido", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar produtos vencidos", err)
	}

	return products, nil
}

// ExistsByName verifica se já existe produto cadastrado com o nome informado.
func (r *ProductRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var exists bool
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT EXISTS (SELECT 1 FROM products WHERE name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		r.logger.Error("Falha ao verificar nome de produto no DB.", err)
		return false, apperror.NewDBError("Falha ao verificar nome de produto", err)
	}

	return exists, nil
}

// Update grava as alterações de um produto existente usando controle de
// concorrência otimista: a versão antiga é checada no WHERE e incrementada.
// Em caso de conflito (registro alterado por outra operação), retorna ConflictError.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        UPDATE products
        SET name = $1, price = $2, stock_quantity = $3, status = $4,
            expiration_date = $5, version = $6, updated_at = $7
        WHERE id = $8 AND version = $9`

	now := time.Now().UTC()
	result, err := r.DB.ExecContext(ctxTimeout, query,
		product.Name,
		product.Price,
		product.StockQuantity,
		product.Status,
		product.ExpirationDate,
		product.Version+1,
		now,
		product.ID,
		product.Version,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("Falha ao atualizar produto", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Product{}, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("Falha no controle de concorrência otimista (OCC) ao atualizar produto.", map[string]interface{}{
			"product_id":       product.ID,
			"expected_version": product.Version,
		})
		return domain.Product{}, apperror.NewConflictError("O produto foi modificado por outra operação. Tente novamente.")
	}

	product.Version++
	product.UpdatedAt = now

	// Invalida o cache: a próxima leitura repopula com o registro atualizado.
	r.InvalidateCache(ctxTimeout, product.ID)

	return product, nil
}

// InvalidateCache remove o produto do cache Redis. Chamado após qualquer
// mutação (inclusive a baixa de estoque feita pela transação de venda) para
// que leituras subsequentes não enxerguem estoque ou versão desatualizados.
func (r *ProductRepository) InvalidateCache(ctx context.Context, id string) {
	key := fmt.Sprintf(productCacheKey, id)
	if err := r.Cache.Delete(ctx, key); err != nil {
		r.logger.Warn("Falha ao invalidar cache de produto.", map[string]interface{}{"product_id": id, "error": err.Error()})
	}
}
