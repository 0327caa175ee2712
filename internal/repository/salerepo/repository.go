package salerepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/laurarebecasantos/convenience-store/internal/domain"
	apperror "github.com/laurarebecasantos/convenience-store/internal/errors"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/logger"
)

// SaleRepository implementa o contrato de persistência de vendas.
// É o único componente autorizado a dar baixa em estoque e a criar registros
// de venda; todo o resto do sistema acessa esses dados somente para leitura.
type SaleRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewSaleRepository cria e retorna uma nova instância do Repositório de Vendas.
func NewSaleRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *SaleRepository {
	return &SaleRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    log,
	}
}

// RegisterSale grava a venda e as baixas de estoque como uma única unidade
// atômica: ou todas as baixas e o registro da venda são persistidos juntos,
// ou nada é (rollback em qualquer falha, inclusive cancelamento do contexto).
//
// Cada baixa usa controle de concorrência otimista: o UPDATE checa a versão
// do snapshot validado e exige estoque suficiente e status ACTIVE na própria
// cláusula WHERE. Zero linhas afetadas significa que outra operação alterou o
// produto entre a validação e o commit; a transação inteira é abortada com
// ConflictError e o chamador pode repetir o registro completo da venda.
func (r *SaleRepository) RegisterSale(ctx context.Context, sale domain.Sale, decrements []domain.StockDecrement) (domain.Sale, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de venda.", err)
		return domain.Sale{}, apperror.NewDBError("Falha ao iniciar transação de venda", err)
	}
	defer tx.Rollback() // No-op após o Commit; garante rollback em qualquer retorno antecipado

	// 1. Baixa de estoque por item, com OCC e guarda de estoque não-negativo
	const decrementSQL = `
        UPDATE products
        SET stock_quantity = stock_quantity - $2, version = version + 1, updated_at = $3
        WHERE id = $1 AND version = $4 AND status = $5 AND stock_quantity >= $2`

	now := time.Now().UTC()
	for _, d := range decrements {
		result, err := tx.ExecContext(ctxTimeout, decrementSQL,
			d.ProductID, d.Quantity, now, d.ExpectedVersion, domain.StatusActive,
		)
		if err != nil {
			r.logger.Error("Falha ao dar baixa no estoque dentro da transação de venda.", err)
			return domain.Sale{}, apperror.NewDBError("Falha ao dar baixa no estoque", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return domain.Sale{}, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
		}
		if rowsAffected == 0 {
			r.logger.Warn("Conflito de concorrência na baixa de estoque (OCC).", map[string]interface{}{
				"product_id":       d.ProductID,
				"quantity":         d.Quantity,
				"expected_version": d.ExpectedVersion,
			})
			return domain.Sale{}, apperror.NewConflictError("O estoque foi modificado por outra operação. Repita o registro da venda.")
		}
	}

	// 2. Registro da venda
	const saleSQL = `
        INSERT INTO sales (id, client_id, payment_method, total_value, total_quantity, description, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = tx.ExecContext(ctxTimeout, saleSQL,
		sale.ID,
		sale.ClientID,
		sale.PaymentMethod,
		sale.TotalValue,
		sale.TotalQuantity,
		sale.Description,
		sale.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir venda no DB.", err)
		return domain.Sale{}, apperror.NewDBError("Falha ao inserir venda", err)
	}

	// 3. Itens de linha (line_number preserva a ordem de entrada)
	const itemSQL = `
        INSERT INTO sale_items (sale_id, line_number, product_id, quantity, unit_price)
        VALUES ($1, $2, $3, $4, $5)`

	for i, item := range sale.Items {
		_, err = tx.ExecContext(ctxTimeout, itemSQL,
			sale.ID, i+1, item.ProductID, item.Quantity, item.UnitPrice,
		)
		if err != nil {
			r.logger.Error("Falha ao inserir item de venda no DB.", err)
			return domain.Sale{}, apperror.NewDBError("Falha ao inserir item de venda", err)
		}
	}

	// 4. Commit: baixas de estoque + venda persistem juntas ou nada persiste
	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação de venda.", err)
		return domain.Sale{}, apperror.NewDBError("Falha ao commitar transação de venda", err)
	}

	r.logger.Info("Venda registrada com sucesso.", map[string]interface{}{
		"sale_id":        sale.ID,
		"total_value":    sale.TotalValue,
		"total_quantity": sale.TotalQuantity,
		"payment_method": sale.PaymentMethod,
	})
	return sale, nil
}

// FindByPaymentMethod lista as vendas registradas com a forma de pagamento
// informada. Consulta pura: retorna a projeção de listagem, sem efeitos
// colaterais de estoque.
func (r *SaleRepository) FindByPaymentMethod(ctx context.Context, method domain.PaymentMethod) ([]domain.SaleListing, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        SELECT id, total_value, description, payment_method, created_at
        FROM sales
        WHERE payment_method = $1
        ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, method)
	if err != nil {
		r.logger.Error("Falha ao listar vendas por forma de pagamento no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar vendas", err)
	}
	defer rows.Close()

	listings := make([]domain.SaleListing, 0)
	for rows.Next() {
		var l domain.SaleListing
		if err := rows.Scan(&l.ID, &l.TotalValue, &l.Description, &l.PaymentMethod, &l.CreatedAt); err != nil {
			return nil, apperror.NewDBError("Falha ao mapear venda", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar vendas", err)
	}

	return listings, nil
}
