package clientrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/laurarebecasantos/convenience-store/internal/domain"
	apperror "github.com/laurarebecasantos/convenience-store/internal/errors"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/logger"
)

// Código de erro do PostgreSQL para violação de chave única.
const uniqueViolation = "23505"

// ClientRepository implementa o contrato de persistência de clientes.
type ClientRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewClientRepository cria e retorna uma nova instância do Repositório de Clientes.
func NewClientRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *ClientRepository {
	return &ClientRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    log,
	}
}

// Save insere um novo cliente no banco de dados.
// O CPF é único: violações são traduzidas para ConflictError.
func (r *ClientRepository) Save(ctx context.Context, client domain.Client) (domain.Client, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
        INSERT INTO clients (id, name, cpf, created_at)
        VALUES ($1, $2, $3, $4)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		client.ID, client.Name, client.Cpf, client.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return domain.Client{}, apperror.NewConflictError(fmt.Sprintf("Já existe cliente cadastrado com o CPF %s.", client.Cpf))
		}
		r.logger.Error("Falha ao inserir cliente no DB.", err)
		return domain.Client{}, apperror.NewDBError("Falha ao inserir cliente", err)
	}

	return client, nil
}

// FindByCpf busca um cliente pelo CPF. Usado pelo handler de vendas para
// resolver o cliente antes de invocar o motor de vendas.
func (r *ClientRepository) FindByCpf(ctx context.Context, cpf string) (domain.Client, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT id, name, cpf, created_at FROM clients WHERE cpf = $1`

	var client domain.Client
	err := r.DB.QueryRowContext(ctxTimeout, query, cpf).Scan(
		&client.ID, &client.Name, &client.Cpf, &client.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Client{}, apperror.NewNotFoundError(fmt.Sprintf("Cliente com CPF %s não encontrado.", cpf))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar cliente por CPF no DB.", err)
		return domain.Client{}, apperror.NewDBError("Falha ao buscar cliente", err)
	}

	return client, nil
}
