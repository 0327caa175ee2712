package clientservice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/laurarebecasantos/convenience-store/internal/domain"
	apperror "github.com/laurarebecasantos/convenience-store/internal/errors"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/logger"
)

// ClientRepository define o contrato que este Serviço espera da camada de Persistência.
type ClientRepository interface {
	Save(ctx context.Context, client domain.Client) (domain.Client, error)
	FindByCpf(ctx context.Context, cpf string) (domain.Client, error)
}

// Service implementa a lógica de negócio da entidade Client.
// O motor de vendas não consulta clientes: o handler de vendas usa este
// serviço para resolver o cliente pelo CPF antes de invocar o motor.
type Service struct {
	repo   ClientRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Clientes.
func NewService(repo ClientRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// isValidCpf valida o formato do CPF: exatamente 11 dígitos.
// A validação dos dígitos verificadores fica a cargo do cadastro upstream.
func isValidCpf(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	for _, r := range cpf {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// RegisterClient cadastra um novo cliente.
func (s *Service) RegisterClient(ctx context.Context, client domain.Client) (domain.Client, error) {
	if client.Name == "" {
		return domain.Client{}, apperror.NewValidationError("O nome do cliente é obrigatório.")
	}
	if !isValidCpf(client.Cpf) {
		return domain.Client{}, apperror.NewValidationError("O CPF deve conter exatamente 11 dígitos.")
	}

	client.ID = uuid.NewString()
	client.CreatedAt = time.Now().UTC()

	created, err := s.repo.Save(ctx, client)
	if err != nil {
		s.logger.Error("Falha ao salvar cliente no repositório.", err)
		return domain.Client{}, err
	}

	s.logger.Info("Cliente cadastrado.", map[string]interface{}{"client_id": created.ID})
	return created, nil
}

// ResolveByCpf busca um cliente pelo CPF.
func (s *Service) ResolveByCpf(ctx context.Context, cpf string) (domain.Client, error) {
	if !isValidCpf(cpf) {
		return domain.Client{}, apperror.NewValidationError("O CPF deve conter exatamente 11 dígitos.")
	}

	return s.repo.FindByCpf(ctx, cpf)
}
