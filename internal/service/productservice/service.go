package productservice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/laurarebecasantos/convenience-store/internal/domain"
	apperror "github.com/laurarebecasantos/convenience-store/internal/errors"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/logger"
)

// ProductRepository define o contrato que este Serviço espera da camada de
// Persistência (DB e Cache).
type ProductRepository interface {
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	FindExpired(ctx context.Context, reference time.Time) ([]domain.Product, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
}

// Service implementa a lógica de negócio do catálogo de produtos.
// A mutação de estoque por venda NÃO passa por aqui: ela pertence
// exclusivamente ao motor de vendas (saleservice).
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// RegisterProduct cadastra um novo produto no catálogo.
func (s *Service) RegisterProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	// Validação de Regras de Negócio
	if product.Name == "" {
		return domain.Product{}, apperror.NewValidationError("O nome do produto é obrigatório.")
	}
	if product.Price <= 0 {
		return domain.Product{}, apperror.NewValidationError("O preço do produto deve ser positivo.")
	}
	if product.StockQuantity < 0 {
		return domain.Product{}, apperror.NewValidationError("A quantidade em estoque não pode ser negativa.")
	}

	exists, err := s.repo.ExistsByName(ctx, product.Name)
	if err != nil {
		return domain.Product{}, err
	}
	if exists {
		return domain.Product{}, apperror.NewConflictError(fmt.Sprintf("Já existe produto cadastrado com o nome: %s", product.Name))
	}

	product.ID = uuid.NewString()
	product.Status = domain.StatusActive
	product.Version = 1
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	created, err := s.repo.Save(ctx, product)
	if err != nil {
		s.logger.Error("Falha ao salvar produto no repositório.", err)
		return domain.Product{}, err
	}

	s.logger.Info("Produto cadastrado.", map[string]interface{}{"product_id": created.ID, "name": created.Name})
	return created, nil
}

// GetProductByID busca um produto pelo ID.
func (s *Service) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Product{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	return s.repo.FindByID(ctx, id)
}

// ListProducts retorna a projeção de listagem de todos os produtos.
func (s *Service) ListProducts(ctx context.Context) ([]domain.ProductListing, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Falha ao listar produtos.", err)
		return nil, err
	}

	listings := make([]domain.ProductListing, 0, len(products))
	for _, p := range products {
		listings = append(listings, domain.ProductListing{
			ID:             p.ID,
			Name:           p.Name,
			Price:          p.Price,
			StockQuantity:  p.StockQuantity,
			Status:         p.Status,
			ExpirationDate: p.ExpirationDate,
		})
	}

	return listings, nil
}

// UpdateProduct aplica as alterações informadas a um produto existente.
// Campos nil no payload permanecem inalterados.
func (s *Service) UpdateProduct(ctx context.Context, id string, update domain.ProductUpdate) (domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if update.Name != nil {
		if *update.Name == "" {
			return domain.Product{}, apperror.NewValidationError("O nome do produto não pode ser vazio.")
		}
		product.Name = *update.Name
	}
	if update.Price != nil {
		if *update.Price <= 0 {
			return domain.Product{}, apperror.NewValidationError("O preço do produto deve ser positivo.")
		}
		product.Price = *update.Price
	}
	if update.StockQuantity != nil {
		if *update.StockQuantity < 0 {
			return domain.Product{}, apperror.NewValidationError("A quantidade em estoque não pode ser negativa.")
		}
		product.StockQuantity = *update.StockQuantity
	}
	if update.ExpirationDate != nil {
		product.ExpirationDate = *update.ExpirationDate
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		s.logger.Error("Falha ao atualizar produto no repositório.", err)
		return domain.Product{}, err
	}

	s.logger.Info("Produto atualizado.", map[string]interface{}{"product_id": updated.ID, "version": updated.Version})
	return updated, nil
}

// InactivateProduct aplica a transição de status do produto.
// A transição é unidirecional: o único status aceito é INACTIVE.
func (s *Service) InactivateProduct(ctx context.Context, id string, statusValue string) (domain.Product, error) {
	status, err := domain.ParseStatus(statusValue)
	if err != nil {
		return domain.Product{}, apperror.NewValidationError(fmt.Sprintf("Status inválido: %s", statusValue))
	}
	if status != domain.StatusInactive {
		return domain.Product{}, apperror.NewValidationError("O status só pode ser alterado para INACTIVE.")
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if product.Status == domain.StatusInactive {
		// Transição idempotente: já inativo, nada a fazer
		return product, nil
	}

	product.Status = domain.StatusInactive
	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		s.logger.Error("Falha ao inativar produto no repositório.", err)
		return domain.Product{}, err
	}

	s.logger.Info("Produto inativado.", map[string]interface{}{"product_id": updated.ID})
	return updated, nil
}

// ListExpiredProducts lista os produtos com data de validade vencida.
func (s *Service) ListExpiredProducts(ctx context.Context) ([]domain.Product, error) {
	expired, err := s.repo.FindExpired(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("Falha ao listar produtos vencidos.", err)
		return nil, err
	}

	return expired, nil
}
