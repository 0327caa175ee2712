package saleservice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/laurarebecasantos/convenience-store/internal/domain"
	apperror "github.com/laurarebecasantos/convenience-store/internal/errors"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/logger"
)

// ProductRepository define o contrato que o motor de vendas espera da
// persistência de produtos. FindByID participa do fluxo de validação;
// InvalidateCache é chamado após o commit para descartar snapshots em cache.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (domain.Product, error)
	InvalidateCache(ctx context.Context, id string)
}

// SaleRepository define o contrato que o motor de vendas espera da
// persistência de vendas. RegisterSale é a única operação que dá baixa em
// estoque, e o faz de forma atômica junto com a gravação da venda.
type SaleRepository interface {
	RegisterSale(ctx context.Context, sale domain.Sale, decrements []domain.StockDecrement) (domain.Sale, error)
	FindByPaymentMethod(ctx context.Context, method domain.PaymentMethod) ([]domain.SaleListing, error)
}

// Service é o motor de transação de vendas: valida os itens de linha,
// calcula valor total e descrição, e delega o commit atômico ao repositório.
type Service struct {
	productRepo ProductRepository
	saleRepo    SaleRepository
	logger      logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Vendas.
func NewService(productRepo ProductRepository, saleRepo SaleRepository, log logger.Logger) *Service {
	return &Service{
		productRepo: productRepo,
		saleRepo:    saleRepo,
		logger:      log,
	}
}

// RegisterSale registra uma venda para o cliente informado.
//
// O cliente chega já resolvido pelo chamador. productIDs e quantities são
// sequências paralelas: o índice i descreve um item de linha. Qualquer falha
// de validação aborta a operação inteira sem efeito colateral observável;
// falhas de concorrência (estoque alterado entre a validação e o commit)
// retornam ConflictError e o chamador deve repetir a chamada completa.
func (s *Service) RegisterSale(ctx context.Context, client domain.Client, paymentMethod string, productIDs []string, quantities []int) (domain.Sale, error) {
	// 1. Uma venda sem itens é inválida (falha de validação, nunca uma venda de valor zero)
	if len(productIDs) == 0 {
		return domain.Sale{}, apperror.NewEmptySaleError()
	}
	if len(productIDs) != len(quantities) {
		return domain.Sale{}, apperror.NewValidationError("As listas de produtos e quantidades devem ter o mesmo tamanho.")
	}

	// 2. Forma de pagamento fora do conjunto fechado é rejeitada antes de
	// qualquer leitura, independente da validade dos itens
	method, err := domain.ParsePaymentMethod(paymentMethod)
	if err != nil {
		s.logger.Warn("Forma de pagamento rejeitada no registro de venda.", map[string]interface{}{
			"payment_method": paymentMethod,
			"client_id":      client.ID,
		})
		return domain.Sale{}, err
	}

	// 3. Validação item a item sobre um único snapshot por produto.
	// O mesmo snapshot alimenta o cálculo do total e a descrição, para que o
	// valor gravado e o texto impresso nunca divirjam. Quantidades do mesmo
	// produto em linhas distintas são acumuladas, de modo que a soma também
	// respeite o estoque disponível.
	snapshots := make(map[string]domain.Product, len(productIDs))
	accumulated := make(map[string]int, len(productIDs))
	order := make([]string, 0, len(productIDs))

	lineProducts := make([]domain.Product, 0, len(productIDs))
	items := make([]domain.SaleItem, 0, len(productIDs))

	totalValue := 0.0
	totalQuantity := 0

	for i, productID := range productIDs {
		quantity := quantities[i]
		if quantity <= 0 {
			return domain.Sale{}, apperror.NewValidationError("A quantidade de cada item deve ser maior que zero.")
		}

		product, ok := snapshots[productID]
		if !ok {
			product, err = s.productRepo.FindByID(ctx, productID)
			if err != nil {
				return domain.Sale{}, err
			}
			snapshots[productID] = product
			order = append(order, productID)
		}

		if err := domain.ValidateLineItem(product, accumulated[productID]+quantity); err != nil {
			s.logger.Warn("Item de linha rejeitado no registro de venda.", map[string]interface{}{
				"product_id": productID,
				"quantity":   quantity,
				"client_id":  client.ID,
			})
			return domain.Sale{}, err
		}
		accumulated[productID] += quantity

		lineProducts = append(lineProducts, product)
		items = append(items, domain.SaleItem{
			ProductID: product.ID,
			Quantity:  quantity,
			UnitPrice: product.Price,
		})

		totalValue += product.Price * float64(quantity)
		totalQuantity += quantity
	}

	// 4. Descrição gerada a partir dos mesmos snapshots de preço
	description := domain.BuildSaleDescription(client, lineProducts, quantities)

	// 5. Montagem da venda (campos derivados sempre calculados pelo servidor)
	sale := domain.Sale{
		ID:            uuid.NewString(),
		ClientID:      client.ID,
		Items:         items,
		PaymentMethod: method,
		TotalValue:    totalValue,
		TotalQuantity: totalQuantity,
		Description:   description,
		CreatedAt:     time.Now().UTC(),
	}

	// 6. Baixas de estoque: uma por produto distinto, guardadas pela versão
	// do snapshot validado (OCC)
	decrements := make([]domain.StockDecrement, 0, len(order))
	for _, productID := range order {
		decrements = append(decrements, domain.StockDecrement{
			ProductID:       productID,
			Quantity:        accumulated[productID],
			ExpectedVersion: snapshots[productID].Version,
		})
	}

	// 7. Commit atômico: baixas + venda persistem juntas ou nada persiste
	registered, err := s.saleRepo.RegisterSale(ctx, sale, decrements)
	if err != nil {
		return domain.Sale{}, err
	}

	// 8. Snapshots em cache ficaram obsoletos após a baixa de estoque
	for _, productID := range order {
		s.productRepo.InvalidateCache(ctx, productID)
	}

	s.logger.Info("Venda registrada.", map[string]interface{}{
		"sale_id":        registered.ID,
		"client_id":      client.ID,
		"total_value":    registered.TotalValue,
		"total_quantity": registered.TotalQuantity,
		"payment_method": registered.PaymentMethod,
	})
	return registered, nil
}

// ListSalesByPaymentMethod lista as vendas registradas com a forma de
// pagamento informada. Consulta pura, sem efeitos colaterais de estoque.
func (s *Service) ListSalesByPaymentMethod(ctx context.Context, paymentMethod string) ([]domain.SaleListing, error) {
	method, err := domain.ParsePaymentMethod(paymentMethod)
	if err != nil {
		return nil, err
	}

	listings, err := s.saleRepo.FindByPaymentMethod(ctx, method)
	if err != nil {
		s.logger.Error("Falha ao listar vendas por forma de pagamento.", err)
		return nil, err
	}

	return listings, nil
}
