package saleservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/laurarebecasantos/convenience-store/internal/domain"
	apperror "github.com/laurarebecasantos/convenience-store/internal/errors"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/logger"
	"github.com/laurarebecasantos/convenience-store/internal/service/saleservice"
)

// MockProductRepository é uma implementação mock da interface ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) InvalidateCache(ctx context.Context, id string) {
	m.Called(ctx, id)
}

// MockSaleRepository é uma implementação mock da interface SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) RegisterSale(ctx context.Context, sale domain.Sale, decrements []domain.StockDecrement) (domain.Sale, error) {
	args := m.Called(ctx, sale, decrements)
	return args.Get(0).(domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByPaymentMethod(ctx context.Context, method domain.PaymentMethod) ([]domain.SaleListing, error) {
	args := m.Called(ctx, method)
	return args.Get(0).([]domain.SaleListing), args.Error(1)
}

// newTestService monta o serviço com os mocks e um logger de debug.
func newTestService(productRepo *MockProductRepository, saleRepo *MockSaleRepository) *saleservice.Service {
	return saleservice.NewService(productRepo, saleRepo, logger.NewLogger("debug"))
}

func activeProduct(id, name string, price float64, stock, version int) domain.Product {
	return domain.Product{
		ID:            id,
		Name:          name,
		Price:         price,
		StockQuantity: stock,
		Status:        domain.StatusActive,
		Version:       version,
	}
}

func testClient() domain.Client {
	return domain.Client{ID: uuid.NewString(), Name: "Laura Santos", Cpf: "12345678901"}
}

// TestRegisterSale_Success testa o caminho feliz com dois produtos:
// total de 30.00 (2x 10.00 + 2x 5.00) e descrição a partir do mesmo snapshot.
func TestRegisterSale_Success(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	mockSaleRepo := new(MockSaleRepository)
	svc := newTestService(mockProductRepo, mockSaleRepo)

	client := testClient()
	prodA := activeProduct("prod-a", "Refrigerante", 10.00, 5, 1)
	prodB := activeProduct("prod-b", "Salgadinho", 5.00, 10, 3)

	mockProductRepo.On("FindByID", mock.Anything, "prod-a").Return(prodA, nil).Once()
	mockProductRepo.On("FindByID", mock.Anything, "prod-b").Return(prodB, nil).Once()
	mockProductRepo.On("InvalidateCache", mock.Anything, "prod-a").Return().Once()
	mockProductRepo.On("InvalidateCache", mock.Anything, "prod-b").Return().Once()

	mockSaleRepo.On("RegisterSale", mock.Anything, mock.MatchedBy(func(sale domain.Sale) bool {
		return sale.TotalValue == 30.00 &&
			sale.TotalQuantity == 4 &&
			sale.ClientID == client.ID &&
			sale.PaymentMethod == domain.PaymentPix &&
			len(sale.Items) == 2
	}), mock.MatchedBy(func(decrements []domain.StockDecrement) bool {
		return len(decrements) == 2 &&
			decrements[0] == domain.StockDecrement{ProductID: "prod-a", Quantity: 2, ExpectedVersion: 1} &&
			decrements[1] == domain.StockDecrement{ProductID: "prod-b", Quantity: 2, ExpectedVersion: 3}
	})).Return(domain.Sale{ID: "sale-1", TotalValue: 30.00, TotalQuantity: 4}, nil)

	ctx := context.Background()
	sale, err := svc.RegisterSale(ctx, client, "PIX", []string{"prod-a", "prod-b"}, []int{2, 2})

	assert.NoError(t, err)
	assert.Equal(t, 30.00, sale.TotalValue)
	assert.Equal(t, 4, sale.TotalQuantity)
	mockProductRepo.AssertExpectations(t)
	mockSaleRepo.AssertExpectations(t)
}

// TestRegisterSale_DescriptionUsesPriceSnapshot testa que a descrição é gerada
// a partir do mesmo snapshot de preço usado no cálculo do total.
func TestRegisterSale_DescriptionUsesPriceSnapshot(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	mockSaleRepo := new(MockSaleRepository)
	svc := newTestService(mockProductRepo, mockSaleRepo)

	client := testClient()
	prod := activeProduct("cod-1", "Cafe", 3.50, 10, 1)

	mockProductRepo.On("FindByID", mock.Anything, "cod-1").Return(prod, nil).Once()
	mockProductRepo.On("InvalidateCache", mock.Anything, "cod-1").Return().Once()

	mockSaleRepo.On("RegisterSale", mock.Anything, mock.MatchedBy(func(sale domain.Sale) bool {
		return sale.Description == "CPF: 12345678901 Products: codcod-1 Cafe 3x - R$3.50" &&
			sale.TotalValue == 10.50 &&
			len(sale.Items) == 1 &&
			sale.Items[0].UnitPrice == 3.50
	}), mock.Anything).Return(domain.Sale{ID: "sale-2"}, nil)

	_, err := svc.RegisterSale(context.Background(), client, "CASH", []string{"cod-1"}, []int{3})

	assert.NoError(t, err)
	mockSaleRepo.AssertExpectations(t)
}

// TestRegisterSale_Fail_EmptySale testa que uma venda sem itens é rejeitada
// como falha de validação, sem nenhuma leitura de produto.
func TestRegisterSale_Fail_EmptySale(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	mockSaleRepo := new(MockSaleRepository)
	svc := newTestService(mockProductRepo, mockSaleRepo)

	_, err := svc.RegisterSale(context.Background(), testClient(), "PIX", nil, nil)

	assert.Error(t, err)
	assert.IsType(t, &apperror.EmptySaleError{}, err)
	mockProductRepo.AssertNotCalled(t, "FindByID")
	mockSaleRepo.AssertNotCalled(t, "RegisterSale")
}

// TestRegisterSale_Fail_MismatchedLines testa listas paralelas de tamanhos diferentes.
func TestRegisterSale_Fail_MismatchedLines(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	mockSaleRepo := new(MockSaleRepository)
	svc := newTestService(mockProductRepo, mockSaleRepo)

	_, err := svc.RegisterSale(context.Background(), testClient(), "PIX", []string{"a", "b"}, []int{1})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
}

// TestRegisterSale_Fail_InvalidPaymentMethod testa que a forma de pagamento é
// validada antes de qualquer leitura de produto.
func TestRegisterSale_Fail_InvalidPaymentMethod(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	mockSaleRepo := new(MockSaleRepository)
	svc := newTestService(mockProductRepo, mockSaleRepo)

	_, err := svc.RegisterSale(context.Background(), testClient(), "CHEQUE", []string{"prod-a"}, []int{1})

	assert.Error(t, err)
	assert.IsType(t, &apperror.InvalidPaymentMethodError{}, err)
	mockProductRepo.AssertNotCalled(t, "FindByID")
}

// TestRegisterSale_Fail_EmptyPaymentMethod testa o valor vazio, sempre inválido.
func TestRegisterSale_Fail_EmptyPaymentMethod(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	mockSaleRepo := new(MockSaleRepository)
	svc := newTestService(mockProductRepo, mockSaleRepo)

	_, err := svc.RegisterSale(context.Background(), testClient(), "", []string{"prod-a"}, []int{1})

	assert.Error(t, err)
	assert.IsType(t, &apperror.InvalidPaymentMethodError{}, err)
	assert.Contains(t, err.Error(), "A forma de pagamento não pode ser vazia.")
}

// TestRegisterSale_Fail_NonPositiveQuantity testa quantidade zero em um item de linha.
func TestRegisterSale_Fail_NonPositiveQuantity(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	mockSaleRepo := new(MockSaleRepository)
	svc := newTestService(mockProductRepo, mockSaleRepo)

	_, err := svc.RegisterSale(context.Background(), testClient(), "CASH", []string{"prod-a"}, []int{0})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockSaleRepo.AssertNotCalled(t, "RegisterSale")
}

// TestRegisterSale_Fail_ProductNotFound testa item de linha com produto inexistente.
func TestRegisterSale_Fail_ProductNotFound(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	mockSaleRepo := new(MockSaleRepository)
	svc := newTestService(mockProductRepo, mockSaleRepo)

	mockProductRepo.On("FindByID", mock.Anything, "fantasma").
		Return(domain.Product{}, apperror.NewProductNotFoundError("fantasma"))

	_, err := svc.RegisterSale(context.Background(), testClient(), "CASH", []string{"fantasma"}, []int{1})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ProductNotFoundError{}, err)
	mockSaleRepo.AssertNotCalled(t, "RegisterSale")
}

// TestRegisterSale_Fail_InactiveProduct testa que produto INACTIVE não é vendável,
// mesmo com estoque disponível.
func TestRegisterSale_Fail_InactiveProduct(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	mockSaleRepo := new(MockSaleRepository)
	svc := newTestService(mockProductRepo, mockSaleRepo)

	inactive := activeProduct("prod-x", "Biscoito", 2.00, 50, 1)
	inactive.Status = domain.StatusInactive
	mockProductRepo.On("FindByID", mock.Anything, "prod-x").Return(inactive, nil)

	_, err := svc.RegisterSale(context.Background(), testClient(), "CASH", []string{"prod-x"}, []int{1})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ProductInactiveError{}, err)
	mockSaleRepo.AssertNotCalled(t, "RegisterSale")
}

// TestRegisterSale_Fail_InsufficientStock testa estoque insuficiente, incluindo
// a mensagem com o estoque disponível.
func TestRegisterSale_Fail_InsufficientStock(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	mockSaleRepo := new(MockSaleRepository)
	svc := newTestService(mockProductRepo, mockSaleRepo)

	prod := activeProduct("prod-y", "Chocolate", 4.00, 2, 1)
	mockProductRepo.On("FindByID", mock.Anything, "prod-y").Return(prod, nil)

	_, err := svc.RegisterSale(context.Background(), testClient(), "CASH", []string{"prod-y"}, []int{3})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ProductInsufficientStockError{}, err)
	assert.Contains(t, err.Error(), "Estoque insuficiente para o produto: Chocolate, 2 unidades em estoque.")
	mockSaleRepo.AssertNotCalled(t, "RegisterSale")
}

// TestRegisterSale_DuplicateLines_Aggregated testa que linhas repetidas do mesmo
// produto são validadas pela soma das quantidades e geram uma única baixa.
func TestRegisterSale_DuplicateLines_Aggregated(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	mockSaleRepo := new(MockSaleRepository)
	svc := newTestService(mockProductRepo, mockSaleRepo)

	prod := activeProduct("prod-a", "Agua", 2.00, 5, 7)
	// Um único FindByID mesmo com duas linhas do mesmo produto
	mockProductRepo.On("FindByID", mock.Anything, "prod-a").Return(prod, nil).Once()
	mockProductRepo.On("InvalidateCache", mock.Anything, "prod-a").Return().Once()

	mockSaleRepo.On("RegisterSale", mock.Anything, mock.MatchedBy(func(sale domain.Sale) bool {
		return sale.TotalQuantity == 5 && sale.TotalValue == 10.00 && len(sale.Items) == 2
	}), mock.MatchedBy(func(decrements []domain.StockDecrement) bool {
		return len(decrements) == 1 &&
			decrements[0] == domain.StockDecrement{ProductID: "prod-a", Quantity: 5, ExpectedVersion: 7}
	})).Return(domain.Sale{ID: "sale-3"}, nil)

	_, err := svc.RegisterSale(context.Background(), testClient(), "DEBIT_CARD", []string{"prod-a", "prod-a"}, []int{3, 2})

	assert.NoError(t, err)
	mockProductRepo.AssertExpectations(t)
	mockSaleRepo.AssertExpectations(t)
}

// TestRegisterSale_DuplicateLines_ExceedStock testa que a soma das linhas
// repetidas também respeita o estoque disponível.
func TestRegisterSale_DuplicateLines_ExceedStock(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	mockSaleRepo := new(MockSaleRepository)
	svc := newTestService(mockProductRepo, mockSaleRepo)

	prod := activeProduct("prod-a", "Agua", 2.00, 5, 1)
	mockProductRepo.On("FindByID", mock.Anything, "prod-a").Return(prod, nil).Once()

	_, err := svc.RegisterSale(context.Background(), testClient(), "CASH", []string{"prod-a", "prod-a"}, []int{3, 3})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ProductInsufficientStockError{}, err)
	mockSaleRepo.AssertNotCalled(t, "RegisterSale")
}

// TestRegisterSale_Fail_ConcurrencyConflict testa que o conflito de OCC do
// repositório é propagado ao chamador e nenhum cache é invalidado.
func TestRegisterSale_Fail_ConcurrencyConflict(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	mockSaleRepo := new(MockSaleRepository)
	svc := newTestService(mockProductRepo, mockSaleRepo)

	prod := activeProduct("prod-a", "Agua", 2.00, 5, 1)
	mockProductRepo.On("FindByID", mock.Anything, "prod-a").Return(prod, nil).Once()

	conflict := apperror.NewConflictError("O estoque foi modificado por outra operação. Repita o registro da venda.")
	mockSaleRepo.On("RegisterSale", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.Sale{}, conflict)

	_, err := svc.RegisterSale(context.Background(), testClient(), "CASH", []string{"prod-a"}, []int{1})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockProductRepo.AssertNotCalled(t, "InvalidateCache")
}

// TestListSalesByPaymentMethod_Success testa a consulta por forma de pagamento.
func TestListSalesByPaymentMethod_Success(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	mockSaleRepo := new(MockSaleRepository)
	svc := newTestService(mockProductRepo, mockSaleRepo)

	expected := []domain.SaleListing{
		{ID: "sale-1", TotalValue: 30.00, PaymentMethod: domain.PaymentPix, CreatedAt: time.Now()},
	}
	mockSaleRepo.On("FindByPaymentMethod", mock.Anything, domain.PaymentPix).Return(expected, nil)

	listings, err := svc.ListSalesByPaymentMethod(context.Background(), "pix")

	assert.NoError(t, err)
	assert.Equal(t, expected, listings)
	mockSaleRepo.AssertExpectations(t)
}

// TestListSalesByPaymentMethod_Fail_InvalidMethod testa forma de pagamento inválida na consulta.
func TestListSalesByPaymentMethod_Fail_InvalidMethod(t *testing.T) {
	mockProductRepo := new(MockProductRepository)
	mockSaleRepo := new(MockSaleRepository)
	svc := newTestService(mockProductRepo, mockSaleRepo)

	_, err := svc.ListSalesByPaymentMethod(context.Background(), "BITCOIN")

	assert.Error(t, err)
	assert.IsType(t, &apperror.InvalidPaymentMethodError{}, err)
	mockSaleRepo.AssertNotCalled(t, "FindByPaymentMethod")
}
