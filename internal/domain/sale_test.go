package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/laurarebecasantos/convenience-store/internal/domain"
	apperror "github.com/laurarebecasantos/convenience-store/internal/errors"
)

// TestParsePaymentMethod_ValidValues testa o conjunto fechado de formas de pagamento.
func TestParsePaymentMethod_ValidValues(t *testing.T) {
	cases := map[string]domain.PaymentMethod{
		"CASH":        domain.PaymentCash,
		"CREDIT_CARD": domain.PaymentCreditCard,
		"DEBIT_CARD":  domain.PaymentDebitCard,
		"PIX":         domain.PaymentPix,
		"pix":         domain.PaymentPix,
		"  cash  ":    domain.PaymentCash,
	}

	for input, expected := range cases {
		method, err := domain.ParsePaymentMethod(input)
		assert.NoError(t, err, "input: %q", input)
		assert.Equal(t, expected, method)
	}
}

// TestParsePaymentMethod_InvalidValues testa que valores fora do conjunto
// (inclusive vazio) retornam erro tipado, nunca panic.
func TestParsePaymentMethod_InvalidValues(t *testing.T) {
	for _, input := range []string{"", "CHEQUE", "BITCOIN", "CASH_BACK"} {
		_, err := domain.ParsePaymentMethod(input)
		assert.Error(t, err, "input: %q", input)
		assert.IsType(t, &apperror.InvalidPaymentMethodError{}, err)
	}
}

// TestParsePaymentMethod_EmptyMessage testa a mensagem específica do valor vazio.
func TestParsePaymentMethod_EmptyMessage(t *testing.T) {
	_, err := domain.ParsePaymentMethod("")
	assert.EqualError(t, err, "A forma de pagamento não pode ser vazia.")
}

// TestValidateLineItem testa o validador de item de linha sobre o snapshot do produto.
func TestValidateLineItem(t *testing.T) {
	base := domain.Product{
		ID:            "prod-1",
		Name:          "Refrigerante",
		Price:         7.50,
		StockQuantity: 3,
		Status:        domain.StatusActive,
	}

	// Caminho feliz: quantidade igual ao estoque é aceita
	assert.NoError(t, domain.ValidateLineItem(base, 3))
	assert.NoError(t, domain.ValidateLineItem(base, 1))

	// Quantidade não positiva
	err := domain.ValidateLineItem(base, 0)
	assert.IsType(t, &apperror.ValidationError{}, err)

	// Produto inativo é rejeitado mesmo com estoque
	inactive := base
	inactive.Status = domain.StatusInactive
	err = domain.ValidateLineItem(inactive, 1)
	assert.IsType(t, &apperror.ProductInactiveError{}, err)

	// Estoque insuficiente
	err = domain.ValidateLineItem(base, 4)
	assert.IsType(t, &apperror.ProductInsufficientStockError{}, err)
	assert.Contains(t, err.Error(), "Refrigerante, 3 unidades em estoque.")
}

// TestBuildSaleDescription testa o formato da descrição da venda.
func TestBuildSaleDescription(t *testing.T) {
	client := domain.Client{Cpf: "12345678901"}
	products := []domain.Product{
		{ID: "a1", Name: "Cafe", Price: 3.5},
		{ID: "b2", Name: "Pao", Price: 0.75},
	}

	got := domain.BuildSaleDescription(client, products, []int{2, 6})

	assert.Equal(t, "CPF: 12345678901 Products: coda1 Cafe 2x - R$3.50 codb2 Pao 6x - R$0.75", got)
}

// TestParseStatus testa a conversão total de status.
func TestParseStatus(t *testing.T) {
	status, err := domain.ParseStatus("active")
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusActive, status)

	status, err = domain.ParseStatus("INACTIVE")
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, status)

	_, err = domain.ParseStatus("ARCHIVED")
	assert.Error(t, err)
}

// TestParseRole testa a conversão total de papéis.
func TestParseRole(t *testing.T) {
	role, err := domain.ParseRole("admin")
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)

	_, err = domain.ParseRole("SUPERUSER")
	assert.Error(t, err)
}

// TestProductIsExpired testa o corte de validade em relação a uma data de referência.
func TestProductIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	expired := domain.Product{ExpirationDate: now.Add(-24 * time.Hour)}
	assert.True(t, expired.IsExpired(now))

	fresh := domain.Product{ExpirationDate: now.Add(24 * time.Hour)}
	assert.False(t, fresh.IsExpired(now))

	// Produto sem data de validade nunca vence
	noDate := domain.Product{}
	assert.False(t, noDate.IsExpired(now))
}
