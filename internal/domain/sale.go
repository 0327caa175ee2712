package domain

import (
	"fmt"
	"strings"
	"time"

	apperror "github.com/laurarebecasantos/convenience-store/internal/errors"
)

// PaymentMethod é o conjunto fechado de formas de pagamento aceitas pela loja.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentPix        PaymentMethod = "PIX"
)

// ParsePaymentMethod converte uma string em PaymentMethod.
// É uma função total: valores fora do conjunto (inclusive vazio) retornam
// InvalidPaymentMethodError em vez de panic.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToUpper(strings.TrimSpace(value))) {
	case PaymentCash:
		return PaymentCash, nil
	case PaymentCreditCard:
		return PaymentCreditCard, nil
	case PaymentDebitCard:
		return PaymentDebitCard, nil
	case PaymentPix:
		return PaymentPix, nil
	default:
		return "", apperror.NewInvalidPaymentMethodError(value)
	}
}

// SaleItem é um item de linha de uma venda: um produto e a quantidade vendida.
// UnitPrice é o preço unitário observado na validação (snapshot), não o preço
// corrente do catálogo.
type SaleItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Sale representa uma venda registrada. É imutável após criada: os campos
// TotalValue, TotalQuantity e Description são sempre calculados pelo motor
// de vendas, nunca fornecidos pelo cliente da API.
type Sale struct {
	ID            string        `json:"id"`
	ClientID      string        `json:"client_id"`
	Items         []SaleItem    `json:"items"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	TotalValue    float64       `json:"total_value"`
	TotalQuantity int           `json:"total_quantity"`
	Description   string        `json:"description"`
	CreatedAt     time.Time     `json:"created_at"`
}

// SaleListing é a projeção de venda retornada na consulta por forma de pagamento.
type SaleListing struct {
	ID            string        `json:"id"`
	TotalValue    float64       `json:"total_value"`
	Description   string        `json:"description"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CreatedAt     time.Time     `json:"created_at"`
}

// StockDecrement descreve a baixa de estoque de um produto dentro da transação
// de venda. ExpectedVersion carrega a versão do snapshot validado, usada no
// controle de concorrência otimista do repositório.
type StockDecrement struct {
	ProductID       string
	Quantity        int
	ExpectedVersion int
}

// ValidateLineItem é o validador de item de linha: confirma que o produto
// está ativo e possui estoque suficiente para a quantidade pedida.
// Opera somente sobre o snapshot recebido; nenhuma mutação é feita aqui.
func ValidateLineItem(product Product, quantity int) error {
	if quantity <= 0 {
		return apperror.NewValidationError(fmt.Sprintf("Quantidade inválida para o produto %s: %d.", product.ID, quantity))
	}
	if !product.IsActive() {
		return apperror.NewProductInactiveError(product.Name)
	}
	if product.StockQuantity < quantity {
		return apperror.NewProductInsufficientStockError(product.Name, product.StockQuantity)
	}
	return nil
}

// BuildSaleDescription gera a descrição textual da venda: o CPF do cliente
// seguido de uma linha por item com código, nome, quantidade e preço unitário
// formatado com duas casas decimais. Usa o mesmo snapshot de preço do cálculo
// do valor total.
func BuildSaleDescription(client Client, products []Product, quantities []int) string {
	var b strings.Builder
	b.WriteString("CPF: ")
	b.WriteString(client.Cpf)
	b.WriteString(" Products: ")

	for i, p := range products {
		b.WriteString(fmt.Sprintf("cod%s %s %dx - R$%.2f ", p.ID, p.Name, quantities[i], p.Price))
	}
	return strings.TrimRight(b.String(), " ")
}
