package errors

import (
	"fmt"
	"net/http"
)

// AppError é a interface central para todos os erros customizados do serviço.
// Ela permite que o código externo (Handler) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION", "NOT_FOUND", "INTERNAL")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// --- Tipos de Erro Genéricos (Erros de Domínio) ---

// ValidationError representa falhas de validação de dados de entrada.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um conflito na regra de negócio (e.g., OCC, recurso duplicado).
// Conflitos de concorrência na baixa de estoque são reportados com este tipo:
// o chamador pode repetir a chamada completa de registro da venda.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito (usado em OCC).
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// UnauthorizedError representa falha de autenticação ou credenciais inválidas.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um novo erro de autenticação.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// --- Tipos de Erro do Motor de Vendas ---
// Cada falha do registro de venda tem um tipo próprio, para que o chamador
// possa distinguir a causa sem inspecionar mensagens.

// ProductNotFoundError indica que um item de linha referencia um produto inexistente.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Produto não encontrado: %s", e.ProductID)
}
func (e *ProductNotFoundError) Category() string { return "PRODUCT_NOT_FOUND" }
func (e *ProductNotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *ProductNotFoundError) Unwrap() error    { return nil }

// NewProductNotFoundError cria o erro de produto inexistente em um item de linha.
func NewProductNotFoundError(productID string) AppError {
	return &ProductNotFoundError{ProductID: productID}
}

// ProductInactiveError indica tentativa de venda de um produto INACTIVE.
type ProductInactiveError struct {
	Name string
}

func (e *ProductInactiveError) Error() string {
	return fmt.Sprintf("Produto inativo: %s", e.Name)
}
func (e *ProductInactiveError) Category() string { return "PRODUCT_INACTIVE" }
func (e *ProductInactiveError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ProductInactiveError) Unwrap() error    { return nil }

// NewProductInactiveError cria o erro de produto inativo em um item de linha.
func NewProductInactiveError(name string) AppError {
	return &ProductInactiveError{Name: name}
}

// ProductInsufficientStockError indica estoque insuficiente para a quantidade pedida.
type ProductInsufficientStockError struct {
	Name      string
	Available int
}

func (e *ProductInsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente para o produto: %s, %d unidades em estoque.", e.Name, e.Available)
}
func (e *ProductInsufficientStockError) Category() string { return "PRODUCT_INSUFFICIENT_STOCK" }
func (e *ProductInsufficientStockError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ProductInsufficientStockError) Unwrap() error    { return nil }

// NewProductInsufficientStockError cria o erro de estoque insuficiente.
func NewProductInsufficientStockError(name string, available int) AppError {
	return &ProductInsufficientStockError{Name: name, Available: available}
}

// InvalidPaymentMethodError indica forma de pagamento fora do conjunto aceito
// (valor vazio é sempre inválido).
type InvalidPaymentMethodError struct {
	Value string
}

func (e *InvalidPaymentMethodError) Error() string {
	if e.Value == "" {
		return "A forma de pagamento não pode ser vazia."
	}
	return fmt.Sprintf("Forma de pagamento inválida: %s", e.Value)
}
func (e *InvalidPaymentMethodError) Category() string { return "INVALID_PAYMENT_METHOD" }
func (e *InvalidPaymentMethodError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *InvalidPaymentMethodError) Unwrap() error    { return nil }

// NewInvalidPaymentMethodError cria o erro de forma de pagamento inválida.
func NewInvalidPaymentMethodError(value string) AppError {
	return &InvalidPaymentMethodError{Value: value}
}

// EmptySaleError indica tentativa de registrar uma venda sem itens de linha.
type EmptySaleError struct{}

func (e *EmptySaleError) Error() string {
	return "Uma venda deve conter ao menos um item."
}
func (e *EmptySaleError) Category() string { return "EMPTY_SALE" }
func (e *EmptySaleError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *EmptySaleError) Unwrap() error    { return nil }

// NewEmptySaleError cria o erro de venda sem itens.
func NewEmptySaleError() AppError {
	return &EmptySaleError{}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro do driver SQL)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// --- Helper para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP e corpo de resposta.
func MapToHTTPStatus(err error) (int, string, string) {
	if appErr, ok := err.(AppError); ok {
		// O erro é tipado (ValidationError, ProductInactiveError, etc.)
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado (e.g., erro simples de pacote Go que não implementa AppError)
	// Tratar como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}
