package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status representa o ciclo de vida de um produto ou usuário.
// A transição é unidirecional: uma vez INACTIVE, o registro não volta a ACTIVE.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// ParseStatus converte uma string em Status.
// É uma função total: entradas desconhecidas retornam erro, nunca panic.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(value))) {
	case StatusActive:
		return StatusActive, nil
	case StatusInactive:
		return StatusInactive, nil
	default:
		return "", fmt.Errorf("status inválido: %q", value)
	}
}

// Product representa um produto do catálogo da loja de conveniência.
// O campo Version é usado para Controle de Concorrência Otimista (OCC)
// na baixa de estoque realizada pelo motor de vendas.
type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	StockQuantity  int       `json:"stock_quantity"`
	Status         Status    `json:"status"`
	ExpirationDate time.Time `json:"expiration_date"`
	Version        int       `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsActive indica se o produto está elegível para venda.
func (p Product) IsActive() bool {
	return p.Status == StatusActive
}

// IsExpired indica se o produto está vencido em relação à data informada.
func (p Product) IsExpired(now time.Time) bool {
	return !p.ExpirationDate.IsZero() && !p.ExpirationDate.After(now)
}

// ProductUpdate é o payload aceito para atualização de um produto existente.
// Campos nil não são alterados.
type ProductUpdate struct {
	Name           *string    `json:"name"`
	Price          *float64   `json:"price"`
	StockQuantity  *int       `json:"stock_quantity"`
	ExpirationDate *time.Time `json:"expiration_date"`
}

// ProductListing é a projeção de produto retornada em listagens.
type ProductListing struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	StockQuantity  int       `json:"stock_quantity"`
	Status         Status    `json:"status"`
	ExpirationDate time.Time `json:"expiration_date"`
}
