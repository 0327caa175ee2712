package domain

import "time"

// Client representa um cliente da loja, identificado pelo CPF (único).
// O motor de vendas recebe o Client já resolvido pelo chamador e apenas
// lê o CPF para compor a descrição da venda.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Cpf       string    `json:"cpf"`
	CreatedAt time.Time `json:"created_at"`
}
