package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role representa o papel de um usuário do sistema.
// A promoção é unidirecional: um usuário só pode ser elevado a ADMIN.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole converte uma string em Role.
// Função total: papéis desconhecidos retornam erro.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("papel inválido: %q", value)
	}
}

// User representa um usuário do back-office da loja.
// PasswordHash nunca é serializado nas respostas da API (tag json:"-").
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRegistration é o payload de entrada para o cadastro de usuário.
type UserRegistration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdate é o payload aceito para atualização de um usuário existente.
type UserUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// UserListing é a projeção de usuário retornada em listagens.
type UserListing struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Status   Status `json:"status"`
}
