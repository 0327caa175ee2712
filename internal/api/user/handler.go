package user

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/laurarebecasantos/convenience-store/internal/domain"
	apperror "github.com/laurarebecasantos/convenience-store/internal/errors"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/logger"
)

// UserService define o contrato que o Handler espera da camada de Serviço.
type UserService interface {
	Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error)
	Login(ctx context.Context, email string, password string) (string, error)
	ListUsers(ctx context.Context) ([]domain.UserListing, error)
	UpdateUser(ctx context.Context, id string, update domain.UserUpdate) (domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	InactivateUser(ctx context.Context, id string, statusValue string) (domain.User, error)
	PromoteToAdmin(ctx context.Context, id string, roleValue string) (domain.User, error)
}

// LoginRequest é o payload de entrada do login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse é o payload de saída do login.
type LoginResponse struct {
	Token string `json:"token"`
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// RegisterHandler lida com a requisição POST /v1/users/register.
// @Summary Registra um novo usuário
// @Tags users
// @Accept json
// @Produce json
// @Param user body domain.UserRegistration true "Dados do usuário"
// @Success 201 {object} domain.User "Usuário criado"
// @Failure 400 {object} domain.ErrorResponse "Dados inválidos"
// @Failure 409 {object} domain.ErrorResponse "Username ou email já em uso"
// @Router /users/register [post]
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var registration domain.UserRegistration
	if err := json.NewDecoder(r.Body).Decode(&registration); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusCreated)
		return
	}

	newUser, err := h.Service.Register(r.Context(), registration)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, newUser, nil, http.StatusCreated)
}

// LoginHandler lida com a requisição POST /v1/users/login.
// @Summary Autentica um usuário e emite um JWT
// @Tags users
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Email e senha"
// @Success 200 {object} LoginResponse "Token emitido"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Router /users/login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	tokenString, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, LoginResponse{Token: tokenString}, nil, http.StatusOK)
}

// UsersHandler lida com a requisição GET /v1/users (listagem, somente ADMIN).
func (h *Handler) UsersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, users, nil, http.StatusOK)
}

// UserByIDHandler lida com as requisições de /v1/users/{id}, /v1/users/{id}/status
// e /v1/users/{id}/roles (extração manual do ID a partir do path).
func (h *Handler) UserByIDHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/users/")

	// PATCH /v1/users/{id}/status
	if strings.HasSuffix(path, "/status") {
		id := strings.TrimSuffix(path, "/status")
		h.updateUserStatus(w, r, id)
		return
	}

	// PATCH /v1/users/{id}/roles
	if strings.HasSuffix(path, "/roles") {
		id := strings.TrimSuffix(path, "/roles")
		h.updateUserRole(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.updateUser(w, r, path)
	case http.MethodDelete:
		h.deleteUser(w, r, path)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// updateUser lida com a requisição PUT /v1/users/{id}.
func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request, id string) {
	var update domain.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	updated, err := h.Service.UpdateUser(r.Context(), id, update)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, updated, nil, http.StatusOK)
}

// deleteUser lida com a requisição DELETE /v1/users/{id}.
func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.Service.DeleteUser(r.Context(), id); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// updateUserStatus lida com a requisição PATCH /v1/users/{id}/status.
// A transição é unidirecional: o corpo só é aceito com status INACTIVE.
func (h *Handler) updateUserStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPatch {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var statusRequest map[string]string
	if err := json.NewDecoder(r.Body).Decode(&statusRequest); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	updated, err := h.Service.InactivateUser(r.Context(), id, statusRequest["status"])
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, updated, nil, http.StatusOK)
}

// updateUserRole lida com a requisição PATCH /v1/users/{id}/roles.
// A promoção é unidirecional: o corpo só é aceito com papel ADMIN.
func (h *Handler) updateUserRole(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPatch {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var roleRequest map[string]string
	if err := json.NewDecoder(r.Body).Decode(&roleRequest); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	updated, err := h.Service.PromoteToAdmin(r.Context(), id, roleRequest["role"])
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, updated, nil, http.StatusOK)
}
