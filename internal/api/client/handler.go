package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/laurarebecasantos/convenience-store/internal/domain"
	apperror "github.com/laurarebecasantos/convenience-store/internal/errors"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/logger"
)

// ClientService define o contrato que o Handler espera da camada de Serviço.
type ClientService interface {
	RegisterClient(ctx context.Context, client domain.Client) (domain.Client, error)
	ResolveByCpf(ctx context.Context, cpf string) (domain.Client, error)
}

// Handler agrupa os métodos de Handler de clientes.
type Handler struct {
	Service ClientService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ClientService, log logger.Logger) *Handler {
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

// ClientsHandler lida com as requisições de /v1/clients.
// POST cadastra um cliente; GET busca por CPF via query param.
func (h *Handler) ClientsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.registerClient(w, r)
	case http.MethodGet:
		h.findClientByCpf(w, r)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// registerClient lida com a requisição POST /v1/clients.
// @Summary Cadastra um cliente
// @Tags clients
// @Accept json
// @Produce json
// @Param client body domain.Client true "Nome e CPF do cliente"
// @Success 201 {object} domain.Client "Cliente cadastrado"
// @Failure 400 {object} domain.ErrorResponse "Nome ausente ou CPF inválido"
// @Failure 409 {object} domain.ErrorResponse "CPF já cadastrado"
// @Router /clients [post]
func (h *Handler) registerClient(w http.ResponseWriter, r *http.Request) {
	var newClient domain.Client
	if err := json.NewDecoder(r.Body).Decode(&newClient); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusCreated)
		return
	}

	created, err := h.Service.RegisterClient(r.Context(), newClient)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, created, nil, http.StatusCreated)
}

// findClientByCpf lida com a requisição GET /v1/clients?cpf=.
func (h *Handler) findClientByCpf(w http.ResponseWriter, r *http.Request) {
	cpf := r.URL.Query().Get("cpf")

	found, err := h.Service.ResolveByCpf(r.Context(), cpf)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, found, nil, http.StatusOK)
}
