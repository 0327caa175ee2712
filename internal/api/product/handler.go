package product

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

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	RegisterProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	GetProductByID(ctx context.Context, id string) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.ProductListing, error)
	UpdateProduct(ctx context.Context, id string, update domain.ProductUpdate) (domain.Product, error)
	InactivateProduct(ctx context.Context, id string, statusValue string) (domain.Product, error)
	ListExpiredProducts(ctx context.Context) ([]domain.Product, error)
}

// Handler agrupa todos os métodos de Handler do produto.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
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

// ProductsHandler lida com as requisições de /v1/products.
// POST cadastra um produto; GET lista o catálogo.
func (h *Handler) ProductsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.registerProduct(w, r)
	case http.MethodGet:
		h.listProducts(w, r)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// registerProduct lida com a requisição POST /v1/products.
func (h *Handler) registerProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusCreated)
		return
	}

	created, err := h.Service.RegisterProduct(r.Context(), product)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, created, nil, http.StatusCreated)
}

// listProducts lida com a requisição GET /v1/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.ListProducts(r.Context())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, products, nil, http.StatusOK)
}

// ExpiredProductsHandler lida com a requisição GET /v1/products/duedate.
// Retorna 204 quando não há produtos vencidos.
func (h *Handler) ExpiredProductsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	expired, err := h.Service.ListExpiredProducts(r.Context())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	if len(expired) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.handleServiceResponse(w, r, expired, nil, http.StatusOK)
}

// ProductByIDHandler lida com as requisições de /v1/products/{id} e
// /v1/products/{id}/status (extração manual do ID a partir do path).
func (h *Handler) ProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/products/")

	// PATCH /v1/products/{id}/status
	if strings.HasSuffix(path, "/status") {
		id := strings.TrimSuffix(path, "/status")
		h.updateProductStatus(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getProductByID(w, r, path)
	case http.MethodPut:
		h.updateProduct(w, r, path)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// getProductByID lida com a requisição GET /v1/products/{id}.
func (h *Handler) getProductByID(w http.ResponseWriter, r *http.Request, id string) {
	product, err := h.Service.GetProductByID(r.Context(), id)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, product, nil, http.StatusOK)
}

// updateProduct lida com a requisição PUT /v1/products/{id}.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request, id string) {
	var update domain.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	updated, err := h.Service.UpdateProduct(r.Context(), id, update)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, updated, nil, http.StatusOK)
}

// updateProductStatus lida com a requisição PATCH /v1/products/{id}/status.
// A transição é unidirecional: o corpo só é aceito com status INACTIVE.
func (h *Handler) updateProductStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPatch {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var statusRequest map[string]string
	if err := json.NewDecoder(r.Body).Decode(&statusRequest); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	updated, err := h.Service.InactivateProduct(r.Context(), id, statusRequest["status"])
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, updated, nil, http.StatusOK)
}
