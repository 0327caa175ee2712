package sale

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/laurarebecasantos/convenience-store/internal/domain"
	apperror "github.com/laurarebecasantos/convenience-store/internal/errors"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/logger"
	"github.com/laurarebecasantos/convenience-store/internal/pkg/middleware"
)

// SaleService define o contrato que o Handler espera do motor de vendas.
type SaleService interface {
	RegisterSale(ctx context.Context, client domain.Client, paymentMethod string, productIDs []string, quantities []int) (domain.Sale, error)
	ListSalesByPaymentMethod(ctx context.Context, paymentMethod string) ([]domain.SaleListing, error)
}

// ClientService define o contrato de resolução de cliente por CPF.
// A resolução acontece aqui no Handler: o motor de vendas recebe o Client
// já resolvido e não faz lookup próprio.
type ClientService interface {
	ResolveByCpf(ctx context.Context, cpf string) (domain.Client, error)
}

// RegisterSaleRequest é o payload de entrada do registro de venda.
// ProductIDs e Quantities são sequências paralelas (índice i = um item de linha).
type RegisterSaleRequest struct {
	Cpf           string   `json:"cpf"`
	PaymentMethod string   `json:"payment_method"`
	ProductIDs    []string `json:"product_ids"`
	Quantities    []int    `json:"quantities"`
}

// Handler agrupa os métodos de Handler de vendas.
type Handler struct {
	Service   SaleService
	ClientSvc ClientService
	Logger    logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando os Services e o Logger.
func NewHandler(svc SaleService, clientSvc ClientService, log logger.Logger) *Handler {
	return &Handler{
		Service:   svc,
		ClientSvc: clientSvc,
		Logger:    log,
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

// SalesHandler lida com as requisições de /v1/sales.
// POST registra uma venda; GET lista vendas por forma de pagamento.
func (h *Handler) SalesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.registerSale(w, r)
	case http.MethodGet:
		h.listSalesByPaymentMethod(w, r)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// registerSale lida com a requisição POST /v1/sales.
// @Summary Registra uma venda
// @Description Valida os itens, calcula total e descrição, dá baixa no estoque e grava a venda atomicamente.
// @Tags sales
// @Accept json
// @Produce json
// @Param sale body RegisterSaleRequest true "Dados da venda (CPF do cliente, forma de pagamento, itens)"
// @Success 201 {object} domain.Sale "Venda registrada"
// @Failure 400 {object} domain.ErrorResponse "Venda vazia, item inválido, produto inativo, estoque insuficiente ou forma de pagamento inválida"
// @Failure 404 {object} domain.ErrorResponse "Produto ou cliente não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Conflito de concorrência na baixa de estoque"
// @Router /sales [post]
func (h *Handler) registerSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if claims, ok := middleware.GetUserClaimsFromContext(ctx); ok {
		h.Logger.Debug("Registro de venda solicitado.", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})
	}

	var req RegisterSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusCreated)
		return
	}

	// Resolve o cliente antes de invocar o motor de vendas
	client, err := h.ClientSvc.ResolveByCpf(ctx, req.Cpf)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	newSale, err := h.Service.RegisterSale(ctx, client, req.PaymentMethod, req.ProductIDs, req.Quantities)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, newSale, nil, http.StatusCreated)
}

// listSalesByPaymentMethod lida com a requisição GET /v1/sales?paymentMethod=.
// @Summary Lista vendas por forma de pagamento
// @Tags sales
// @Produce json
// @Param paymentMethod query string true "Forma de pagamento (CASH, CREDIT_CARD, DEBIT_CARD, PIX)"
// @Success 200 {array} domain.SaleListing
// @Failure 400 {object} domain.ErrorResponse "Forma de pagamento inválida ou vazia"
// @Router /sales [get]
func (h *Handler) listSalesByPaymentMethod(w http.ResponseWriter, r *http.Request) {
	paymentMethod := r.URL.Query().Get("paymentMethod")

	sales, err := h.Service.ListSalesByPaymentMethod(r.Context(), paymentMethod)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, sales, nil, http.StatusOK)
}
