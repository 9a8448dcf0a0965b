package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"tally.com/internal/application/usecase"
	"tally.com/internal/domain/entity"
	"tally.com/internal/infrastructure/logger"
)

const (
	errAccountNotFound  = "Account Not Found."
	errBalanceNotEnough = "Balance Not Enough."
	errInvalidRequest   = "Invalid Request."
)

// Handler holds HTTP handlers and their dependencies
type Handler struct {
	submitTransferUseCase  *usecase.SubmitTransferUseCase
	getAccountUseCase      *usecase.GetAccountUseCase
	getTotalBalanceUseCase *usecase.GetTotalBalanceUseCase
	logger                 logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	submitTransferUseCase *usecase.SubmitTransferUseCase,
	getAccountUseCase *usecase.GetAccountUseCase,
	getTotalBalanceUseCase *usecase.GetTotalBalanceUseCase,
	logger logger.Logger,
) *Handler {
	return &Handler{
		submitTransferUseCase:  submitTransferUseCase,
		getAccountUseCase:      getAccountUseCase,
		getTotalBalanceUseCase: getTotalBalanceUseCase,
		logger:                 logger,
	}
}

// transferRequest is the inbound JSON shape for POST /transfers
type transferRequest struct {
	FromAccountNumber int64 `json:"fromAccountNumber"`
	ToAccountNumber   int64 `json:"toAccountNumber"`
	Amount            int64 `json:"amount"`
}

// serviceResponse is the uniform outbound JSON shape
type serviceResponse struct {
	ResponseStatus string  `json:"responseStatus"`
	ErrorMessage   *string `json:"errorMessage"`
	AccountNumber  *int64  `json:"accountNumber"`
	Balance        *int64  `json:"balance"`
}

// HandleTransfer handles POST /transfers (JSON body) and GET /transfers
// (query parameters, kept for curl convenience).
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := h.requestLogger(r)

	var req transferRequest
	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			requestLogger.LogError(ctx, "Failed to parse JSON body", err)
			http.Error(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}
	case http.MethodGet:
		req.FromAccountNumber = queryInt64(r, "fromAccountNumber")
		req.ToAccountNumber = queryInt64(r, "toAccountNumber")
		req.Amount = queryInt64(r, "amount")
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := h.submitTransferUseCase.Execute(ctx, req.FromAccountNumber, req.ToAccountNumber, req.Amount)
	h.writeResult(w, result, err)
}

// HandleAccount handles GET /accounts/{number} requests
func (h *Handler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := h.requestLogger(r)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/accounts/")
	if path == "" || path == r.URL.Path {
		http.Error(w, "Missing account number", http.StatusBadRequest)
		return
	}

	number, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		requestLogger.LogWarning(ctx, "Invalid account number", "path", path)
		http.Error(w, "Invalid account number", http.StatusBadRequest)
		return
	}

	result, err := h.getAccountUseCase.Execute(ctx, number)
	h.writeResult(w, result, err)
}

// HandleTotal handles GET /total requests
func (h *Handler) HandleTotal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	total := h.getTotalBalanceUseCase.Execute(r.Context())

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(strconv.FormatInt(total, 10)))
}

// HandleHealth handles GET /health requests
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// writeResult maps an operation result and its error kind to the uniform
// response shape and status code.
func (h *Handler) writeResult(w http.ResponseWriter, result entity.OperationResult, err error) {
	resp := serviceResponse{ResponseStatus: "SUCCESS"}
	status := http.StatusOK

	if result.AccountNumber > 0 {
		resp.AccountNumber = &result.AccountNumber
	}
	if result.HasBalance {
		resp.Balance = &result.Balance
	}

	if err != nil {
		resp.ResponseStatus = "ERROR"
		var msg string
		switch {
		case errors.Is(err, entity.ErrAccountNotFound):
			msg, status = errAccountNotFound, http.StatusNotFound
		case errors.Is(err, entity.ErrInsufficientFunds):
			msg, status = errBalanceNotEnough, http.StatusConflict
		case errors.Is(err, entity.ErrInvalidRequest):
			msg, status = errInvalidRequest, http.StatusBadRequest
		default:
			msg, status = err.Error(), http.StatusInternalServerError
		}
		resp.ErrorMessage = &msg
		resp.AccountNumber = nil
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// requestLogger returns the per-request logger installed by the middleware,
// falling back to the handler's own logger.
func (h *Handler) requestLogger(r *http.Request) logger.Logger {
	if l, ok := r.Context().Value("logger").(logger.Logger); ok {
		return l
	}
	return h.logger
}

func queryInt64(r *http.Request, name string) int64 {
	value, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return value
}

// SetupRoutes sets up all HTTP routes
func (h *Handler) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	transferHandler := RequestIDMiddleware(
		LoggingMiddleware(h.HandleTransfer, h.logger),
		h.logger,
	)
	accountHandler := RequestIDMiddleware(
		LoggingMiddleware(h.HandleAccount, h.logger),
		h.logger,
	)
	totalHandler := RequestIDMiddleware(
		LoggingMiddleware(h.HandleTotal, h.logger),
		h.logger,
	)

	mux.HandleFunc("/transfers", transferHandler)
	mux.HandleFunc("/accounts/", accountHandler)
	mux.HandleFunc("/total", totalHandler)
	mux.HandleFunc("/health", h.HandleHealth)

	return mux
}
