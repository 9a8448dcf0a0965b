package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tally.com/internal/application/usecase"
	"tally.com/internal/domain/entity"
	"tally.com/internal/infrastructure/logger"
	"tally.com/internal/infrastructure/repository"
)

// mockLedger implements port.Ledger
type mockLedger struct {
	submitTransferFunc func(ctx context.Context, from, to, amount int64) (entity.OperationResult, error)
	getAccountFunc     func(ctx context.Context, number int64) (entity.OperationResult, error)
	totalBalanceFunc   func(ctx context.Context) int64
}

func (m *mockLedger) SubmitTransfer(ctx context.Context, from, to, amount int64) (entity.OperationResult, error) {
	if m.submitTransferFunc != nil {
		return m.submitTransferFunc(ctx, from, to, amount)
	}
	return entity.OperationResult{AccountNumber: from}, nil
}

func (m *mockLedger) GetAccount(ctx context.Context, number int64) (entity.OperationResult, error) {
	if m.getAccountFunc != nil {
		return m.getAccountFunc(ctx, number)
	}
	return entity.OperationResult{AccountNumber: number}, nil
}

func (m *mockLedger) TotalBalance(ctx context.Context) int64 {
	if m.totalBalanceFunc != nil {
		return m.totalBalanceFunc(ctx)
	}
	return 0
}

func (m *mockLedger) Reset(context.Context) {}

func newTestHandler(ledger *mockLedger) *Handler {
	log := logger.NewLogger()
	return NewHandler(
		usecase.NewSubmitTransferUseCase(ledger),
		usecase.NewGetAccountUseCase(ledger),
		usecase.NewGetTotalBalanceUseCase(ledger),
		log,
	)
}

func TestHandler_HandleTransfer(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		target      string
		body        string
		ledgerRes   entity.OperationResult
		ledgerErr   error
		wantStatus  int
		wantRespSt  string
		wantErrText string
	}{
		{
			name:       "valid POST transfer",
			method:     http.MethodPost,
			target:     "/transfers",
			body:       `{"fromAccountNumber":3,"toAccountNumber":9,"amount":33}`,
			ledgerRes:  entity.OperationResult{AccountNumber: 3, Balance: 67, HasBalance: true},
			wantStatus: http.StatusOK,
			wantRespSt: "SUCCESS",
		},
		{
			name:       "valid GET transfer",
			method:     http.MethodGet,
			target:     "/transfers?fromAccountNumber=3&toAccountNumber=9&amount=33",
			ledgerRes:  entity.OperationResult{AccountNumber: 3, Balance: 67, HasBalance: true},
			wantStatus: http.StatusOK,
			wantRespSt: "SUCCESS",
		},
		{
			name:       "invalid JSON body",
			method:     http.MethodPost,
			target:     "/transfers",
			body:       `not json`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrong HTTP method",
			method:     http.MethodDelete,
			target:     "/transfers",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:        "invalid request",
			method:      http.MethodPost,
			target:      "/transfers",
			body:        `{"fromAccountNumber":4,"toAccountNumber":8,"amount":-20}`,
			ledgerRes:   entity.OperationResult{AccountNumber: 4},
			ledgerErr:   entity.ErrInvalidRequest,
			wantStatus:  http.StatusBadRequest,
			wantRespSt:  "ERROR",
			wantErrText: "Invalid Request.",
		},
		{
			name:        "insufficient funds",
			method:      http.MethodPost,
			target:      "/transfers",
			body:        `{"fromAccountNumber":3,"toAccountNumber":9,"amount":60}`,
			ledgerRes:   entity.OperationResult{AccountNumber: 3, Balance: 55, HasBalance: true},
			ledgerErr:   entity.ErrInsufficientFunds,
			wantStatus:  http.StatusConflict,
			wantRespSt:  "ERROR",
			wantErrText: "Balance Not Enough.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &mockLedger{
				submitTransferFunc: func(_ context.Context, _, _, _ int64) (entity.OperationResult, error) {
					return tt.ledgerRes, tt.ledgerErr
				},
			}
			handler := newTestHandler(ledger)

			req := httptest.NewRequest(tt.method, tt.target, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.HandleTransfer(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("HandleTransfer() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantRespSt == "" {
				return
			}

			var resp serviceResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if resp.ResponseStatus != tt.wantRespSt {
				t.Errorf("responseStatus = %q, want %q", resp.ResponseStatus, tt.wantRespSt)
			}
			if tt.wantErrText != "" {
				if resp.ErrorMessage == nil || *resp.ErrorMessage != tt.wantErrText {
					t.Errorf("errorMessage = %v, want %q", resp.ErrorMessage, tt.wantErrText)
				}
			}
			if tt.ledgerErr == nil {
				if resp.Balance == nil || *resp.Balance != tt.ledgerRes.Balance {
					t.Errorf("balance = %v, want %d", resp.Balance, tt.ledgerRes.Balance)
				}
			}
		})
	}
}

func TestHandler_HandleAccount(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		ledgerRes  entity.OperationResult
		ledgerErr  error
		wantStatus int
	}{
		{
			name:       "existing account",
			method:     http.MethodGet,
			path:       "/accounts/7",
			ledgerRes:  entity.OperationResult{AccountNumber: 7, Balance: 100, HasBalance: true},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown account",
			method:     http.MethodGet,
			path:       "/accounts/11",
			ledgerRes:  entity.OperationResult{AccountNumber: 11},
			ledgerErr:  entity.ErrAccountNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "non-numeric account",
			method:     http.MethodGet,
			path:       "/accounts/abc",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing account number",
			method:     http.MethodGet,
			path:       "/accounts/",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrong HTTP method",
			method:     http.MethodPost,
			path:       "/accounts/7",
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &mockLedger{
				getAccountFunc: func(_ context.Context, _ int64) (entity.OperationResult, error) {
					return tt.ledgerRes, tt.ledgerErr
				},
			}
			handler := newTestHandler(ledger)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			handler.HandleAccount(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("HandleAccount() status = %v, want %v", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandler_HandleTotal(t *testing.T) {
	ledger := &mockLedger{
		totalBalanceFunc: func(context.Context) int64 { return 1000 },
	}
	handler := newTestHandler(ledger)

	req := httptest.NewRequest(http.MethodGet, "/total", nil)
	w := httptest.NewRecorder()
	handler.HandleTotal(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("HandleTotal() status = %v, want %v", w.Code, http.StatusOK)
	}
	if got := w.Body.String(); got != "1000" {
		t.Errorf("HandleTotal() body = %q, want \"1000\"", got)
	}
}

func TestHandler_Integration_TransferAgainstRealLedger(t *testing.T) {
	log := logger.NewLogger()
	bank := repository.NewInMemoryBank(repository.Config{
		AccountCount:   10,
		InitialBalance: 100,
		BatchSize:      100,
		SettleInterval: 10 * time.Millisecond,
	}, noopPublisher{}, log)

	handler := NewHandler(
		usecase.NewSubmitTransferUseCase(bank),
		usecase.NewGetAccountUseCase(bank),
		usecase.NewGetTotalBalanceUseCase(bank),
		log,
	)
	mux := handler.SetupRoutes()

	body := `{"fromAccountNumber":3,"toAccountNumber":9,"amount":33}`
	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("POST /transfers status = %v, want %v", w.Code, http.StatusOK)
	}
	var resp serviceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Balance == nil || *resp.Balance != 67 {
		t.Errorf("balance = %v, want 67", resp.Balance)
	}

	accountReq := httptest.NewRequest(http.MethodGet, "/accounts/9", nil)
	accountW := httptest.NewRecorder()
	mux.ServeHTTP(accountW, accountReq)

	if accountW.Code != http.StatusOK {
		t.Fatalf("GET /accounts/9 status = %v, want %v", accountW.Code, http.StatusOK)
	}
	if err := json.Unmarshal(accountW.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Balance == nil || *resp.Balance != 133 {
		t.Errorf("account 9 balance = %v, want 133", resp.Balance)
	}

	totalReq := httptest.NewRequest(http.MethodGet, "/total", nil)
	totalW := httptest.NewRecorder()
	mux.ServeHTTP(totalW, totalReq)

	if got := totalW.Body.String(); got != "1000" {
		t.Errorf("GET /total body = %q, want \"1000\"", got)
	}
}

// noopPublisher discards settlement events in integration tests.
type noopPublisher struct{}

func (noopPublisher) PublishSettlement(context.Context, entity.SettlementCompleted) error {
	return nil
}
