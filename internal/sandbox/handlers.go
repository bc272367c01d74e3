/**
 * @description
 * HTTP handlers for the sandbox backend. Every response uses the backend's
 * `{success, data, error}` envelope, including the per-endpoint nesting quirks the
 * mobile client has to cope with (`data.data` for user transactions, a `success`
 * flag on the transfer list, `data.transferId` on create).
 */

package sandbox

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/brankadelic/Banka-1-Mobile/pkg/bankingclient"
	"github.com/go-chi/chi/v5"
)

// Handler serves the banking endpoints from a Store.
type Handler struct {
	store *Store
}

// NewHandler creates a new Handler for the given store.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

type accountView struct {
	ID            int64       `json:"id"`
	OwnerID       int64       `json:"ownerID"`
	AccountNumber string      `json:"accountNumber"`
	Subtype       string      `json:"subtype"`
	CurrencyType  string      `json:"currencyType"`
	Balance       json.Number `json:"balance"`
}

type accountRefView struct {
	ID            int64  `json:"id"`
	OwnerID       int64  `json:"ownerID"`
	AccountNumber string `json:"accountNumber"`
}

type currencyView struct {
	Code string `json:"code"`
}

type transferView struct {
	ID                 int64          `json:"id"`
	Amount             json.Number    `json:"amount"`
	FromAccount        accountRefView `json:"fromAccountId"`
	ToAccount          accountRefView `json:"toAccountId"`
	Receiver           string         `json:"receiver"`
	Address            string         `json:"adress"`
	PaymentCode        string         `json:"paymentCode"`
	PaymentReference   string         `json:"paymentReference"`
	PaymentDescription string         `json:"paymentDescription"`
	FromCurrency       currencyView   `json:"fromCurrency"`
	ToCurrency         currencyView   `json:"toCurrency"`
	CreatedAt          int64          `json:"createdAt"`
	Type               string         `json:"type"`
	Status             string         `json:"status"`
	CompletedAt        *int64         `json:"completedAt,omitempty"`
	Note               string         `json:"note,omitempty"`
}

type transactionView struct {
	ID            int64       `json:"id"`
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency"`
	Status        string      `json:"status"`
	Type          string      `json:"type"`
	Description   string      `json:"description"`
	FromAccountID int64       `json:"fromAccountId"`
	ToAccountID   int64       `json:"toAccountId"`
	Timestamp     int64       `json:"timestamp"`
}

type receiverView struct {
	ID            int64  `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	AccountNumber string `json:"accountNumber"`
	Address       string `json:"address,omitempty"`
}

// otpRequest accepts both verification bodies: the transfer form and the generic
// transaction form.
type otpRequest struct {
	TransferID    bankingclient.ID `json:"transferId"`
	OTPCode       string           `json:"otpCode"`
	TransactionID bankingclient.ID `json:"transakcijaId"`
	OTPKod        string           `json:"otpKod"`
}

// handleAccounts serves GET /accounts/user/{userId}.
func (h *Handler) handleAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUser(w, r)
	if !ok {
		return
	}

	accounts := h.store.Accounts(userID)
	out := make([]accountView, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, accountView{
			ID:            acc.ID,
			OwnerID:       acc.OwnerID,
			AccountNumber: acc.AccountNumber,
			Subtype:       acc.Subtype,
			CurrencyType:  acc.Currency,
			Balance:       json.Number(acc.Balance.String()),
		})
	}
	respondWithData(w, http.StatusOK, map[string]interface{}{"accounts": out})
}

// handleAccountTransactions serves GET /accounts/{accountId}/transactions.
// An account without history answers 404, which clients read as an empty list.
func (h *Handler) handleAccountTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountId"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusNotFound, ErrAccountNotFound.Error())
		return
	}

	txs, err := h.store.AccountTransactions(userID, accountID)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	respondWithData(w, http.StatusOK, map[string]interface{}{"transactions": transactionViews(txs)})
}

// handleUserTransactions serves GET /transactions/{userId}. The list sits one level
// deeper than everywhere else, under data.data.
func (h *Handler) handleUserTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUser(w, r)
	if !ok {
		return
	}
	respondWithData(w, http.StatusOK, map[string]interface{}{"data": transactionViews(h.store.UserTransactions(userID))})
}

// handleTransfers serves GET /mobile-transfers for the authenticated user.
func (h *Handler) handleTransfers(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	transfers := h.store.Transfers(userID)
	out := make([]transferView, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, newTransferView(t))
	}
	respondWithData(w, http.StatusOK, map[string]interface{}{"transfers": out})
}

// handleCreateTransfer serves POST /money-transfer.
func (h *Handler) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req bankingclient.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	t, err := h.store.CreateTransfer(userID, req)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	respondWithData(w, http.StatusCreated, map[string]interface{}{
		"transferId": t.ID,
		"message":    "Transfer created, waiting for OTP verification",
	})
}

// handleVerifyOTP serves POST /otp/verification.
func (h *Handler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	id, code := req.TransferID, req.OTPCode
	if id == "" {
		id, code = req.TransactionID, req.OTPKod
	}

	if err := h.store.VerifyOTP(userID, id, code); err != nil {
		respondWithStoreError(w, err)
		return
	}
	respondWithData(w, http.StatusOK, map[string]interface{}{"message": "Transfer completed"})
}

// handleReceivers serves GET /receiver/{userId}.
func (h *Handler) handleReceivers(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUser(w, r)
	if !ok {
		return
	}

	receivers := h.store.Receivers(userID)
	out := make([]receiverView, 0, len(receivers))
	for _, rc := range receivers {
		out = append(out, receiverView{ID: rc.ID, FirstName: rc.FirstName, LastName: rc.LastName, AccountNumber: rc.AccountNumber, Address: rc.Address})
	}
	respondWithData(w, http.StatusOK, map[string]interface{}{"receivers": out})
}

// handlePaymentCodes serves GET /metadata/payment-codes.
func (h *Handler) handlePaymentCodes(w http.ResponseWriter, r *http.Request) {
	respondWithData(w, http.StatusOK, map[string]interface{}{"codes": h.store.PaymentCodes()})
}

// pathUser checks that the {userId} path segment is the authenticated user.
func (h *Handler) pathUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}
	requested, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "userId")), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id")
		return 0, false
	}
	if requested != userID {
		respondWithError(w, http.StatusForbidden, ErrForbidden.Error())
		return 0, false
	}
	return userID, true
}

func newTransferView(t transfer) transferView {
	view := transferView{
		ID:                 t.ID,
		Amount:             json.Number(t.Amount.String()),
		FromAccount:        accountRefView{ID: t.From.ID, OwnerID: t.From.OwnerID, AccountNumber: t.From.AccountNumber},
		ToAccount:          accountRefView{ID: t.To.ID, OwnerID: t.To.OwnerID, AccountNumber: t.To.AccountNumber},
		Receiver:           t.Receiver,
		Address:            t.Address,
		PaymentCode:        t.PaymentCode,
		PaymentReference:   t.PaymentReference,
		PaymentDescription: t.PaymentDescription,
		FromCurrency:       currencyView{Code: t.Currency},
		ToCurrency:         currencyView{Code: t.Currency},
		CreatedAt:          t.CreatedAt.UnixMilli(),
		Type:               t.Type,
		Status:             string(t.Status),
		Note:               t.Note,
	}
	if t.CompletedAt != nil {
		ms := t.CompletedAt.UnixMilli()
		view.CompletedAt = &ms
	}
	return view
}

func transactionViews(txs []transaction) []transactionView {
	out := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionView{
			ID:            tx.ID,
			Amount:        json.Number(tx.Amount.String()),
			Currency:      tx.Currency,
			Status:        tx.Status,
			Type:          tx.Type,
			Description:   tx.Description,
			FromAccountID: tx.From.ID,
			ToAccountID:   tx.To.ID,
			Timestamp:     tx.Timestamp.UnixMilli(),
		})
	}
	return out
}

// respondWithStoreError maps store errors onto HTTP statuses.
func respondWithStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrNoTransactions), errors.Is(err, ErrTransferNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrTransferCompleted):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrOTPExpired):
		respondWithError(w, http.StatusGone, err.Error())
	case errors.Is(err, ErrInvalidOTP):
		respondWithError(w, http.StatusBadRequest, "Invalid OTP code")
	case errors.Is(err, ErrForbidden):
		respondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrSourceAccount), errors.Is(err, ErrDestinationAccount),
		errors.Is(err, ErrSameAccount), errors.Is(err, ErrCurrencyMismatch), errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrOTPRequired):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func respondWithData(w http.ResponseWriter, code int, data interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"success": true, "data": data})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]interface{}{"success": false, "error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
