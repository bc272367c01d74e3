package sandbox

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brankadelic/Banka-1-Mobile/pkg/bankingclient"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrForbidden          = errors.New("resource belongs to another user")
	ErrAccountNotFound    = errors.New("account not found")
	ErrNoTransactions     = errors.New("no transactions found")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrSourceAccount      = errors.New("source account not found")
	ErrDestinationAccount = errors.New("destination account not found")
	ErrSameAccount        = errors.New("source and destination account must differ")
	ErrCurrencyMismatch   = errors.New("currency conversion is not supported")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrTransferNotFound   = errors.New("transfer not found")
	ErrTransferCompleted  = errors.New("transfer already completed")
	ErrOTPExpired         = errors.New("OTP expired")
	ErrInvalidOTP         = errors.New("invalid OTP code")
	ErrOTPRequired        = errors.New("transfer id and OTP code are required")
)

// StatusExpired is set on transfers whose OTP ran out before verification.
const StatusExpired bankingclient.TransferStatus = "EXPIRED"

// Options configures the in-memory backend.
type Options struct {
	JWTSecret  string
	// FixedOTP makes every transfer use the same code. Empty means a random 6-digit code.
	FixedOTP   string
	OTPTTL     time.Duration
	BcryptCost int
	Now        func() time.Time
	Logger     *log.Logger
	AccessLog  bool
}

type account struct {
	ID            int64
	OwnerID       int64
	AccountNumber string
	Subtype       string
	Currency      string
	Balance       decimal.Decimal
}

type receiver struct {
	ID            int64
	OwnerID       int64
	FirstName     string
	LastName      string
	AccountNumber string
	Address       string
}

type transfer struct {
	ID                 int64
	OwnerID            int64
	Amount             decimal.Decimal
	From               *account
	To                 *account
	Receiver           string
	Address            string
	PaymentCode        string
	PaymentReference   string
	PaymentDescription string
	Currency           string
	Type               string
	Status             bankingclient.TransferStatus
	Note               string
	CreatedAt          time.Time
	CompletedAt        *time.Time
}

type transaction struct {
	ID          int64
	From        *account
	To          *account
	Amount      decimal.Decimal
	Currency    string
	Status      string
	Type        string
	Description string
	Timestamp   time.Time
}

type otpChallenge struct {
	hash      []byte
	expiresAt time.Time
}

// Store is the sandbox's state. All methods are safe for concurrent use.
type Store struct {
	mu sync.Mutex

	now        func() time.Time
	otpTTL     time.Duration
	fixedOTP   string
	bcryptCost int
	logger     *log.Logger

	nextTransferID    int64
	nextTransactionID int64

	accounts     map[int64]*account
	receivers    []*receiver
	paymentCodes []bankingclient.PaymentCode
	transfers    []*transfer
	transactions []*transaction
	challenges   map[int64]otpChallenge
}

// NewStore creates an empty store.
func NewStore(opts Options) *Store {
	s := &Store{
		now:               opts.Now,
		otpTTL:            opts.OTPTTL,
		fixedOTP:          strings.TrimSpace(opts.FixedOTP),
		bcryptCost:        opts.BcryptCost,
		logger:            opts.Logger,
		nextTransferID:    100,
		nextTransactionID: 1,
		accounts:          make(map[int64]*account),
		challenges:        make(map[int64]otpChallenge),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.otpTTL <= 0 {
		s.otpTTL = 5 * time.Minute
	}
	if s.bcryptCost == 0 {
		s.bcryptCost = bcrypt.DefaultCost
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// AddAccount registers an account. The balance is parsed as a decimal.
func (s *Store) AddAccount(id, ownerID int64, number, subtype, currency, balance string) error {
	amount, err := decimal.NewFromString(balance)
	if err != nil {
		return fmt.Errorf("invalid balance for account %d: %w", id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[id] = &account{ID: id, OwnerID: ownerID, AccountNumber: number, Subtype: subtype, Currency: currency, Balance: amount}
	return nil
}

// AddReceiver registers a saved recipient for ownerID.
func (s *Store) AddReceiver(id, ownerID int64, firstName, lastName, accountNumber, address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receivers = append(s.receivers, &receiver{ID: id, OwnerID: ownerID, FirstName: firstName, LastName: lastName, AccountNumber: accountNumber, Address: address})
}

// AddPaymentCode registers a payment code.
func (s *Store) AddPaymentCode(code, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentCodes = append(s.paymentCodes, bankingclient.PaymentCode{Code: code, Description: description})
}

func (s *Store) accountsOf(userID int64) []account {
	var out []account
	for _, acc := range s.accounts {
		if acc.OwnerID == userID {
			out = append(out, *acc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Accounts returns the user's accounts ordered by id.
func (s *Store) Accounts(userID int64) []account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountsOf(userID)
}

// AccountTransactions returns the transactions touching one of the user's accounts.
func (s *Store) AccountTransactions(userID, accountID int64) ([]transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok || acc.OwnerID != userID {
		return nil, ErrAccountNotFound
	}
	var out []transaction
	for _, tx := range s.transactions {
		if tx.From.ID == accountID || tx.To.ID == accountID {
			out = append(out, *tx)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoTransactions
	}
	return out, nil
}

// UserTransactions returns every transaction touching any of the user's accounts.
func (s *Store) UserTransactions(userID int64) []transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []transaction{}
	for _, tx := range s.transactions {
		if tx.From.OwnerID == userID || tx.To.OwnerID == userID {
			out = append(out, *tx)
		}
	}
	return out
}

// Receivers returns the user's saved recipients.
func (s *Store) Receivers(userID int64) []receiver {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []receiver{}
	for _, r := range s.receivers {
		if r.OwnerID == userID {
			out = append(out, *r)
		}
	}
	return out
}

// PaymentCodes returns every payment code.
func (s *Store) PaymentCodes() []bankingclient.PaymentCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bankingclient.PaymentCode{}, s.paymentCodes...)
}

// Transfers returns the user's transfers in creation order, expiring stale ones first.
func (s *Store) Transfers(userID int64) []transfer {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := []transfer{}
	for _, t := range s.transfers {
		if t.OwnerID != userID {
			continue
		}
		s.expireIfStale(t, now)
		out = append(out, *t)
	}
	return out
}

// CreateTransfer validates the request, stores a PENDING transfer and issues its OTP.
func (s *Store) CreateTransfer(userID int64, req bankingclient.TransferRequest) (*transfer, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.findAccount(req.FromAccountID)
	if from == nil || from.OwnerID != userID {
		return nil, ErrSourceAccount
	}
	to := s.findAccount(req.ToAccountID)
	if to == nil {
		return nil, ErrDestinationAccount
	}
	if to.ID == from.ID {
		return nil, ErrSameAccount
	}
	if from.Currency != to.Currency {
		return nil, ErrCurrencyMismatch
	}
	if c := strings.TrimSpace(req.FromCurrency); c != "" && !strings.EqualFold(c, from.Currency) {
		return nil, ErrCurrencyMismatch
	}
	if from.Balance.LessThan(req.Amount) {
		return nil, ErrInsufficientFunds
	}

	code, err := s.issueCode()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash otp: %w", err)
	}

	transferType := "EXTERNAL"
	if to.OwnerID == userID {
		transferType = "INTERNAL"
	}

	now := s.now()
	t := &transfer{
		ID:                 s.nextTransferID,
		OwnerID:            userID,
		Amount:             req.Amount,
		From:               from,
		To:                 to,
		Receiver:           req.Receiver,
		Address:            req.Address,
		PaymentCode:        req.PaymentCode,
		PaymentReference:   req.PaymentReference,
		PaymentDescription: req.PaymentDescription,
		Currency:           from.Currency,
		Type:               transferType,
		Status:             bankingclient.StatusPending,
		Note:               req.Note,
		CreatedAt:          now,
	}
	s.nextTransferID++
	s.transfers = append(s.transfers, t)
	s.challenges[t.ID] = otpChallenge{hash: hash, expiresAt: now.Add(s.otpTTL)}

	s.logger.Printf("level=info component=sandbox op=create_transfer transfer_id=%d user_id=%d amount=%s otp=%s msg=\"otp issued\"", t.ID, userID, t.Amount, code)
	out := *t
	return &out, nil
}

// VerifyOTP completes a pending transfer when the code matches. A wrong code leaves
// the transfer PENDING so the user can try again.
func (s *Store) VerifyOTP(userID int64, transferID bankingclient.ID, code string) error {
	if strings.TrimSpace(string(transferID)) == "" || strings.TrimSpace(code) == "" {
		return ErrOTPRequired
	}
	id, err := strconv.ParseInt(strings.TrimSpace(string(transferID)), 10, 64)
	if err != nil {
		return ErrTransferNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.findTransfer(id)
	if t == nil || t.OwnerID != userID {
		return ErrTransferNotFound
	}

	now := s.now()
	s.expireIfStale(t, now)
	switch {
	case t.Status.IsCompleted():
		return ErrTransferCompleted
	case t.Status == StatusExpired:
		return ErrOTPExpired
	}

	challenge, ok := s.challenges[t.ID]
	if !ok {
		return ErrOTPExpired
	}
	if err := bcrypt.CompareHashAndPassword(challenge.hash, []byte(strings.TrimSpace(code))); err != nil {
		return ErrInvalidOTP
	}
	if t.From.Balance.LessThan(t.Amount) {
		return ErrInsufficientFunds
	}

	t.From.Balance = t.From.Balance.Sub(t.Amount)
	t.To.Balance = t.To.Balance.Add(t.Amount)
	t.Status = bankingclient.StatusCompleted
	t.CompletedAt = &now
	delete(s.challenges, t.ID)

	s.transactions = append(s.transactions, &transaction{
		ID:          s.nextTransactionID,
		From:        t.From,
		To:          t.To,
		Amount:      t.Amount,
		Currency:    t.Currency,
		Status:      string(bankingclient.StatusCompleted),
		Type:        t.Type,
		Description: t.PaymentDescription,
		Timestamp:   now,
	})
	s.nextTransactionID++

	s.logger.Printf("level=info component=sandbox op=verify_otp transfer_id=%d user_id=%d msg=\"transfer completed\"", t.ID, userID)
	return nil
}

func (s *Store) expireIfStale(t *transfer, now time.Time) {
	if !t.Status.IsPending() {
		return
	}
	challenge, ok := s.challenges[t.ID]
	if ok && now.After(challenge.expiresAt) {
		t.Status = StatusExpired
		delete(s.challenges, t.ID)
	}
}

// findAccount resolves a reference by id first, then by account number.
func (s *Store) findAccount(ref string) *account {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if acc, ok := s.accounts[id]; ok {
			return acc
		}
	}
	for _, acc := range s.accounts {
		if acc.AccountNumber == ref {
			return acc
		}
	}
	return nil
}

func (s *Store) findTransfer(id int64) *transfer {
	for _, t := range s.transfers {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *Store) issueCode() (string, error) {
	if s.fixedOTP != "" {
		return s.fixedOTP, nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
