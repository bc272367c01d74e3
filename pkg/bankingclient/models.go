package bankingclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ID is a backend identifier. The backend sends identifiers as JSON numbers on some
// endpoints and as strings on others; the client always carries them as text.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("identifier must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Millis is a timestamp in epoch milliseconds. Numeric strings and RFC 3339 strings
// are accepted as well.
type Millis int64

func (m *Millis) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*m = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*m = 0
			return nil
		}
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			*m = Millis(v)
			return nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("unsupported timestamp %q", s)
		}
		*m = Millis(t.UnixMilli())
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if v, err := n.Int64(); err == nil {
		*m = Millis(v)
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return err
	}
	*m = Millis(int64(f))
	return nil
}

// Time converts the timestamp to UTC. The zero value maps to the zero time.
func (m Millis) Time() time.Time {
	if m == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(m)).UTC()
}

// AccountRecord is an account exactly as the backend describes it.
type AccountRecord struct {
	ID            ID              `json:"id"`
	OwnerID       ID              `json:"ownerID"`
	AccountNumber string          `json:"accountNumber"`
	Subtype       string          `json:"subtype"`
	CurrencyType  string          `json:"currencyType"`
	Balance       json.RawMessage `json:"balance"`
}

// AccountSummary is the display projection of an account. Balance is display text and
// must never be used for arithmetic.
type AccountSummary struct {
	ID      string `json:"id"`
	Subtype string `json:"subtype"`
	Number  string `json:"number"`
	Balance string `json:"balance"`
}

// AccountRef is the account embedded in a transfer. Some backend versions send only the
// identifier instead of the object.
type AccountRef struct {
	ID            ID     `json:"id"`
	OwnerID       ID     `json:"ownerID,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
}

func (a *AccountRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		type plain AccountRef
		var p plain
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		*a = AccountRef(p)
		return nil
	}
	*a = AccountRef{}
	return a.ID.UnmarshalJSON(b)
}

// Currency is the `{code}` object used by transfers.
type Currency struct {
	Code string `json:"code"`
}

func (c *Currency) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &c.Code)
	}
	type plain Currency
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*c = Currency(p)
	return nil
}

// TransferStatus is server-owned. Values other than PENDING and COMPLETED are valid
// extensions and are carried unchanged.
type TransferStatus string

const (
	StatusPending   TransferStatus = "PENDING"
	StatusCompleted TransferStatus = "COMPLETED"
)

func (s TransferStatus) IsPending() bool   { return strings.EqualFold(string(s), string(StatusPending)) }
func (s TransferStatus) IsCompleted() bool { return strings.EqualFold(string(s), string(StatusCompleted)) }

// Known reports whether the status is one the workflow has a meaning for.
func (s TransferStatus) Known() bool { return s.IsPending() || s.IsCompleted() }

// Transfer is a money transfer as currently known to the server.
type Transfer struct {
	ID                 ID              `json:"id"`
	Amount             decimal.Decimal `json:"amount"`
	FromAccount        AccountRef      `json:"fromAccountId"`
	ToAccount          AccountRef      `json:"toAccountId"`
	Receiver           string          `json:"receiver"`
	Address            string          `json:"adress"`
	PaymentCode        string          `json:"paymentCode"`
	PaymentReference   string          `json:"paymentReference"`
	PaymentDescription string          `json:"paymentDescription"`
	FromCurrency       Currency        `json:"fromCurrency"`
	ToCurrency         Currency        `json:"toCurrency"`
	CreatedAt          Millis          `json:"createdAt"`
	OTP                string          `json:"otp,omitempty"`
	Type               string          `json:"type"`
	Status             TransferStatus  `json:"status"`
	CompletedAt        *Millis         `json:"completedAt,omitempty"`
	Note               string          `json:"note,omitempty"`
}

// TransferRequest is the create-transfer payload. The client sends it as-is; the backend
// is the validation authority.
type TransferRequest struct {
	Amount             decimal.Decimal `json:"amount"`
	FromAccountID      string          `json:"fromAccountId"`
	ToAccountID        string          `json:"toAccountId"`
	Receiver           string          `json:"receiver"`
	Address            string          `json:"adress"`
	PaymentCode        string          `json:"paymentCode"`
	PaymentReference   string          `json:"paymentReference"`
	PaymentDescription string          `json:"paymentDescription"`
	FromCurrency       string          `json:"fromCurrency"`
	ToCurrency         string          `json:"toCurrency"`
	Note               string          `json:"note,omitempty"`
}

// MarshalJSON sends the amount as a JSON number, which is what the backend expects.
func (r TransferRequest) MarshalJSON() ([]byte, error) {
	type wire struct {
		Amount             json.Number `json:"amount"`
		FromAccountID      string      `json:"fromAccountId"`
		ToAccountID        string      `json:"toAccountId"`
		Receiver           string      `json:"receiver"`
		Address            string      `json:"adress"`
		PaymentCode        string      `json:"paymentCode"`
		PaymentReference   string      `json:"paymentReference"`
		PaymentDescription string      `json:"paymentDescription"`
		FromCurrency       string      `json:"fromCurrency"`
		ToCurrency         string      `json:"toCurrency"`
		Note               string      `json:"note,omitempty"`
	}
	return json.Marshal(wire{
		Amount:             json.Number(r.Amount.String()),
		FromAccountID:      r.FromAccountID,
		ToAccountID:        r.ToAccountID,
		Receiver:           r.Receiver,
		Address:            r.Address,
		PaymentCode:        r.PaymentCode,
		PaymentReference:   r.PaymentReference,
		PaymentDescription: r.PaymentDescription,
		FromCurrency:       r.FromCurrency,
		ToCurrency:         r.ToCurrency,
		Note:               r.Note,
	})
}

// TransferReceipt is the backend's answer to a create: the transfer exists and is PENDING.
type TransferReceipt struct {
	TransferID ID `json:"transferId"`
}

// OTPVerification authorizes a pending transfer.
type OTPVerification struct {
	TransferID string `json:"transferId"`
	OTPCode    string `json:"otpCode"`
}

// TransactionOTP is the generic verification body used for ledger transactions.
type TransactionOTP struct {
	TransactionID int64  `json:"transakcijaId"`
	Code          string `json:"otpKod"`
}

// Transaction is a history row. The backend does not publish a stable schema for it, so
// known fields are picked leniently and the full element is kept in Raw.
type Transaction struct {
	ID            ID              `json:"id"`
	Amount        string          `json:"amount"`
	Currency      string          `json:"currency,omitempty"`
	Status        string          `json:"status,omitempty"`
	Type          string          `json:"type,omitempty"`
	Description   string          `json:"description,omitempty"`
	FromAccountID ID              `json:"fromAccountId,omitempty"`
	ToAccountID   ID              `json:"toAccountId,omitempty"`
	Timestamp     Millis          `json:"timestamp,omitempty"`
	Raw           json.RawMessage `json:"-"`
}

func (t *Transaction) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("transaction element is null")
	}

	*t = Transaction{Raw: append(json.RawMessage(nil), b...)}
	_ = t.ID.UnmarshalJSON(fields["id"])
	t.Amount = firstText(fields, "amount", "finalAmount")
	t.Currency = firstText(fields, "currency", "currencyType", "currencyCode")
	if t.Currency == "" {
		var c Currency
		if raw, ok := fields["fromCurrency"]; ok && c.UnmarshalJSON(raw) == nil {
			t.Currency = c.Code
		}
	}
	t.Status = firstText(fields, "status")
	t.Type = firstText(fields, "type", "transactionType")
	t.Description = firstText(fields, "description", "paymentDescription", "paymentPurpose")

	var ref AccountRef
	if raw, ok := fields["fromAccountId"]; ok && ref.UnmarshalJSON(raw) == nil {
		t.FromAccountID = ref.ID
	}
	if raw, ok := fields["toAccountId"]; ok && ref.UnmarshalJSON(raw) == nil {
		t.ToAccountID = ref.ID
	}
	for _, key := range []string{"timestamp", "createdAt", "date"} {
		if raw, ok := fields[key]; ok && t.Timestamp.UnmarshalJSON(raw) == nil && t.Timestamp != 0 {
			break
		}
	}
	return nil
}

// Receiver is a saved payment recipient.
type Receiver struct {
	ID             ID     `json:"id"`
	OwnerAccountID ID     `json:"ownerAccountId,omitempty"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	AccountNumber  string `json:"accountNumber"`
	Address        string `json:"address,omitempty"`
}

// DisplayName is the name shown in transfer forms.
func (r Receiver) DisplayName() string {
	name := strings.TrimSpace(r.FirstName + " " + r.LastName)
	if name == "" {
		return r.AccountNumber
	}
	return name
}

// PaymentCode is a payment purpose code offered in transfer forms.
type PaymentCode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// firstText renders the first present string or number field as text.
func firstText(fields map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if text, ok := scalarText(raw); ok && text != "" {
			return text
		}
	}
	return ""
}

func scalarText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false
	}
	return n.String(), true
}
