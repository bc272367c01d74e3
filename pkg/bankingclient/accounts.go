package bankingclient

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	opFetchAccounts   = "fetch_accounts"
	opAccountsForUser = "accounts_for_user"
)

// FetchAccounts returns the user's accounts formatted for display. It never fails: a
// missing or malformed account list is logged and yields an empty slice.
func (c *Client) FetchAccounts(ctx context.Context, userID int64) []AccountSummary {
	records := c.listAccounts(ctx, opFetchAccounts, userID)
	summaries := make([]AccountSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, record.Summary())
	}
	return summaries
}

// AccountsForUser returns the user's accounts as the backend describes them.
func (c *Client) AccountsForUser(ctx context.Context, userID int64) []AccountRecord {
	return c.listAccounts(ctx, opAccountsForUser, userID)
}

func (c *Client) listAccounts(ctx context.Context, op string, userID int64) []AccountRecord {
	resp, err := c.do(ctx, op, http.MethodGet, "/accounts/user/"+strconv.FormatInt(userID, 10), nil)
	if err != nil {
		c.logger.Printf("level=error component=banking_client op=%s user_id=%d msg=\"account request failed\" err=%v", op, userID, err)
		return []AccountRecord{}
	}

	payload := ExtractAccounts(resp.body)
	if !payload.OK() {
		c.logger.Printf("level=error component=banking_client op=%s user_id=%d msg=\"no valid accounts in response\" shape=%s reason=%q", op, userID, payload.Shape, payload.Reason)
		return payload.Items
	}
	if payload.Dropped > 0 {
		c.logger.Printf("level=warn component=banking_client op=%s user_id=%d msg=\"skipped undecodable accounts\" dropped=%d", op, userID, payload.Dropped)
	}
	return payload.Items
}

// Summary projects the record into its display form.
func (a AccountRecord) Summary() AccountSummary {
	return AccountSummary{
		ID:      a.ID.String(),
		Subtype: a.Subtype,
		Number:  a.AccountNumber,
		Balance: FormatBalance(a.Balance, a.CurrencyType),
	}
}

// maxBalanceExponent keeps formatting within float64 range. Rescaling a decimal with a
// larger exponent allocates a number of that many digits.
const maxBalanceExponent = 308

// FormatBalance renders a balance with two fractional digits, a space and the currency
// code, e.g. "1234.50 USD". The space is written even when the code is empty. A balance
// that is not numeric, or lies outside float64 range, is returned unchanged.
func FormatBalance(raw json.RawMessage, currency string) string {
	text, candidate := balanceText(raw)
	if !candidate {
		return text
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return text
	}
	if exp := amount.Exponent(); exp > maxBalanceExponent || exp < -maxBalanceExponent {
		return text
	}
	if f, _ := strconv.ParseFloat(amount.String(), 64); math.IsInf(f, 0) {
		return text
	}
	return amount.StringFixed(2) + " " + strings.TrimSpace(currency)
}

// balanceText returns the balance as text and whether it is worth parsing as a number.
func balanceText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	if text, ok := scalarText(raw); ok {
		return text, true
	}
	return string(raw), false
}
