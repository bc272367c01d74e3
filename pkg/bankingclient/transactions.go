package bankingclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const (
	opUserTransactions    = "user_transactions"
	opAccountTransactions = "account_transactions"
)

// ListUserTransactions returns every transaction of the user. Unlike the other list
// queries nothing is defaulted here: transport failures, error statuses and a body
// without data.data are all returned to the caller.
func (c *Client) ListUserTransactions(ctx context.Context, userID int64) ([]Transaction, error) {
	resp, err := c.do(ctx, opUserTransactions, http.MethodGet, "/transactions/"+strconv.FormatInt(userID, 10), nil)
	if err != nil {
		return nil, err
	}

	payload := ExtractUserTransactions(resp.body)
	if !payload.OK() {
		return nil, malformed(opUserTransactions, payload.Reason)
	}
	if payload.Dropped > 0 {
		c.logger.Printf("level=warn component=banking_client op=%s user_id=%d msg=\"skipped undecodable transactions\" dropped=%d", opUserTransactions, userID, payload.Dropped)
	}
	return payload.Items, nil
}

// ListAccountTransactions returns the transactions of one account. A 404 means the
// account has no transactions and is not logged; every other failure is logged and
// also yields an empty slice.
func (c *Client) ListAccountTransactions(ctx context.Context, accountID string) []Transaction {
	resp, err := c.do(ctx, opAccountTransactions, http.MethodGet, "/accounts/"+url.PathEscape(accountID)+"/transactions", nil)
	if err != nil {
		if IsNotFound(err) {
			return []Transaction{}
		}
		c.logger.Printf("level=error component=banking_client op=%s account_id=%s msg=\"error fetching transactions\" err=%v", opAccountTransactions, accountID, err)
		return []Transaction{}
	}

	payload := ExtractAccountTransactions(resp.body)
	if !payload.OK() {
		c.logger.Printf("level=error component=banking_client op=%s account_id=%s msg=\"unexpected transactions payload\" shape=%s reason=%q", opAccountTransactions, accountID, payload.Shape, payload.Reason)
		return payload.Items
	}
	if payload.Dropped > 0 {
		c.logger.Printf("level=warn component=banking_client op=%s account_id=%s msg=\"skipped undecodable transactions\" dropped=%d", opAccountTransactions, accountID, payload.Dropped)
	}
	return payload.Items
}
