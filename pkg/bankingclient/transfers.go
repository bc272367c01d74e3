package bankingclient

import (
	"context"
	"net/http"
)

const (
	opCreateTransfer = "create_transfer"
	opListTransfers  = "list_transfers"
)

// CreateTransfer asks the backend to create a transfer. On success the transfer exists
// server-side in PENDING and waits for OTP verification. Every failure is returned,
// including a 2xx answer without a transfer id, because there is no safe default for
// whether money moved.
//
// The request is not validated or deduplicated client-side: two calls with the same
// request create two transfers unless the backend decides otherwise.
func (c *Client) CreateTransfer(ctx context.Context, req TransferRequest) (*TransferReceipt, error) {
	resp, err := c.do(ctx, opCreateTransfer, http.MethodPost, "/money-transfer", req)
	if err != nil {
		c.logger.Printf("level=warn component=banking_client op=%s msg=\"transfer was not created\" err=%v", opCreateTransfer, err)
		return nil, err
	}

	receipt, shape, reason := ExtractTransferReceipt(resp.body)
	switch shape {
	case ShapeOK:
		return &receipt, nil
	case ShapeUnsuccessful:
		env, _ := DecodeEnvelope(resp.body)
		return nil, &APIError{Op: opCreateTransfer, StatusCode: resp.status, Message: env.Text()}
	default:
		c.logger.Printf("level=error component=banking_client op=%s status=%d msg=\"create response carried no transfer id\" shape=%s reason=%q", opCreateTransfer, resp.status, shape, reason)
		return nil, malformed(opCreateTransfer, reason)
	}
}

// ListTransfers returns the authenticated user's transfers in server order. The user is
// derived from the token. Transport, authentication and status failures are returned;
// a response whose success flag is not true, or whose data.transfers is unusable, is
// logged and yields an empty slice.
func (c *Client) ListTransfers(ctx context.Context) ([]Transfer, error) {
	resp, err := c.do(ctx, opListTransfers, http.MethodGet, "/mobile-transfers", nil)
	if err != nil {
		return nil, err
	}

	payload := ExtractTransfers(resp.body)
	if !payload.OK() {
		c.logger.Printf("level=error component=banking_client op=%s msg=\"failed to fetch transfers\" shape=%s reason=%q", opListTransfers, payload.Shape, payload.Reason)
		return payload.Items, nil
	}
	if payload.Dropped > 0 {
		c.logger.Printf("level=warn component=banking_client op=%s msg=\"skipped undecodable transfers\" dropped=%d", opListTransfers, payload.Dropped)
	}
	return payload.Items, nil
}

// FindTransfer returns the transfer with the given id from a listing.
func FindTransfer(transfers []Transfer, id ID) (Transfer, bool) {
	for _, t := range transfers {
		if t.ID == id {
			return t, true
		}
	}
	return Transfer{}, false
}
