package bankingclient

import (
	"context"
	"net/http"
	"strconv"
)

const (
	opListReceivers    = "list_receivers"
	opListPaymentCodes = "list_payment_codes"
)

// ListReceivers returns the user's saved recipients, or an empty slice.
func (c *Client) ListReceivers(ctx context.Context, userID int64) []Receiver {
	resp, err := c.do(ctx, opListReceivers, http.MethodGet, "/receiver/"+strconv.FormatInt(userID, 10), nil)
	if err != nil {
		c.logger.Printf("level=error component=banking_client op=%s user_id=%d msg=\"receiver request failed\" err=%v", opListReceivers, userID, err)
		return []Receiver{}
	}
	return absentIsEmpty(c, opListReceivers, ExtractReceivers(resp.body))
}

// ListPaymentCodes returns the payment codes offered in transfer forms, or an empty slice.
func (c *Client) ListPaymentCodes(ctx context.Context) []PaymentCode {
	resp, err := c.do(ctx, opListPaymentCodes, http.MethodGet, "/metadata/payment-codes", nil)
	if err != nil {
		c.logger.Printf("level=error component=banking_client op=%s msg=\"payment code request failed\" err=%v", opListPaymentCodes, err)
		return []PaymentCode{}
	}
	return absentIsEmpty(c, opListPaymentCodes, ExtractPaymentCodes(resp.body))
}

// absentIsEmpty treats a missing list as an empty one without noise; only a list of
// the wrong type is worth a diagnostic.
func absentIsEmpty[T any](c *Client, op string, payload Payload[T]) []T {
	switch {
	case payload.Shape == ShapeMalformed:
		c.logger.Printf("level=warn component=banking_client op=%s msg=\"unexpected reference payload\" reason=%q", op, payload.Reason)
	case payload.Dropped > 0:
		c.logger.Printf("level=warn component=banking_client op=%s msg=\"skipped undecodable entries\" dropped=%d", op, payload.Dropped)
	}
	return payload.Items
}
