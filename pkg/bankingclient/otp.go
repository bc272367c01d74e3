package bankingclient

import (
	"bytes"
	"context"
	"net/http"
)

const (
	opVerifyTransferOTP    = "verify_transfer_otp"
	opVerifyTransactionOTP = "verify_transaction_otp"
)

// VerifyTransferOTP submits the OTP for a pending transfer. A nil error means the
// backend accepted the code and the transfer moves to COMPLETED. Wrong codes, expired
// or unknown transfers come back as *APIError matching ErrRejected. A 2xx whose body is
// neither empty nor a JSON envelope matches ErrMalformedResponse, since it proves
// nothing about the transfer. Each call is a single attempt; retry policy belongs to
// the caller.
func (c *Client) VerifyTransferOTP(ctx context.Context, v OTPVerification) error {
	return c.verify(ctx, opVerifyTransferOTP, v)
}

// VerifyTransactionOTP submits the OTP for a ledger transaction using the generic
// verification body.
func (c *Client) VerifyTransactionOTP(ctx context.Context, transactionID int64, code string) error {
	return c.verify(ctx, opVerifyTransactionOTP, TransactionOTP{TransactionID: transactionID, Code: code})
}

func (c *Client) verify(ctx context.Context, op string, payload any) error {
	resp, err := c.do(ctx, op, http.MethodPost, "/otp/verification", payload)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	env, err := DecodeEnvelope(resp.body)
	if err != nil {
		c.logger.Printf("level=error component=banking_client op=%s status=%d msg=\"verification response is not an envelope\" err=%v", op, resp.status, err)
		return malformed(op, err.Error())
	}
	if env.Failed() {
		return &APIError{Op: op, StatusCode: resp.status, Message: env.Text()}
	}
	return nil
}
