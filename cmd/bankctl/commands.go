package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/brankadelic/Banka-1-Mobile/pkg/bankingclient"
	"github.com/brankadelic/Banka-1-Mobile/pkg/tokenstore"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

type app struct {
	client *bankingclient.Client
	tokens bankingclient.TokenProvider
	sink   tokenSink
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error
}

var commands = []command{
	{"accounts", "list account summaries with formatted balances", runAccounts},
	{"accounts-raw", "list accounts exactly as the backend describes them", runAccountsRaw},
	{"transactions", "list the user's transaction history", runTransactions},
	{"account-transactions", "list the transactions of one account", runAccountTransactions},
	{"transfers", "list transfers and their status", runTransfers},
	{"receivers", "list saved payment recipients", runReceivers},
	{"payment-codes", "list payment codes", runPaymentCodes},
	{"transfer", "create a transfer (and optionally verify it)", runTransfer},
	{"verify-otp", "authorize a pending transfer with its OTP", runVerifyOTP},
	{"verify-transaction-otp", "authorize a ledger transaction with its OTP", runVerifyTransactionOTP},
	{"whoami", "show the claims of the stored token", runWhoami},
	{"save-token", "store a bearer token in the configured token source", runSaveToken},
	{"clear-token", "remove the stored bearer token", runClearToken},
}

var errUsage = errors.New("invalid usage")

// run executes one subcommand and returns the process exit code.
func run(ctx context.Context, a *app, args []string) int {
	if a.now == nil {
		a.now = time.Now
	}
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(a.stderr)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	for _, cmd := range commands {
		if cmd.name != args[0] {
			continue
		}
		fs := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
		fs.SetOutput(a.stderr)
		err := cmd.run(ctx, a, fs, args[1:])
		switch {
		case err == nil:
			return 0
		case errors.Is(err, pflag.ErrHelp):
			return 0
		case errors.Is(err, errUsage):
			fmt.Fprintf(a.stderr, "bankctl %s: %v\n", cmd.name, err)
			fs.PrintDefaults()
			return 2
		default:
			fmt.Fprintf(a.stderr, "bankctl %s: %v\n", cmd.name, err)
			return 1
		}
	}

	fmt.Fprintf(a.stderr, "bankctl: unknown command %q\n", args[0])
	printUsage(a.stderr)
	return 2
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: bankctl <command> [flags]")
	fmt.Fprintln(w)
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-24s %s\n", cmd.name, cmd.summary)
	}
}

func runAccounts(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	user := fs.Int64("user", 0, "user id (defaults to the id in the stored token)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := a.resolveUser(ctx, *user)
	if err != nil {
		return err
	}
	return a.print(a.client.FetchAccounts(ctx, userID))
}

func runAccountsRaw(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	user := fs.Int64("user", 0, "user id (defaults to the id in the stored token)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := a.resolveUser(ctx, *user)
	if err != nil {
		return err
	}
	return a.print(a.client.AccountsForUser(ctx, userID))
}

func runTransactions(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	user := fs.Int64("user", 0, "user id (defaults to the id in the stored token)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := a.resolveUser(ctx, *user)
	if err != nil {
		return err
	}
	txs, err := a.client.ListUserTransactions(ctx, userID)
	if err != nil {
		return err
	}
	return a.print(txs)
}

func runAccountTransactions(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	account := fs.String("account", "", "account id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *account == "" && fs.NArg() > 0 {
		*account = fs.Arg(0)
	}
	if strings.TrimSpace(*account) == "" {
		return fmt.Errorf("%w: --account is required", errUsage)
	}
	return a.print(a.client.ListAccountTransactions(ctx, *account))
}

func runTransfers(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	pending := fs.Bool("pending", false, "only show transfers waiting for OTP verification")
	id := fs.String("id", "", "only show the transfer with this id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	transfers, err := a.client.ListTransfers(ctx)
	if err != nil {
		return err
	}
	if *id != "" {
		t, ok := bankingclient.FindTransfer(transfers, bankingclient.ID(*id))
		if !ok {
			return fmt.Errorf("transfer %s not found", *id)
		}
		return a.print(t)
	}
	if *pending {
		filtered := []bankingclient.Transfer{}
		for _, t := range transfers {
			if t.Status.IsPending() {
				filtered = append(filtered, t)
			}
		}
		transfers = filtered
	}
	return a.print(transfers)
}

func runReceivers(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	user := fs.Int64("user", 0, "user id (defaults to the id in the stored token)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := a.resolveUser(ctx, *user)
	if err != nil {
		return err
	}
	return a.print(a.client.ListReceivers(ctx, userID))
}

func runPaymentCodes(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.print(a.client.ListPaymentCodes(ctx))
}

func runTransfer(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	var req bankingclient.TransferRequest
	amount := fs.String("amount", "", "amount to send")
	fs.StringVar(&req.FromAccountID, "from", "", "source account id")
	fs.StringVar(&req.ToAccountID, "to", "", "destination account id or number")
	fs.StringVar(&req.Receiver, "receiver", "", "recipient name")
	fs.StringVar(&req.Address, "address", "", "recipient address")
	fs.StringVar(&req.PaymentCode, "code", "", "payment code")
	fs.StringVar(&req.PaymentReference, "reference", "", "payment reference")
	fs.StringVar(&req.PaymentDescription, "description", "", "payment description")
	fs.StringVar(&req.FromCurrency, "from-currency", "", "source currency code")
	fs.StringVar(&req.ToCurrency, "to-currency", "", "destination currency code")
	fs.StringVar(&req.Note, "note", "", "optional note")
	otp := fs.String("otp", "", "verify the new transfer with this code right away")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *amount == "" || req.FromAccountID == "" || req.ToAccountID == "" {
		return fmt.Errorf("%w: --amount, --from and --to are required", errUsage)
	}
	value, err := decimal.NewFromString(*amount)
	if err != nil {
		return fmt.Errorf("%w: invalid amount %q", errUsage, *amount)
	}
	req.Amount = value
	if req.ToCurrency == "" {
		req.ToCurrency = req.FromCurrency
	}

	receipt, err := a.client.CreateTransfer(ctx, req)
	if err != nil {
		return err
	}

	status := bankingclient.StatusPending
	if *otp != "" {
		if err := a.client.VerifyTransferOTP(ctx, bankingclient.OTPVerification{TransferID: string(receipt.TransferID), OTPCode: *otp}); err != nil {
			_ = a.print(map[string]string{"transferId": string(receipt.TransferID), "status": string(status)})
			return err
		}
		status = bankingclient.StatusCompleted
	}
	return a.print(map[string]string{"transferId": string(receipt.TransferID), "status": string(status)})
}

func runVerifyOTP(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	id := fs.String("transfer", "", "transfer id")
	code := fs.String("code", "", "OTP code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *code == "" {
		return fmt.Errorf("%w: --transfer and --code are required", errUsage)
	}

	if err := a.client.VerifyTransferOTP(ctx, bankingclient.OTPVerification{TransferID: *id, OTPCode: *code}); err != nil {
		return err
	}
	return a.print(map[string]string{"transferId": *id, "status": string(bankingclient.StatusCompleted)})
}

func runVerifyTransactionOTP(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	id := fs.Int64("transaction", 0, "transaction id")
	code := fs.String("code", "", "OTP code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 || *code == "" {
		return fmt.Errorf("%w: --transaction and --code are required", errUsage)
	}

	if err := a.client.VerifyTransactionOTP(ctx, *id, *code); err != nil {
		return err
	}
	return a.print(map[string]interface{}{"transactionId": *id, "verified": true})
}

func runWhoami(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	token, err := a.storedToken(ctx)
	if err != nil {
		return err
	}
	claims, err := tokenstore.ParseClaims(token)
	if err != nil {
		return err
	}

	out := map[string]interface{}{
		"userId":  claims.UserID,
		"subject": claims.Subject,
		"expired": claims.Expired(a.now()),
	}
	if !claims.ExpiresAt.IsZero() {
		out["expiresAt"] = claims.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return a.print(out)
}

func runSaveToken(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		return fmt.Errorf("%w: expected exactly one token argument", errUsage)
	}
	if a.sink == nil {
		return errors.New("the configured token source is read-only")
	}
	return a.sink.Save(ctx, strings.TrimSpace(fs.Arg(0)))
}

func runClearToken(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if a.sink == nil {
		return errors.New("the configured token source is read-only")
	}
	return a.sink.Clear(ctx)
}

// resolveUser returns the explicit user id, or the one carried by the stored token.
func (a *app) resolveUser(ctx context.Context, explicit int64) (int64, error) {
	if explicit > 0 {
		return explicit, nil
	}
	token, err := a.storedToken(ctx)
	if err != nil {
		return 0, err
	}
	claims, err := tokenstore.ParseClaims(token)
	if err != nil {
		return 0, fmt.Errorf("pass --user: %w", err)
	}
	return claims.UserID, nil
}

func (a *app) storedToken(ctx context.Context) (string, error) {
	token, err := a.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return "", errors.New("no token stored; run save-token first")
	}
	return token, nil
}

func (a *app) print(v interface{}) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
