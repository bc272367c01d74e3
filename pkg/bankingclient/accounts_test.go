package bankingclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler, token string) (*Client, *bytes.Buffer) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var logs bytes.Buffer
	client := NewClient(server.URL, TokenFunc(func(ctx context.Context) (string, error) {
		return token, nil
	}), WithLogger(log.New(&logs, "", 0)))
	return client, &logs
}

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		currency string
		want     string
	}{
		{name: "numeric string", raw: `"100"`, currency: "EUR", want: "100.00 EUR"},
		{name: "json number", raw: `1234.5`, currency: "USD", want: "1234.50 USD"},
		{name: "rounds to two digits", raw: `"99.999"`, currency: "RSD", want: "100.00 RSD"},
		{name: "negative", raw: `-12.3`, currency: "EUR", want: "-12.30 EUR"},
		{name: "padded string", raw: `" 7.1 "`, currency: "CHF", want: "7.10 CHF"},
		{name: "exponent", raw: `1e3`, currency: "USD", want: "1000.00 USD"},
		{name: "non-numeric string passes through", raw: `"N/A"`, currency: "EUR", want: "N/A"},
		{name: "NaN passes through", raw: `"NaN"`, currency: "EUR", want: "NaN"},
		{name: "empty string passes through", raw: `""`, currency: "EUR", want: ""},
		{name: "null passes through", raw: `null`, currency: "EUR", want: ""},
		{name: "no currency keeps separator", raw: `"5"`, currency: "", want: "5.00 "},
		{name: "huge exponent passes through", raw: `"1e200000000"`, currency: "EUR", want: "1e200000000"},
		{name: "tiny exponent passes through", raw: `"1e-200000000"`, currency: "EUR", want: "1e-200000000"},
		{name: "beyond float range passes through", raw: `9e308`, currency: "EUR", want: "9e308"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBalance(json.RawMessage(tt.raw), tt.currency)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFetchAccounts_FormatsForDisplay(t *testing.T) {
	var gotPath, gotAuth string
	client, logs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"data":{"accounts":[{"id":1,"ownerID":7,"subtype":"CURRENT","accountNumber":"RS1","balance":"100","currencyType":"EUR"}]}}`)
	}), "token-7")

	got := client.FetchAccounts(context.Background(), 7)

	if gotPath != "/accounts/user/7" {
		t.Fatalf("expected path /accounts/user/7, got %q", gotPath)
	}
	if gotAuth != "Bearer token-7" {
		t.Fatalf("expected bearer token header, got %q", gotAuth)
	}
	want := []AccountSummary{{ID: "1", Subtype: "CURRENT", Number: "RS1", Balance: "100.00 EUR"}}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if logs.Len() != 0 {
		t.Fatalf("expected no diagnostics, got %q", logs.String())
	}
}

func TestFetchAccounts_MissingAccountsIsEmptyAndLogged(t *testing.T) {
	bodies := []string{
		`{"success":true,"data":{}}`,
		`{"success":true,"data":{"accounts":null}}`,
		`{"success":true,"data":{"accounts":"nope"}}`,
		`not json`,
	}

	for _, body := range bodies {
		body := body
		client, logs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		}), "")

		got := client.FetchAccounts(context.Background(), 3)
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil slice for %q, got %#v", body, got)
		}
		if !strings.Contains(logs.String(), "no valid accounts in response") {
			t.Fatalf("expected a diagnostic for %q, got %q", body, logs.String())
		}
	}
}

func TestFetchAccounts_ServerErrorIsEmpty(t *testing.T) {
	client, logs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), "tok")

	got := client.FetchAccounts(context.Background(), 1)
	if len(got) != 0 {
		t.Fatalf("expected no accounts, got %d", len(got))
	}
	if !strings.Contains(logs.String(), "status=500") {
		t.Fatalf("expected logged status, got %q", logs.String())
	}
}

func TestAccountsForUser_ReturnsRecords(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"accounts":[{"id":"10","ownerID":"3","accountNumber":"RS10","subtype":"SAVINGS","currencyType":"RSD","balance":2500.75}]}}`)
	}), "tok")

	got := client.AccountsForUser(context.Background(), 3)
	if len(got) != 1 {
		t.Fatalf("expected one record, got %d", len(got))
	}
	if got[0].OwnerID != "3" || got[0].CurrencyType != "RSD" || string(got[0].Balance) != "2500.75" {
		t.Fatalf("unexpected record: %+v", got[0])
	}
	if s := got[0].Summary(); s.Balance != "2500.75 RSD" {
		t.Fatalf("expected formatted balance, got %q", s.Balance)
	}
}
