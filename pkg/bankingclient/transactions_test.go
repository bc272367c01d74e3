package bankingclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
)

func TestListAccountTransactions_NotFoundIsSilent(t *testing.T) {
	client, logs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"error":"No transactions"}`)
	}), "tok")

	got := client.ListAccountTransactions(context.Background(), "42")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	if logs.Len() != 0 {
		t.Fatalf("expected no diagnostic for 404, got %q", logs.String())
	}
}

func TestListAccountTransactions_OtherFailuresAreLogged(t *testing.T) {
	statuses := []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusInternalServerError, http.StatusBadGateway}

	for _, status := range statuses {
		status := status
		client, logs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}), "tok")

		got := client.ListAccountTransactions(context.Background(), "42")
		if len(got) != 0 {
			t.Fatalf("expected empty slice for status %d, got %d items", status, len(got))
		}
		if logs.Len() == 0 {
			t.Fatalf("expected a diagnostic for status %d", status)
		}
	}
}

func TestListAccountTransactions_ReturnsTransactions(t *testing.T) {
	var gotPath string
	client, logs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = io.WriteString(w, `{"success":true,"data":{"transactions":[{"id":3,"amount":"15.00","fromAccountId":{"id":42},"toAccountId":43,"paymentDescription":"rent","createdAt":1700000000000}]}}`)
	}), "tok")

	got := client.ListAccountTransactions(context.Background(), "42")
	if gotPath != "/accounts/42/transactions" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if len(got) != 1 {
		t.Fatalf("expected one transaction, got %d (logs %q)", len(got), logs.String())
	}
	tx := got[0]
	if tx.ID != "3" || tx.Amount != "15.00" || tx.FromAccountID != "42" || tx.ToAccountID != "43" || tx.Description != "rent" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if tx.Timestamp != 1700000000000 {
		t.Fatalf("expected timestamp from createdAt, got %d", tx.Timestamp)
	}
	if len(tx.Raw) == 0 {
		t.Fatal("expected raw element to be kept")
	}
}

func TestListAccountTransactions_MissingPayloadIsLogged(t *testing.T) {
	client, logs := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":{}}`)
	}), "tok")

	got := client.ListAccountTransactions(context.Background(), "42")
	if len(got) != 0 {
		t.Fatalf("expected empty slice, got %d", len(got))
	}
	if logs.Len() == 0 {
		t.Fatal("expected a diagnostic for missing data.transactions")
	}
}

func TestListUserTransactions_PropagatesFailures(t *testing.T) {
	t.Run("missing double nesting", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"data":{"transactions":[]}}`)
		}), "tok")

		got, err := client.ListUserTransactions(context.Background(), 5)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("expected ErrMalformedResponse, got %v", err)
		}
		if got != nil {
			t.Fatalf("expected no transactions, got %v", got)
		}
	})

	t.Run("server error", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}), "tok")

		_, err := client.ListUserTransactions(context.Background(), 5)
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("expected APIError with status 503, got %v", err)
		}
	})
}

func TestListUserTransactions_ReadsDataData(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `{"success":true,"data":{"data":[{"id":1,"amount":10},{"id":2,"amount":20}]}}`)
	}), "tok")

	got, err := client.ListUserTransactions(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/transactions/5" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if len(got) != 2 || got[1].Amount != "20" {
		t.Fatalf("unexpected transactions: %+v", got)
	}
}
