package bankingclient

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestAPIError_KindsByStatus(t *testing.T) {
	kinds := []error{ErrUnauthorized, ErrRejected, ErrNotFound, ErrServer, ErrTransport, ErrMalformedResponse}

	tests := []struct {
		status int
		want   []error
	}{
		{status: http.StatusOK, want: []error{ErrRejected}},
		{status: http.StatusBadRequest, want: []error{ErrRejected}},
		{status: http.StatusUnauthorized, want: []error{ErrUnauthorized}},
		{status: http.StatusForbidden, want: []error{ErrUnauthorized}},
		{status: http.StatusNotFound, want: []error{ErrNotFound, ErrRejected}},
		{status: http.StatusRequestTimeout, want: []error{ErrServer}},
		{status: http.StatusConflict, want: []error{ErrRejected}},
		{status: http.StatusGone, want: []error{ErrRejected}},
		{status: http.StatusInternalServerError, want: []error{ErrServer}},
		{status: http.StatusBadGateway, want: []error{ErrServer}},
		{status: http.StatusGatewayTimeout, want: []error{ErrServer}},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := error(&APIError{Op: "test", StatusCode: tt.status})
			for _, kind := range kinds {
				want := false
				for _, w := range tt.want {
					if w == kind {
						want = true
					}
				}
				if got := errors.Is(err, kind); got != want {
					t.Fatalf("status %d: expected errors.Is(%v) = %v, got %v", tt.status, kind, want, got)
				}
			}
		})
	}
}

func TestClient_UnencodableRequestMatchesNoKind(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", nil)

	_, err := client.do(context.Background(), "test", http.MethodPost, "/x", map[string]any{"bad": make(chan int)})
	if err == nil {
		t.Fatal("expected an encoding error")
	}
	for _, kind := range []error{ErrUnauthorized, ErrRejected, ErrNotFound, ErrServer, ErrTransport, ErrMalformedResponse} {
		if errors.Is(err, kind) {
			t.Fatalf("expected encoding failure to match no kind, matched %v", kind)
		}
	}
}
