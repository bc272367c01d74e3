package bankingclient

import "testing"

func TestExtractAccounts_DegradesToEmpty(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		shape Shape
	}{
		{name: "accounts absent", body: `{"success":true,"data":{}}`, shape: ShapeMissing},
		{name: "accounts null", body: `{"data":{"accounts":null}}`, shape: ShapeMissing},
		{name: "data absent", body: `{"success":true}`, shape: ShapeMissing},
		{name: "accounts is an object", body: `{"data":{"accounts":{"id":1}}}`, shape: ShapeMalformed},
		{name: "accounts is a string", body: `{"data":{"accounts":"none"}}`, shape: ShapeMalformed},
		{name: "data is an array", body: `{"data":[1,2]}`, shape: ShapeMalformed},
		{name: "body is not an object", body: `[]`, shape: ShapeMalformed},
		{name: "body is not json", body: `<html>bad gateway</html>`, shape: ShapeMalformed},
		{name: "empty body", body: ``, shape: ShapeMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractAccounts([]byte(tt.body))
			if got.Shape != tt.shape {
				t.Fatalf("expected shape=%s, got %s (reason %q)", tt.shape, got.Shape, got.Reason)
			}
			if got.Items == nil {
				t.Fatal("expected a non-nil empty slice")
			}
			if len(got.Items) != 0 {
				t.Fatalf("expected no accounts, got %d", len(got.Items))
			}
			if got.Reason == "" {
				t.Fatal("expected a reason for the degraded extraction")
			}
		})
	}
}

func TestExtractAccounts_SkipsUndecodableElements(t *testing.T) {
	body := `{"data":{"accounts":[{"id":1,"accountNumber":"RS1"},null,"junk",{"id":{"nested":true}},{"id":"2","accountNumber":"RS2"}]}}`

	got := ExtractAccounts([]byte(body))
	if !got.OK() {
		t.Fatalf("expected ok shape, got %s (%s)", got.Shape, got.Reason)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(got.Items))
	}
	if got.Dropped != 3 {
		t.Fatalf("expected 3 dropped elements, got %d", got.Dropped)
	}
	if got.Items[0].ID != "1" || got.Items[1].ID != "2" {
		t.Fatalf("expected ids 1 and 2, got %q and %q", got.Items[0].ID, got.Items[1].ID)
	}
}

func TestExtractTransfers_RequiresSuccessFlag(t *testing.T) {
	withTransfers := `"data":{"transfers":[{"id":5,"status":"PENDING","amount":10}]}`

	tests := []struct {
		name  string
		body  string
		shape Shape
		count int
	}{
		{name: "success true", body: `{"success":true,` + withTransfers + `}`, shape: ShapeOK, count: 1},
		{name: "success false ignores data", body: `{"success":false,` + withTransfers + `}`, shape: ShapeUnsuccessful},
		{name: "success absent", body: `{` + withTransfers + `}`, shape: ShapeUnsuccessful},
		{name: "success null", body: `{"success":null,` + withTransfers + `}`, shape: ShapeUnsuccessful},
		{name: "transfers absent", body: `{"success":true,"data":{}}`, shape: ShapeMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTransfers([]byte(tt.body))
			if got.Shape != tt.shape {
				t.Fatalf("expected shape=%s, got %s", tt.shape, got.Shape)
			}
			if len(got.Items) != tt.count {
				t.Fatalf("expected %d transfers, got %d", tt.count, len(got.Items))
			}
		})
	}
}

func TestExtractTransfers_KeepsUnknownStatus(t *testing.T) {
	body := `{"success":true,"data":{"transfers":[{"id":9,"status":"EXPIRED","fromAccountId":{"id":1,"ownerID":7,"accountNumber":"RS1"},"toAccountId":"44","fromCurrency":{"code":"RSD"},"toCurrency":"EUR","createdAt":1700000000000}]}}`

	got := ExtractTransfers([]byte(body))
	if !got.OK() || len(got.Items) != 1 {
		t.Fatalf("expected one transfer, got shape=%s items=%d dropped=%d", got.Shape, len(got.Items), got.Dropped)
	}
	tr := got.Items[0]
	if tr.Status != "EXPIRED" || tr.Status.Known() {
		t.Fatalf("expected unknown status EXPIRED to be carried, got %q known=%t", tr.Status, tr.Status.Known())
	}
	if tr.FromAccount.AccountNumber != "RS1" || tr.FromAccount.OwnerID != "7" {
		t.Fatalf("unexpected from account: %+v", tr.FromAccount)
	}
	if tr.ToAccount.ID != "44" {
		t.Fatalf("expected bare to account id 44, got %q", tr.ToAccount.ID)
	}
	if tr.FromCurrency.Code != "RSD" || tr.ToCurrency.Code != "EUR" {
		t.Fatalf("unexpected currencies: %+v %+v", tr.FromCurrency, tr.ToCurrency)
	}
	if tr.CreatedAt.Time().UnixMilli() != 1700000000000 {
		t.Fatalf("unexpected createdAt %d", tr.CreatedAt)
	}
}

func TestExtractUserTransactions_ReadsDoubleNesting(t *testing.T) {
	got := ExtractUserTransactions([]byte(`{"data":{"data":[{"id":1,"amount":12.5,"currency":"EUR","status":"COMPLETED"}]}}`))
	if !got.OK() || len(got.Items) != 1 {
		t.Fatalf("expected one transaction, got shape=%s items=%d", got.Shape, len(got.Items))
	}
	if got.Items[0].Amount != "12.5" || got.Items[0].Currency != "EUR" {
		t.Fatalf("unexpected transaction: %+v", got.Items[0])
	}

	single := ExtractUserTransactions([]byte(`{"data":[{"id":1}]}`))
	if single.Shape != ShapeMalformed {
		t.Fatalf("expected single nesting to be malformed for this endpoint, got %s", single.Shape)
	}
}

func TestExtractTransferReceipt(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		shape Shape
		id    ID
	}{
		{name: "object with transferId", body: `{"success":true,"data":{"transferId":"T100"}}`, shape: ShapeOK, id: "T100"},
		{name: "numeric transferId", body: `{"data":{"transferId":100}}`, shape: ShapeOK, id: "100"},
		{name: "object with id", body: `{"data":{"id":77}}`, shape: ShapeOK, id: "77"},
		{name: "bare id as data", body: `{"data":"T5"}`, shape: ShapeOK, id: "T5"},
		{name: "data absent", body: `{"success":true}`, shape: ShapeMissing},
		{name: "empty object", body: `{"data":{}}`, shape: ShapeMissing},
		{name: "explicit failure", body: `{"success":false,"error":"insufficient funds"}`, shape: ShapeUnsuccessful},
		{name: "data is a list", body: `{"data":[1]}`, shape: ShapeMalformed},
		{name: "not json", body: `ok`, shape: ShapeMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipt, shape, _ := ExtractTransferReceipt([]byte(tt.body))
			if shape != tt.shape {
				t.Fatalf("expected shape=%s, got %s", tt.shape, shape)
			}
			if receipt.TransferID != tt.id {
				t.Fatalf("expected id %q, got %q", tt.id, receipt.TransferID)
			}
		})
	}
}

func TestEnvelopeText(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{body: `{"success":false,"error":"Invalid OTP code"}`, want: "Invalid OTP code"},
		{body: `{"success":false,"error":{"message":"Transfer expired"}}`, want: "Transfer expired"},
		{body: `{"message":"Not found"}`, want: "Not found"},
		{body: `{"success":false}`, want: ""},
	}
	for _, tt := range tests {
		env, err := DecodeEnvelope([]byte(tt.body))
		if err != nil {
			t.Fatalf("unexpected decode error for %s: %v", tt.body, err)
		}
		if got := env.Text(); got != tt.want {
			t.Fatalf("expected text %q for %s, got %q", tt.want, tt.body, got)
		}
	}
}
