package bankingclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Shape tags what an extraction found in a response body.
type Shape int

const (
	// ShapeOK means the expected payload was present and well formed.
	ShapeOK Shape = iota
	// ShapeMissing means a field along the path was absent or null.
	ShapeMissing
	// ShapeMalformed means the body or a field along the path had the wrong type.
	ShapeMalformed
	// ShapeUnsuccessful means the envelope's success flag was false or absent where it gates the payload.
	ShapeUnsuccessful
)

func (s Shape) String() string {
	switch s {
	case ShapeOK:
		return "ok"
	case ShapeMissing:
		return "missing"
	case ShapeMalformed:
		return "malformed"
	case ShapeUnsuccessful:
		return "unsuccessful"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// Payload is the result of extracting a list from an envelope. Items is never nil: a
// degraded extraction carries an empty list plus the reason it degraded.
type Payload[T any] struct {
	Items []T
	Shape Shape
	// Reason describes why the extraction degraded. Empty for ShapeOK.
	Reason string
	// Dropped counts list elements that could not be decoded and were skipped.
	Dropped int
}

// OK reports whether the payload was found in the expected shape.
func (p Payload[T]) OK() bool { return p.Shape == ShapeOK }

// Envelope is the outer object every backend response is wrapped in.
type Envelope struct {
	Success *bool           `json:"success"`
	Message json.RawMessage `json:"message"`
	Error   json.RawMessage `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// Succeeded reports whether the envelope carries an explicit success=true.
func (e Envelope) Succeeded() bool { return e.Success != nil && *e.Success }

// Failed reports whether the envelope carries an explicit success=false.
func (e Envelope) Failed() bool { return e.Success != nil && !*e.Success }

// Text returns the backend's human readable message, if any.
func (e Envelope) Text() string {
	if text, ok := scalarText(e.Error); ok && text != "" {
		return text
	}
	if len(bytes.TrimSpace(e.Error)) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(e.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}
	if text, ok := scalarText(e.Message); ok {
		return text
	}
	return ""
}

// DecodeEnvelope parses a response body as an envelope object.
func DecodeEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return env, fmt.Errorf("response body is not a JSON object")
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return env, fmt.Errorf("failed to decode envelope: %w", err)
	}
	return env, nil
}

// ExtractAccounts reads data.accounts.
func ExtractAccounts(body []byte) Payload[AccountRecord] {
	return extractList[AccountRecord](body, false, "data", "accounts")
}

// ExtractUserTransactions reads data.data. The double nesting is how the backend
// answers this endpoint and is kept as-is.
func ExtractUserTransactions(body []byte) Payload[Transaction] {
	return extractList[Transaction](body, false, "data", "data")
}

// ExtractAccountTransactions reads data.transactions.
func ExtractAccountTransactions(body []byte) Payload[Transaction] {
	return extractList[Transaction](body, false, "data", "transactions")
}

// ExtractTransfers reads data.transfers, but only from an envelope with success=true.
func ExtractTransfers(body []byte) Payload[Transfer] {
	return extractList[Transfer](body, true, "data", "transfers")
}

// ExtractReceivers reads data.receivers.
func ExtractReceivers(body []byte) Payload[Receiver] {
	return extractList[Receiver](body, false, "data", "receivers")
}

// ExtractPaymentCodes reads data.codes.
func ExtractPaymentCodes(body []byte) Payload[PaymentCode] {
	return extractList[PaymentCode](body, false, "data", "codes")
}

// ExtractTransferReceipt reads the transfer identifier from data. The backend sends
// either {"data": {"transferId": ...}} or the identifier itself as data.
func ExtractTransferReceipt(body []byte) (TransferReceipt, Shape, string) {
	env, err := DecodeEnvelope(body)
	if err != nil {
		return TransferReceipt{}, ShapeMalformed, err.Error()
	}
	if env.Failed() {
		return TransferReceipt{}, ShapeUnsuccessful, "success flag is false"
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || string(data) == "null" {
		return TransferReceipt{}, ShapeMissing, "data is absent"
	}

	var id ID
	if data[0] == '{' {
		var fields struct {
			TransferID ID `json:"transferId"`
			ID         ID `json:"id"`
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return TransferReceipt{}, ShapeMalformed, fmt.Sprintf("data is not a receipt: %v", err)
		}
		id = fields.TransferID
		if id == "" {
			id = fields.ID
		}
	} else if err := id.UnmarshalJSON(data); err != nil {
		return TransferReceipt{}, ShapeMalformed, fmt.Sprintf("data is not a transfer id: %v", err)
	}

	if strings.TrimSpace(string(id)) == "" {
		return TransferReceipt{}, ShapeMissing, "data.transferId is absent"
	}
	return TransferReceipt{TransferID: id}, ShapeOK, ""
}

func extractList[T any](body []byte, requireSuccess bool, path ...string) Payload[T] {
	out := Payload[T]{Items: []T{}}

	env, err := DecodeEnvelope(body)
	if err != nil {
		out.Shape, out.Reason = ShapeMalformed, err.Error()
		return out
	}
	if requireSuccess && !env.Succeeded() {
		out.Shape = ShapeUnsuccessful
		if env.Success == nil {
			out.Reason = "success flag is absent"
		} else {
			out.Reason = "success flag is false"
		}
		return out
	}

	raw, shape, reason := lookup(env.Data, path[0], path[1:]...)
	if shape != ShapeOK {
		out.Shape, out.Reason = shape, reason
		return out
	}
	if raw[0] != '[' {
		out.Shape, out.Reason = ShapeMalformed, strings.Join(path, ".")+" is not an array"
		return out
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		out.Shape, out.Reason = ShapeMalformed, fmt.Sprintf("%s could not be decoded: %v", strings.Join(path, "."), err)
		return out
	}
	for _, elem := range elems {
		if trimmed := bytes.TrimSpace(elem); len(trimmed) == 0 || string(trimmed) == "null" {
			out.Dropped++
			continue
		}
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			out.Dropped++
			continue
		}
		out.Items = append(out.Items, item)
	}
	return out
}

// lookup walks an object path starting at the envelope's data field, which is named
// by root. The returned value is trimmed and non-empty when shape is ShapeOK.
func lookup(data json.RawMessage, root string, rest ...string) (json.RawMessage, Shape, string) {
	current := bytes.TrimSpace(data)
	walked := root
	if len(current) == 0 || string(current) == "null" {
		return nil, ShapeMissing, walked + " is absent"
	}
	for _, key := range rest {
		if current[0] != '{' {
			return nil, ShapeMalformed, walked + " is not an object"
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(current, &fields); err != nil {
			return nil, ShapeMalformed, fmt.Sprintf("%s could not be decoded: %v", walked, err)
		}
		walked += "." + key
		current = bytes.TrimSpace(fields[key])
		if len(current) == 0 || string(current) == "null" {
			return nil, ShapeMissing, walked + " is absent"
		}
	}
	return current, ShapeOK, ""
}
