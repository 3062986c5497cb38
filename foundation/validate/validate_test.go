package validate_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/validate"
)

type newTx struct {
	Sender   string   `json:"sender" validate:"required"`
	Receiver string   `json:"receiver" validate:"required"`
	Amount   *float64 `json:"amount" validate:"required"`
}

func TestCheck(t *testing.T) {
	amount := 1.0

	if err := validate.Check(newTx{Sender: "alice", Receiver: "bob", Amount: &amount}); err != nil {
		t.Fatalf("should accept a complete value: %v", err)
	}

	err := validate.Check(newTx{Sender: "alice"})
	if !validate.IsFieldErrors(err) {
		t.Fatalf("should return field errors, got %v", err)
	}

	fields := validate.GetFieldErrors(err).Fields()
	if len(fields) != 2 {
		t.Fatalf("should flag two fields, got %v", fields)
	}

	if _, exists := fields["receiver"]; !exists {
		t.Fatalf("should use json names for fields, got %v", fields)
	}

	if _, exists := fields["amount"]; !exists {
		t.Fatalf("should flag a missing amount, got %v", fields)
	}
}
