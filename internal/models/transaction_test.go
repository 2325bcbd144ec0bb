package models

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

func TestTransaction_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantID string
	}{
		{"id key", `{"id":"a1","date":"2025-01-15","amount":140,"category":"Food","note":"Lunch","type":"expense","account":"Cash"}`, "a1"},
		{"raw _id key", `{"_id":"b2","date":"2025-01-15","amount":140,"category":"Food","note":"Lunch","type":"expense","account":"Cash"}`, "b2"},
		{"id wins over _id", `{"id":"a1","_id":"b2","date":"2025-01-15","amount":140,"category":"Food","note":"Lunch","type":"expense","account":"Cash"}`, "a1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tx Transaction
			if err := json.Unmarshal([]byte(tt.body), &tx); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tx.ID != tt.wantID {
				t.Errorf("expected id %q, got %q", tt.wantID, tx.ID)
			}
			if !tx.Amount.Equal(decimal.NewFromInt(140)) || tx.Account != "Cash" || tx.Type != TransactionTypeExpense {
				t.Errorf("fields not decoded: %+v", tx)
			}
		})
	}

	t.Run("inside a list", func(t *testing.T) {
		var txs []Transaction
		body := `[{"_id":"x","amount":1.25,"type":"income"},{"id":"y","amount":2,"type":"expense"}]`
		if err := json.Unmarshal([]byte(body), &txs); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(txs) != 2 || txs[0].ID != "x" || txs[1].ID != "y" {
			t.Errorf("unexpected transactions: %+v", txs)
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		var tx Transaction
		if err := json.Unmarshal([]byte(`{"amount":"abc"}`), &tx); err == nil {
			t.Error("expected error for non-numeric amount")
		}
	})
}
