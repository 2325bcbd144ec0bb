// Package models defines the records mirrored from the budget service and the
// payloads sent to it.
package models

import "github.com/shopspring/decimal"

// ISODay is the layout of every date string exchanged with the budget service.
const ISODay = "2006-01-02"

func init() {
	// The budget service reads and writes amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}
