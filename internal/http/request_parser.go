// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for decoding and validating JSON request
// bodies and path parameters.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"mybalance/internal/core"
	"mybalance/internal/services"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

var errMalformedBody = errors.New("malformed request body")

// decodeJSON reads exactly one JSON object from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", errMalformedBody)
	}
	return nil
}

// AmountField accepts a JSON string ("12.34") or number (12.34) and keeps
// its literal text so it can be parsed as a decimal without going through
// float64.
type AmountField string

func (a *AmountField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AmountField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or number")
	}
	*a = AmountField(n.String())
	return nil
}

// TransactionRequest is the body of POST and PUT /transaction/.
type TransactionRequest struct {
	Description string      `json:"description"`
	Amount      AmountField `json:"amount"`
	Date        string      `json:"date"`
	Kind        string      `json:"kind"`
	CategoryID  *int64      `json:"category_id"`
}

// Transaction validates the request and converts it to a domain value.
func (req TransactionRequest) Transaction() (core.Transaction, error) {
	return services.NewTransactionInput{
		Description: sanitizeInput(req.Description),
		Amount:      string(req.Amount),
		Date:        req.Date,
		Kind:        req.Kind,
		CategoryID:  req.CategoryID,
	}.Parse()
}

// CategoryRequest is the body of POST and PUT /category/.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (req CategoryRequest) Category() core.Category {
	return core.Category{
		Name:        sanitizeInput(req.Name),
		Description: sanitizeInput(req.Description),
	}
}

// BalanceRecordRequest is the body of POST /balance/. Income and expense
// default to zero; balance may be negative.
type BalanceRecordRequest struct {
	Date    string      `json:"date"`
	Income  AmountField `json:"income"`
	Expense AmountField `json:"expense"`
	Balance AmountField `json:"balance"`
}

func (req BalanceRecordRequest) Record() (core.BalanceRecord, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.BalanceRecord{}, err
	}
	rec := core.BalanceRecord{Date: date}
	for _, f := range []struct {
		raw AmountField
		dst *core.Money
	}{
		{req.Income, &rec.Income},
		{req.Expense, &rec.Expense},
		{req.Balance, &rec.Balance},
	} {
		if strings.TrimSpace(string(f.raw)) == "" {
			continue
		}
		m, err := core.ParseSignedAmount(string(f.raw))
		if err != nil {
			return core.BalanceRecord{}, err
		}
		*f.dst = m
	}
	return rec, nil
}

// pathID parses the {id} path value as a positive integer.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
