package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mybalance/internal/core"
)

func TestAmountFieldUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
		want AmountField
		err  bool
	}{
		{"string", `{"amount":"12.34"}`, "12.34", false},
		{"comma string", `{"amount":"12,34"}`, "12,34", false},
		{"number keeps literal text", `{"amount":0.1}`, "0.1", false},
		{"integer", `{"amount":120}`, "120", false},
		{"null", `{"amount":null}`, "", false},
		{"bool", `{"amount":true}`, "", true},
		{"object", `{"amount":{}}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				Amount AmountField `json:"amount"`
			}
			err := json.Unmarshal([]byte(tt.json), &v)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Amount)
		})
	}
}

func TestTransactionRequest(t *testing.T) {
	catID := int64(3)
	req := TransactionRequest{
		Description: "  Coffee\x07 ",
		Amount:      "2.5",
		Date:        "2024-05-06",
		Kind:        "Expense",
		CategoryID:  &catID,
	}
	tx, err := req.Transaction()
	require.NoError(t, err)
	assert.Equal(t, "Coffee", tx.Description)
	assert.Equal(t, int64(250), tx.Amount.Cents)
	assert.Equal(t, core.NewDate(2024, 5, 6), tx.Date)
	assert.Equal(t, core.Expense, tx.Kind)
	assert.Equal(t, &catID, tx.CategoryID)

	req.Amount = "abc"
	_, err = req.Transaction()
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestBalanceRecordRequest(t *testing.T) {
	rec, err := BalanceRecordRequest{Date: "2024-01-01", Income: "5", Balance: "-2.50"}.Record()
	require.NoError(t, err)
	assert.Equal(t, core.BalanceRecord{
		Date:    core.NewDate(2024, 1, 1),
		Income:  core.Money{Cents: 500},
		Balance: core.Money{Cents: -250},
	}, rec)

	_, err = BalanceRecordRequest{Date: ""}.Record()
	assert.ErrorIs(t, err, core.ErrInvalidDate)

	_, err = BalanceRecordRequest{Date: "2024-01-01", Expense: "x"}.Record()
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"valid", `{"name":"Home"}`, true},
		{"unknown field", `{"name":"Home","color":"red"}`, false},
		{"trailing data", `{"name":"Home"}{"name":"x"}`, false},
		{"empty", ``, false},
		{"too large", `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/category/", strings.NewReader(tt.body))
			var req CategoryRequest
			err := decodeJSON(httptest.NewRecorder(), r, &req)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, "Home", req.Name)
			} else {
				assert.ErrorIs(t, err, errMalformedBody)
			}
		})
	}
}

func TestPathID(t *testing.T) {
	for value, want := range map[string]bool{"1": true, "42": true, "0": false, "-3": false, "x": false} {
		r := httptest.NewRequest(http.MethodGet, "/transaction/"+value, nil)
		r.SetPathValue("id", value)
		_, ok := pathID(r)
		assert.Equal(t, want, ok, value)
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "a\tb", sanitizeInput("  a\x00\tb\x1b "))
	assert.Equal(t, "line1\nline2", sanitizeInput("line1\nline2"))
}
