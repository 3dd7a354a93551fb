package services

import (
	"testing"

	"github.com/hwinelin/backoffice-functions/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapLedgerCategory(t *testing.T) {
	tests := []struct {
		docCategory string
		want        string
	}{
		{"Software", "Software"},
		{"subscription", "Software"},
		{"  Travel ", "Travel"},
		{"HOTEL", "Travel"},
		{"Hardware", "Equipment"},
		{"Advertising", "Marketing"},
		{"Consulting", "Services"},
		{"", "Services"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapLedgerCategory(tt.docCategory), "category %q", tt.docCategory)
	}
}

func TestDeriveVATRate(t *testing.T) {
	assert.Equal(t, 19.0, deriveVATRate(19, 100))
	assert.Equal(t, 7.5, deriveVATRate(15, 200))
	assert.Equal(t, 0.0, deriveVATRate(0, 100))
	assert.Equal(t, 0.0, deriveVATRate(19, 0))
	assert.Equal(t, 0.0, deriveVATRate(-3, 100))
}

func TestDeriveVATRateRounding(t *testing.T) {
	// 10 / 300 * 100 = 3.333... -> 3.33
	assert.Equal(t, 3.33, deriveVATRate(10, 300))
}

func TestRoundAmount(t *testing.T) {
	assert.Equal(t, 12.35, roundAmount(12.3456))
	assert.Equal(t, 100.0, roundAmount(100))
}

func TestMatchBankAccount(t *testing.T) {
	accounts := []models.BankAccount{
		{ID: "acc-1", Name: "Main EUR"},
		{ID: "acc-2", Name: "WISE Business EUR"},
		{ID: "acc-3", Name: "Wise USD"},
	}

	match := matchBankAccount(accounts, "Wise")
	require.NotNil(t, match)
	assert.Equal(t, "acc-2", match.ID)

	assert.Nil(t, matchBankAccount(accounts[:1], "Wise"))
	assert.Nil(t, matchBankAccount(nil, "Wise"))
}
