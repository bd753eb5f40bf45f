package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farewatch-service/internal/domain/entity"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		amount   float64
		currency string
	}{
		{"plain dollars", "$1,299", 1299, "USD"},
		{"decimal euros", "€2,450.50 round trip", 2450.50, "EUR"},
		{"pounds", "£899", 899, "GBP"},
		{"bare number", "742", 742, "USD"},
		{"currency code", "EUR 1200", 1200, "EUR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, currency, err := ParsePrice(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.amount, amount)
			assert.Equal(t, tt.currency, currency)
		})
	}
}

func TestParsePriceInvalid(t *testing.T) {
	_, _, err := ParsePrice("call for price")
	assert.Error(t, err)

	_, _, err = ParsePrice("")
	assert.Error(t, err)
}

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		text    string
		minutes int
	}{
		{"8 hr 35 min", 515},
		{"13h 20m", 800},
		{"22 hours 5 minutes", 1325},
		{"45 min", 45},
		{"6h", 360},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			minutes, err := ParseDurationMinutes(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.minutes, minutes)
		})
	}
}

func TestParseDurationMinutesInvalid(t *testing.T) {
	_, err := ParseDurationMinutes("all day")
	assert.Error(t, err)
}

func TestParseStops(t *testing.T) {
	stops, err := ParseStops("Nonstop")
	require.NoError(t, err)
	assert.Equal(t, 0, stops)

	stops, err = ParseStops("1 stop")
	require.NoError(t, err)
	assert.Equal(t, 1, stops)

	stops, err = ParseStops("2 stops")
	require.NoError(t, err)
	assert.Equal(t, 2, stops)

	_, err = ParseStops("direct")
	assert.Error(t, err)
}

func TestParseCabin(t *testing.T) {
	tests := []struct {
		text  string
		cabin entity.Cabin
	}{
		{"Economy", entity.CabinEconomy},
		{"coach", entity.CabinEconomy},
		{"Premium Economy", entity.CabinPremiumEconomy},
		{"premium", entity.CabinPremiumEconomy},
		{"Business", entity.CabinBusiness},
		{"First", entity.CabinFirst},
	}

	for _, tt := range tests {
		cabin, err := ParseCabin(tt.text)
		require.NoError(t, err)
		assert.Equal(t, tt.cabin, cabin)
	}

	_, err := ParseCabin("cargo hold")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"2026-09-15", "2026-09-15"},
		{"09/15/2026", "2026-09-15"},
		{"2026/09/15", "2026-09-15"},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.text)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseDate("next Tuesday")
	assert.Error(t, err)
}
