package finance

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"150":          "150",
		"R$ 1.234,56":  "1234.56",
		"1,234.56":     "1234.56",
		"12,5":         "12.5",
		"1.234.567":    "1234567",
		"1,234,567":    "1234567",
		"  -42.10 ":    "-42.1",
		"US$ 99.90":    "99.9",
		"abc":          "0",
		"":             "0",
		"-":            "0",
		"1.2.3,4":      "123.4",
	}
	for in, want := range cases {
		assert.True(t, dec(want).Equal(ParseAmount(in)), "%q -> %s, got %s", in, want, ParseAmount(in))
	}
}

func TestComputeTotal(t *testing.T) {
	total := ComputeTotal(TotalInput{
		TicketValue:   dec("100"),
		DistanceTotal: dec("10"),
		DistanceRate:  dec("2"),
		ExtraExpenses: dec("5"),
	})
	assert.True(t, dec("125").Equal(total), total.String())

	total = ComputeTotal(TotalInput{
		TicketValue:        dec("100"),
		ExtraHours:         dec("1.5"),
		AdditionalHourRate: dec("40.333"),
	})
	assert.Equal(t, "160.5", total.String())
}

func TestComputeTotal_NeverNegative(t *testing.T) {
	total := ComputeTotal(TotalInput{
		TicketValue:   dec("10"),
		ExtraExpenses: dec("-50"),
	})
	assert.True(t, total.IsZero())
}

func TestExtraHours(t *testing.T) {
	assert.True(t, ExtraHours(4*3600+1800, dec("3")).Equal(dec("1.5")))
	assert.True(t, ExtraHours(2*3600, dec("3")).IsZero())
	assert.True(t, ExtraHours(3*3600+600, dec("3")).Equal(dec("0.17")))
}

func TestResolveRate(t *testing.T) {
	stored := dec("1.8")
	override := dec("2.5")
	zero := decimal.Zero

	assert.True(t, ResolveRate(&override, stored).Equal(override))
	assert.True(t, ResolveRate(&zero, stored).Equal(stored))
	assert.True(t, ResolveRate(nil, stored).Equal(stored))
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	var payload struct {
		A *Amount `json:"a"`
		B *Amount `json:"b"`
		C *Amount `json:"c"`
		D *Amount `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a": 12.5, "b": "R$ 1.000,00", "c": null}`), &payload)
	require.NoError(t, err)

	require.NotNil(t, payload.A)
	assert.True(t, dec("12.5").Equal(payload.A.Decimal))
	require.NotNil(t, payload.B)
	assert.True(t, dec("1000").Equal(payload.B.Decimal))
	assert.Nil(t, payload.C)
	assert.Nil(t, payload.D)
	assert.Nil(t, payload.D.Dec())
	assert.True(t, dec("12.5").Equal(*payload.A.Dec()))
}

func TestAmount_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(NewAmount(dec("125")))
	require.NoError(t, err)
	assert.Equal(t, "125.00", string(data))
}
