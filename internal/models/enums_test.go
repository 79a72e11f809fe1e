package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExchangeRateSource(t *testing.T) {
	cases := []struct {
		raw  string
		want ExchangeRateSource
		ok   bool
	}{
		{raw: "Letao", want: ExchangeRateSourceLetao, ok: true},
		{raw: "letao", want: ExchangeRateSourceLetao, ok: true},
		{raw: " BIBIAN ", want: ExchangeRateSourceBibian, ok: true},
		{raw: "2", want: ExchangeRateSourceBibian, ok: true},
		{raw: "9", ok: false},
		{raw: "rakuten", ok: false},
		{raw: "", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseExchangeRateSource(tc.raw)
			if !tc.ok {
				assert.ErrorIs(t, err, ErrUnknownEnumValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExchangeRateSourceCodec(t *testing.T) {
	payload, err := json.Marshal(map[string]ExchangeRateSource{"source": ExchangeRateSourceBibian})
	require.NoError(t, err)
	assert.JSONEq(t, `{"source":"Bibian"}`, string(payload))

	var decoded struct {
		Source ExchangeRateSource `json:"source"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"source":"letao"}`), &decoded))
	assert.Equal(t, ExchangeRateSourceLetao, decoded.Source)

	var scanned ExchangeRateSource
	require.NoError(t, scanned.Scan([]byte("Bibian")))
	assert.Equal(t, ExchangeRateSourceBibian, scanned)
	require.NoError(t, scanned.Scan(int64(1)))
	assert.Equal(t, ExchangeRateSourceLetao, scanned)
}

func TestOrderStatusCodec(t *testing.T) {
	status, err := ParseOrderStatus("已出貨")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, status)

	status, err = ParseOrderStatus("6")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCanceled, status)

	_, err = ParseOrderStatus("7")
	assert.ErrorIs(t, err, ErrUnknownEnumValue)

	payload, err := json.Marshal(OrderStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, `"已付款"`, string(payload))

	var decoded OrderStatus
	require.NoError(t, json.Unmarshal([]byte(`3`), &decoded))
	assert.Equal(t, OrderStatusProcessing, decoded)
	require.NoError(t, json.Unmarshal([]byte(`"已完成"`), &decoded))
	assert.Equal(t, OrderStatusCompleted, decoded)

	value, err := OrderStatusPendingPayment.Value()
	require.NoError(t, err)
	assert.Equal(t, "待付款", value)

	var scanned OrderStatus
	require.NoError(t, scanned.Scan("處理中"))
	assert.Equal(t, OrderStatusProcessing, scanned)
}

func TestStringArrayScan(t *testing.T) {
	var arr StringArray
	require.NoError(t, arr.Scan(`["a.jpg","b.jpg"]`))
	assert.Equal(t, StringArray{"a.jpg", "b.jpg"}, arr)
	assert.Equal(t, "a.jpg", arr.First())

	require.NoError(t, arr.Scan([]byte(`["c.jpg"]`)))
	assert.Equal(t, StringArray{"c.jpg"}, arr)

	require.NoError(t, arr.Scan(nil))
	assert.Empty(t, arr)
	assert.Equal(t, "", arr.First())

	value, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", value)
}

func TestMoneyJSON(t *testing.T) {
	m := NewMoneyFromDecimal(decimal.RequireFromString("12.5"))
	payload, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"12.50"`, string(payload))

	var decoded Money
	require.NoError(t, json.Unmarshal([]byte(`100`), &decoded))
	assert.Equal(t, "100.00", decoded.String())
	require.NoError(t, json.Unmarshal([]byte(`"3.456"`), &decoded))
	assert.Equal(t, "3.46", decoded.String())
}
