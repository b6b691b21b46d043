package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_Arithmetic(t *testing.T) {
	t.Run("add and subtract within one currency", func(t *testing.T) {
		a := NewMoneyBRLFromFloat(100.50)
		b := NewMoneyBRLFromFloat(50.25)

		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, "150.75", sum.StringFixed(2))

		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.Equal(t, "50.25", diff.StringFixed(2))
	})

	t.Run("mixed currencies fail", func(t *testing.T) {
		brl := NewMoneyBRLFromFloat(10)
		usd, err := NewMoney(decimal.NewFromInt(10), USD)
		require.NoError(t, err)

		_, err = brl.Add(usd)
		assert.Error(t, err)

		_, err = brl.Subtract(usd)
		assert.Error(t, err)
	})

	t.Run("divide rejects zero", func(t *testing.T) {
		m := NewMoneyBRLFromFloat(10)

		_, err := m.Divide(decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("truncate and round", func(t *testing.T) {
		m, err := NewMoneyBRLFromString("333.3333")
		require.NoError(t, err)

		assert.Equal(t, "333.33", m.Truncate(2).StringFixed(2))
		assert.Equal(t, "333.33", m.Round(2).StringFixed(2))

		m2, err := NewMoneyBRLFromString("0.005")
		require.NoError(t, err)
		assert.Equal(t, "0.01", m2.Round(2).StringFixed(2))
	})

	t.Run("multiply by integer", func(t *testing.T) {
		m := NewMoneyBRLFromFloat(33.33)

		assert.Equal(t, "99.99", m.MultiplyByInt(3).StringFixed(2))
	})
}

func TestMoney_Predicates(t *testing.T) {
	assert.True(t, ZeroBRL().IsZero())
	assert.True(t, NewMoneyBRLFromFloat(1).IsPositive())
	assert.True(t, NewMoneyBRLFromFloat(-1).IsNegative())

	assert.True(t, NewMoneyBRLFromFloat(10).Equals(NewMoneyBRL(decimal.NewFromInt(10))))

	usd, err := NewMoney(decimal.NewFromInt(10), USD)
	require.NoError(t, err)
	assert.False(t, NewMoneyBRLFromFloat(10).Equals(usd))
}

func TestMoney_JSON(t *testing.T) {
	m, err := NewMoneyBRLFromString("1234.56")
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1234.56","currency":"BRL"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_Construction(t *testing.T) {
	t.Run("empty currency fails", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(1), "")
		assert.Error(t, err)
	})

	t.Run("invalid string fails", func(t *testing.T) {
		_, err := NewMoneyBRLFromString("abc")
		assert.Error(t, err)
	})
}
