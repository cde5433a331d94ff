package tax_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/shopcore/internal/tax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoTaxCalculator_CalculateTax_ReturnsZeroTax(t *testing.T) {
	calc := tax.NewNoTaxCalculator()

	result, err := calc.CalculateTax(context.Background(), tax.TaxParams{LineItems: lineItems("199.99", "24.99")})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.TotalTax.IsZero(), "NoTaxCalculator should always return zero tax")
	assert.Empty(t, result.Breakdown, "NoTaxCalculator should return empty breakdown")
}

func TestMockCalculator(t *testing.T) {
	t.Run("default returns zero", func(t *testing.T) {
		m := tax.NewMockCalculator()
		result, err := m.CalculateTax(context.Background(), tax.TaxParams{})
		require.NoError(t, err)
		assert.True(t, result.TotalTax.IsZero())
		assert.Equal(t, 1, m.Calls)
	})

	t.Run("delegates to func", func(t *testing.T) {
		m := tax.NewMockCalculator()
		m.CalculateTaxFunc = func(ctx context.Context, params tax.TaxParams) (*tax.TaxResult, error) {
			return nil, tax.ErrCalculationFailed
		}
		_, err := m.CalculateTax(context.Background(), tax.TaxParams{})
		assert.True(t, errors.Is(err, tax.ErrCalculationFailed))
	})
}
