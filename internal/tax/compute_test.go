package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestExtractIncludedScenario(t *testing.T) {
	res := ExtractIncluded(dec("121.00"), dec("0.21"))
	requireAmount(t, "21.00", res.TaxTotal)
	requireAmount(t, "100.00", res.PriceExcludingTax)
	requireAmount(t, "0.21", res.TaxRate)
}

func TestExtractIncludedSumsBackToPrice(t *testing.T) {
	rates := []string{"0", "0.05", "0.07", "0.1", "0.11", "0.19", "0.21", "0.2475"}
	prices := []string{"0", "0.01", "0.99", "1.00", "9.99", "33.33", "121.00", "999.95", "12345.67"}
	for _, r := range rates {
		for _, p := range prices {
			res := ExtractIncluded(dec(p), dec(r))
			requireAmount(t, p, res.PriceExcludingTax.Add(res.TaxTotal))
			require.True(t, res.TaxTotal.Equal(res.TaxTotal.Round(2)))
		}
	}
}

func TestAddTaxRoundTrip(t *testing.T) {
	for _, r := range []string{"0", "0.06", "0.1", "0.21"} {
		for _, net := range []string{"1.00", "10.00", "19.99", "100.00", "250.50"} {
			gross := AddTax(dec(net), dec(r))
			res := ExtractIncluded(gross, dec(r))
			requireAmount(t, gross.String(), res.PriceExcludingTax.Add(res.TaxTotal))
		}
	}
	requireAmount(t, "121.00", AddTax(dec("100"), dec("0.21")))
}

func TestComputeBreakdownSumsToTotal(t *testing.T) {
	zone := &Zone{Code: "EU-NL", Rate: dec("0.21"), TaxShipping: true}
	res := Compute(zone, dec("10.05"), dec("4.95"))

	requireAmount(t, "3.15", res.TaxTotal)
	require.Len(t, res.Breakdown, 2)
	require.Equal(t, ComponentSubtotal, res.Breakdown[0].Name)
	requireAmount(t, "2.11", res.Breakdown[0].TaxAmount)
	require.Equal(t, ComponentShipping, res.Breakdown[1].Name)
	requireAmount(t, "1.04", res.Breakdown[1].TaxAmount)
	requireAmount(t, "4.95", res.Breakdown[1].TaxableAmount)
}

func TestComputeExcludesShippingWhenZoneSaysSo(t *testing.T) {
	zone := &Zone{Code: "US-OR", Rate: dec("0.10"), TaxShipping: false}
	res := Compute(zone, dec("50.00"), dec("10.00"))
	requireAmount(t, "5.00", res.TaxTotal)
	require.Len(t, res.Breakdown, 1)
}

func TestComputeWithoutZone(t *testing.T) {
	res := Compute(nil, dec("50.00"), dec("10.00"))
	require.Nil(t, res.Zone)
	require.True(t, res.TaxTotal.IsZero())
	require.True(t, res.TaxRate.IsZero())
	require.Empty(t, res.Breakdown)
}
