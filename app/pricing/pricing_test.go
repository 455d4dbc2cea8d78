package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
)

func testPlan() *entity.Plan {
	return &entity.Plan{ID: entity.PlanPro, Name: "Pro", Price: 1999, YearlyPrice: 19190}
}

func testConverter(t *testing.T) *Converter {
	t.Helper()
	c, err := NewConverter("INR", map[string]float64{"usd": 0.012, "EUR": 0.011})
	require.NoError(t, err)
	return c
}

func TestFormatWholeAmount(t *testing.T) {
	require.Equal(t, "₹999", Format(Money{Currency: "INR", Minor: 99900, Scale: 2}))
	require.Equal(t, "₹1,499", Format(Money{Currency: "INR", Minor: 149900, Scale: 2}))
	require.Equal(t, "$12", Format(Money{Currency: "USD", Minor: 1200, Scale: 2}))
}

func TestFormatFractionalAmount(t *testing.T) {
	require.Equal(t, "$11.99", Format(Money{Currency: "USD", Minor: 1199, Scale: 2}))
}

func TestFormatUnknownSymbolUsesCode(t *testing.T) {
	require.Equal(t, "AED 44", Format(Money{Currency: "AED", Minor: 4400, Scale: 2}))
}

func TestConverterSupportedListsBaseFirst(t *testing.T) {
	c := testConverter(t)
	require.Equal(t, []string{"INR", "EUR", "USD"}, c.Supported())
}

func TestConverterResolve(t *testing.T) {
	c := testConverter(t)

	code, err := c.Resolve("")
	require.NoError(t, err)
	require.Equal(t, "INR", code)

	code, err = c.Resolve(" usd ")
	require.NoError(t, err)
	require.Equal(t, "USD", code)

	_, err = c.Resolve("GBP")
	require.ErrorIs(t, err, ErrUnsupportedCurrency)
}

func TestConvert(t *testing.T) {
	c := testConverter(t)

	m, err := c.Convert(1000, "USD")
	require.NoError(t, err)
	require.Equal(t, Money{Currency: "USD", Minor: 1200, Scale: 2}, m)

	m, err = c.Convert(999, "INR")
	require.NoError(t, err)
	require.Equal(t, int64(99900), m.Minor)
}

func TestNewConverterRejectsBadRates(t *testing.T) {
	_, err := NewConverter("INR", map[string]float64{"USD": 0})
	require.ErrorIs(t, err, ErrUnsupportedCurrency)

	_, err = NewConverter("NOPE", nil)
	require.ErrorIs(t, err, ErrUnsupportedCurrency)
}

func TestQuoteMonthly(t *testing.T) {
	c := testConverter(t)
	q, err := c.Quote(testPlan(), "", "")
	require.NoError(t, err)

	require.Equal(t, entity.BillingCycleMonthly, q.Cycle)
	require.Equal(t, "₹1,999", Format(q.PerMonth))
	require.Equal(t, "₹1,999", Format(q.Billed))
	require.Equal(t, int64(0), q.Savings.Minor)
	require.Equal(t, int64(199900), q.ChargeMinor)
	require.Equal(t, "INR", q.ChargeCurrency)
}

func TestQuoteYearly(t *testing.T) {
	c := testConverter(t)
	q, err := c.Quote(testPlan(), "yearly", "INR")
	require.NoError(t, err)

	// 19190 / 12 = 1599.17 rounds to 1599.
	require.Equal(t, int64(159900), q.PerMonth.Minor)
	require.Equal(t, int64(1919000), q.Billed.Minor)
	require.Equal(t, int64(479800), q.Savings.Minor)
	require.Equal(t, int64(1919000), q.ChargeMinor)
}

func TestQuoteDisplayCurrencyDoesNotChangeCharge(t *testing.T) {
	c := testConverter(t)
	q, err := c.Quote(testPlan(), "monthly", "USD")
	require.NoError(t, err)

	require.Equal(t, "USD", q.Currency)
	require.Equal(t, int64(2399), q.PerMonth.Minor)
	require.Equal(t, int64(199900), q.ChargeMinor)
	require.Equal(t, "INR", q.ChargeCurrency)
}

func TestQuoteRejectsInvalidCycle(t *testing.T) {
	c := testConverter(t)
	_, err := c.Quote(testPlan(), "weekly", "INR")
	require.ErrorIs(t, err, ErrInvalidCycle)
}
