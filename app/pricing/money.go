package pricing

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var ErrUnsupportedCurrency = errors.New("unsupported currency")

var symbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// Money is an amount in the minor units of its currency.
type Money struct {
	Currency string
	Minor    int64
	Scale    int
}

func (m Money) Float() float64 {
	return float64(m.Minor) / math.Pow10(m.Scale)
}

func (m Money) IsWhole() bool {
	return m.Minor%int64(math.Pow10(m.Scale)) == 0
}

func (m Money) String() string {
	return Format(m)
}

// Format renders an amount with its currency symbol and locale digit grouping.
// Whole amounts drop the fractional part.
func Format(m Money) string {
	p := message.NewPrinter(localeFor(m.Currency))

	var digits string
	if m.IsWhole() {
		digits = p.Sprintf("%d", m.Minor/int64(math.Pow10(m.Scale)))
	} else {
		digits = p.Sprint(number.Decimal(m.Float(), number.Scale(m.Scale)))
	}

	if symbol, ok := symbols[m.Currency]; ok {
		return symbol + digits
	}
	return m.Currency + " " + digits
}

func localeFor(code string) language.Tag {
	if code == "INR" {
		return language.MustParse("en-IN")
	}
	return language.English
}

// Converter turns whole base-currency prices into display currencies.
type Converter struct {
	base  currency.Unit
	rates map[string]float64
}

func NewConverter(base string, rates map[string]float64) (*Converter, error) {
	unit, err := currency.ParseISO(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, base)
	}

	normalized := make(map[string]float64, len(rates)+1)
	for code, rate := range rates {
		u, err := currency.ParseISO(strings.TrimSpace(code))
		if err != nil || rate <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
		}
		normalized[u.String()] = rate
	}
	normalized[unit.String()] = 1

	return &Converter{base: unit, rates: normalized}, nil
}

func (c *Converter) Base() string {
	return c.base.String()
}

// Supported lists the display currencies with the base currency first.
func (c *Converter) Supported() []string {
	codes := make([]string, 0, len(c.rates))
	for code := range c.rates {
		if code != c.base.String() {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return append([]string{c.base.String()}, codes...)
}

// Resolve normalizes a requested currency code, defaulting to the base currency.
func (c *Converter) Resolve(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return c.base.String(), nil
	}
	if _, ok := c.rates[code]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	return code, nil
}

// Convert converts a whole base-currency amount into the target currency.
func (c *Converter) Convert(amount int64, code string) (Money, error) {
	resolved, err := c.Resolve(code)
	if err != nil {
		return Money{}, err
	}
	unit := currency.MustParseISO(resolved)
	scale, _ := currency.Standard.Rounding(unit)

	rate := c.rates[resolved]
	minor := int64(math.Round(float64(amount) * rate * math.Pow10(scale)))
	return Money{Currency: resolved, Minor: minor, Scale: scale}, nil
}

// BaseMinor returns a whole base-currency amount in base minor units (paise for INR).
func (c *Converter) BaseMinor(amount int64) int64 {
	scale, _ := currency.Standard.Rounding(c.base)
	return amount * int64(math.Pow10(scale))
}
