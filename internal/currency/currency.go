// Package currency converts reference-currency (USD) amounts for display and
// holds the per-session currency preference.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency is a supported display currency.
type Currency string

const (
	USD Currency = "USD"
	AED Currency = "AED"
)

// Reference is the currency every price is stored in.
const Reference = USD

var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Units of each currency per one USD. Fixed, no live rates.
var rates = map[Currency]decimal.Decimal{
	USD: decimal.NewFromInt(1),
	AED: decimal.RequireFromString("3.6725"),
}

var printer = message.NewPrinter(language.English)

// ParseCurrency accepts a case-insensitive currency code.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := rates[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
	return c, nil
}

// Supported lists the currencies in display order.
func Supported() []Currency {
	return []Currency{USD, AED}
}

func (c Currency) String() string {
	return string(c)
}

// Rate returns the units of c per one USD.
func (c Currency) Rate() decimal.Decimal {
	return rates[c]
}

// Convert moves amount from one currency to another through USD. Negative
// amounts are converted as-is.
func Convert(amount decimal.Decimal, from, to Currency) decimal.Decimal {
	inUSD := amount
	if from != USD {
		inUSD = amount.Div(from.Rate())
	}
	return inUSD.Mul(to.Rate())
}

// Format converts a USD amount into c and renders it with no fractional
// digits, e.g. "AED 367" or "USD 1,200".
func Format(amount decimal.Decimal, c Currency) string {
	converted := Convert(amount, Reference, c).Round(0)
	return fmt.Sprintf("%s %s", c, printer.Sprintf("%d", converted.IntPart()))
}
