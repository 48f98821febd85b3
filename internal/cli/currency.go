package cli

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency formats amounts for one ISO 4217 code.
type Currency struct {
	Code    string
	unit    currency.Unit
	known   bool
	printer *message.Printer
}

// symbolOverrides replaces x/text narrow symbols that read ambiguously in a
// mixed-currency listing.
var symbolOverrides = map[string]string{
	"CNY": "¥",
	"JPY": "JP¥",
	"HKD": "HK$",
	"SGD": "S$",
	"KRW": "₩",
}

// prefixCurrencies place their symbol before the amount.
var prefixCurrencies = map[string]bool{
	"USD": true, "GBP": true, "EUR": true, "CNY": true, "JPY": true,
	"HKD": true, "SGD": true, "KRW": true, "CAD": true, "AUD": true,
}

// GetCurrency returns the formatter for code. Codes x/text does not know
// are printed with the code itself as the symbol.
func GetCurrency(code string) Currency {
	code = strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(code)
	return Currency{
		Code:    code,
		unit:    unit,
		known:   err == nil,
		printer: message.NewPrinter(language.English),
	}
}

// Symbol returns the display symbol for the currency.
func (c Currency) Symbol() string {
	if sym, ok := symbolOverrides[c.Code]; ok {
		return sym
	}
	if !c.known {
		return c.Code
	}
	return c.printer.Sprint(currency.NarrowSymbol(c.unit))
}

// Format renders amount with two decimals and grouping separators.
func (c Currency) Format(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	formatted := c.printer.Sprint(number.Decimal(amount,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))

	var out string
	if c.known && prefixCurrencies[c.Code] {
		out = c.Symbol() + formatted
	} else {
		out = formatted + " " + c.Symbol()
	}
	if neg {
		return "-" + out
	}
	return out
}

// FormatMoney is shorthand for GetCurrency(code).Format(amount).
func FormatMoney(amount float64, code string) string {
	return GetCurrency(code).Format(amount)
}
