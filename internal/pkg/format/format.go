package format

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	phoneDigits = 10
	cardDigits  = 19
)

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Phone formats a (possibly partial) US-style number as the user types:
// "12" → "(12", "12345" → "(123) 45", "1234567890" → "(123) 456-7890".
// Digits beyond the tenth are dropped.
func Phone(input string) string {
	d := Digits(input)
	if len(d) > phoneDigits {
		d = d[:phoneDigits]
	}
	switch {
	case len(d) == 0:
		return ""
	case len(d) <= 3:
		return "(" + d
	case len(d) <= 6:
		return "(" + d[:3] + ") " + d[3:]
	default:
		return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
	}
}

// CardNumber groups card digits in blocks of four.
func CardNumber(input string) string {
	d := Digits(input)
	if len(d) > cardDigits {
		d = d[:cardDigits]
	}
	var b strings.Builder
	for i, r := range d {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MaskCard keeps only the last four digits visible.
func MaskCard(input string) string {
	d := Digits(input)
	if len(d) <= 4 {
		return d
	}
	return strings.Repeat("•", 4) + " " + d[len(d)-4:]
}

var printer = message.NewPrinter(language.English)

// Amount renders a money amount with thousands grouping, prefixed by the ISO
// currency code when it is known ("USD 1,234.50").
func Amount(amount float64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return printer.Sprintf("%.2f", amount)
	}
	return printer.Sprintf("%s %.2f", unit.String(), amount)
}
