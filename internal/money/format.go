// Package money renders and parses prices in a locale currency format.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter formats amounts for one language and currency.
// Safe for concurrent use once constructed.
type Formatter struct {
	tag     language.Tag
	unit    currency.Unit
	symbol  string
	scale   int
	verb    string
	decimal string
	group   string
	printer *message.Printer
}

// New builds a Formatter. lang is a BCP 47 tag ("pt-BR"), code an ISO 4217
// currency ("BRL"). An empty symbol renders the ISO code instead.
func New(lang, code, symbol string) (*Formatter, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("parse language %q: %w", lang, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", code, err)
	}
	if symbol == "" {
		symbol = unit.String()
	}

	scale, _ := currency.Standard.Rounding(unit)
	f := &Formatter{
		tag:     tag,
		unit:    unit,
		symbol:  symbol,
		scale:   scale,
		verb:    fmt.Sprintf("%%.%df", scale),
		printer: message.NewPrinter(tag),
	}
	f.decimal, f.group = f.separators()
	return f, nil
}

// MustNew is New for package-level defaults; it panics on bad input.
func MustNew(lang, code, symbol string) *Formatter {
	f, err := New(lang, code, symbol)
	if err != nil {
		panic(err)
	}
	return f
}

// BRL formats Brazilian reais.
func BRL() *Formatter {
	return MustNew("pt-BR", "BRL", "R$")
}

// separators discovers the locale's decimal and grouping marks by
// formatting a known number.
func (f *Formatter) separators() (dec, group string) {
	probe := f.printer.Sprintf("%.1f", 1234.5)
	one := strings.Index(probe, "1")
	two := strings.Index(probe, "2")
	four := strings.Index(probe, "4")
	five := strings.LastIndex(probe, "5")
	if one < 0 || two <= one || four < 0 || five <= four {
		return ".", ""
	}
	return probe[four+1 : five], probe[one+1 : two]
}

// Scale is the number of minor-unit digits rendered.
func (f *Formatter) Scale() int { return f.scale }

// Currency returns the ISO code.
func (f *Formatter) Currency() string { return f.unit.String() }

// Language returns the BCP 47 tag.
func (f *Formatter) Language() string { return f.tag.String() }

// Format renders amount as "<symbol> <number>", with a leading minus for
// negative amounts.
func (f *Formatter) Format(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(int32(f.scale))
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	v, _ := d.Float64()
	return sign + f.symbol + " " + f.printer.Sprintf(f.verb, v)
}

// Parse reverses Format.
func (f *Formatter) Parse(s string) (float64, error) {
	raw := strings.TrimSpace(s)
	neg := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, f.symbol)
	raw = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' || r == '\u202f' {
			return -1
		}
		return r
	}, raw)
	if f.group != "" {
		raw = strings.ReplaceAll(raw, f.group, "")
	}
	if f.decimal != "." {
		raw = strings.ReplaceAll(raw, f.decimal, ".")
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	v, _ := d.Float64()
	return v, nil
}
