/*
Copyright 2024 by Milo Christiansen

This software is provided 'as-is', without any express or implied warranty. In
no event will the authors be held liable for any damages arising from the use of
this software.

Permission is granted to anyone to use this software for any purpose, including
commercial applications, and to alter it and redistribute it freely, subject to
the following restrictions:

1. The origin of this software must not be misrepresented; you must not claim
that you wrote the original software. If you use this software in a product, an
acknowledgment in the product documentation would be appreciated but is not
required.

2. Altered source versions must be plainly marked as such, and must not be
misrepresented as being the original software.

3. This notice may not be removed or altered from any source distribution.
*/

/*
Package market knows the marketplaces orders are scraped from and how each one writes money, dates, and
quantities.

Everything here works on the text the field extractor produced. Amounts come back as integer minor units
(cents, pence), dates as plain calendar dates in UTC.
*/
package market

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	ledger "github.com/westbury/jmoney-sub007"
)

// Marketplace describes one store front.
type Marketplace struct {
	Name string

	// Flat marketplaces have no shipment concept, every item of an order belongs to the one (implied)
	// shipment.
	Flat bool

	// Sources lists the scrape sources this marketplace offers, in the order they are normally imported.
	Sources []string

	// Currencies are the prefixes amounts may carry. The empty prefix is always allowed.
	Currencies []string

	// DateLayouts are tried in order, see time.Parse.
	DateLayouts []string
}

// Predefined marketplaces.
var (
	Amazon = &Marketplace{
		Name:       "Amazon",
		Sources:    []string{"listing", "detail", "payment"},
		Currencies: []string{"$", "US$", "USD"},
		DateLayouts: []string{
			"January 2, 2006",
			"Jan 2, 2006",
			"Monday, January 2, 2006",
			"01/02/2006",
			"2006-01-02",
		},
	}

	AmazonUK = &Marketplace{
		Name:       "AmazonUK",
		Sources:    []string{"listing", "detail"},
		Currencies: []string{"£", "GBP"},
		DateLayouts: []string{
			"2 January 2006",
			"2 Jan 2006",
			"Monday, 2 January 2006",
			"02/01/2006",
			"2006-01-02",
		},
	}

	EBay = &Marketplace{
		Name:       "EBay",
		Flat:       true,
		Sources:    []string{"listing", "detail"},
		Currencies: []string{"US $", "US$", "$", "USD"},
		DateLayouts: []string{
			"Jan 02, 2006",
			"Jan 2, 2006",
			"2 Jan 2006",
			"January 2, 2006",
			"2006-01-02",
		},
	}
)

var byName = map[string]*Marketplace{
	"amazon":       Amazon,
	"amazon.com":   Amazon,
	"amazonuk":     AmazonUK,
	"amazon.co.uk": AmazonUK,
	"ebay":         EBay,
	"ebay.com":     EBay,
}

// Lookup finds a marketplace by name. Names are not case sensitive.
func Lookup(name string) (*Marketplace, error) {
	m, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrUnknownMarketplace(name)
	}
	return m, nil
}

// Reaches returns true if the marketplace offers the named scrape source.
func (m *Marketplace) Reaches(source string) bool {
	for _, s := range m.Sources {
		if s == source {
			return true
		}
	}
	return false
}

// Digits may be grouped in threes with commas, but then every group must be complete.
var amountDigits = regexp.MustCompile(`^(\d{1,3}(,\d{3})+(\.\d*)?|\d+(\.\d*)?|\.\d+)$`)

// ParseAmount converts a scraped amount such as "$1,234.50", "-£3.99", or "(US $12.00)" into minor units.
func (m *Marketplace) ParseAmount(s string) (int64, error) {
	text := strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		neg = true
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	if strings.HasPrefix(text, "-") {
		neg = !neg
		text = strings.TrimSpace(text[1:])
	}
	if text == "" {
		return 0, ErrBadAmount(s)
	}

	if c := text[0]; (c < '0' || c > '9') && c != '.' {
		prefix := m.currency(text)
		if prefix == "" {
			return 0, ErrUnknownCurrency(s)
		}
		text = strings.TrimSpace(text[len(prefix):])
		if strings.HasPrefix(text, "-") {
			neg = !neg
			text = strings.TrimSpace(text[1:])
		}
	}

	if !amountDigits.MatchString(text) {
		return 0, ErrBadAmount(s)
	}
	v, err := ledger.ParseValue(strings.ReplaceAll(text, ",", ""))
	if err != nil {
		return 0, ErrBadAmount(s)
	}
	if neg {
		v = -v
	}
	return v, nil
}

// currency returns the longest known currency prefix of text.
func (m *Marketplace) currency(text string) string {
	prefixes := append([]string(nil), m.Currencies...)
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })
	for _, p := range prefixes {
		if strings.HasPrefix(text, p) {
			return p
		}
	}
	return ""
}

// ParseDate parses a scraped date using the marketplace's layouts. Runs of white space are treated as a
// single space.
func (m *Marketplace) ParseDate(s string) (time.Time, error) {
	text := strings.Join(strings.Fields(s), " ")
	for _, layout := range m.DateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrBadDate(s)
}

// ParseQuantity parses a quantity field. Quantities must be whole and at least one.
func ParseQuantity(s string) (int, error) {
	q, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || q < 1 {
		return 0, ErrBadQuantity(s)
	}
	return q, nil
}

var quantityPattern = regexp.MustCompile(`(?i)\b(?:qty|quantity)\s*:?\s*(\d+)`)

// ExtractQuantity finds a "Qty 3" or "Quantity: 3" note in free item detail text. It returns the quantity
// (0 if there was none) and the text with the note removed.
func ExtractQuantity(text string) (int, string, error) {
	loc := quantityPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return 0, text, nil
	}

	q, err := ParseQuantity(text[loc[2]:loc[3]])
	if err != nil {
		return 0, text, err
	}

	stripped := text[:loc[0]] + " " + text[loc[1]:]
	stripped = strings.Join(strings.Fields(stripped), " ")
	return q, strings.Trim(stripped, " ,;|"), nil
}

var sellerPattern = regexp.MustCompile(`(?im)^\s*sold by\s*:?\s*(.+?)\s*$`)

// ExtractSeller returns the seller named by a "Sold by: X" line in item detail text, or "".
func ExtractSeller(detail string) string {
	m := sellerPattern.FindStringSubmatch(detail)
	if m == nil {
		return ""
	}
	return m[1]
}

var moviePattern = regexp.MustCompile(`(?i)\b(dvd|blu-?ray|prime video|4k uhd)\b`)

// IsMovie guesses from an item description whether the item is a film.
func IsMovie(description string) bool {
	return moviePattern.MatchString(description)
}

// Error types

// ErrUnknownMarketplace is returned by Lookup for names it does not know.
type ErrUnknownMarketplace string

func (err ErrUnknownMarketplace) Error() string {
	return fmt.Sprintf("Unknown marketplace: %q", string(err))
}

// ErrUnknownCurrency is returned by ParseAmount when an amount has a currency prefix the marketplace does not use.
type ErrUnknownCurrency string

func (err ErrUnknownCurrency) Error() string {
	return fmt.Sprintf("Unrecognised currency in amount: %q", string(err))
}

// ErrBadAmount is returned by ParseAmount when the number part of an amount is malformed.
type ErrBadAmount string

func (err ErrBadAmount) Error() string {
	return fmt.Sprintf("Malformed amount: %q", string(err))
}

// ErrBadDate is returned by ParseDate when no layout matches.
type ErrBadDate string

func (err ErrBadDate) Error() string {
	return fmt.Sprintf("Malformed date: %q", string(err))
}

// ErrBadQuantity is returned when a quantity is not a positive whole number.
type ErrBadQuantity string

func (err ErrBadQuantity) Error() string {
	return fmt.Sprintf("Unsupported quantity: %q", string(err))
}
