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

package reconcile

import (
	"golang.org/x/exp/slices"

	ledger "github.com/westbury/jmoney-sub007"
)

// ItemRecord is a scraped item, already parsed.
type ItemRecord struct {
	Description string
	Quantity    int // 0 if the page did not say
	UnitPrice   int64
	ExternalID  string
}

// MatchContext carries the shipment of one scraped shipment record between Match calls. Leave Shipment
// nil to have the first matched (or created) item fill it in.
type MatchContext struct {
	Shipment *Shipment
}

// Matcher pairs scraped item records with the items an order already has. Each existing item is matched
// at most once.
//
// Candidates are first filtered by unit price. Several price matches are narrowed by description, a
// single price match is taken as is. With no price match at all the item is found by description and
// the sign of the price instead, and its price is refreshed from the record. Anything but exactly one
// survivor is an Inconsistent error.
//
// If the order had no items when the Matcher was made every record creates a new item instead.
//
// An external item number (ASIN, ISBN) always resolves to one shipment for the life of a Matcher. A
// record whose number already turned up in another shipment is an Inconsistent error, as is an item
// found outside the shipment its MatchContext settled on.
type Matcher struct {
	order      *Order
	shipment   *Shipment // nil if the shipment is inferred
	candidates []*Item
	fresh      bool
	external   map[string]*Shipment
}

// NewShipmentMatcher matches against the items of a single shipment. New items go to that shipment.
func NewShipmentMatcher(s *Shipment) *Matcher {
	return &Matcher{
		order:      s.order,
		shipment:   s,
		candidates: slices.Clone(s.items),
		fresh:      len(s.items) == 0,
		external:   map[string]*Shipment{},
	}
}

// NewOrderMatcher matches against every item of the order. The shipment of each record is inferred from
// its items, new items go to the context's shipment or a new one.
func NewOrderMatcher(o *Order) *Matcher {
	items := o.Items()
	return &Matcher{
		order:      o,
		candidates: items,
		fresh:      len(items) == 0,
		external:   map[string]*Shipment{},
	}
}

// Match returns the item for rec. ctx may be nil if records do not need to stay together.
func (m *Matcher) Match(rec ItemRecord, ctx *MatchContext) (*Item, error) {
	if ctx == nil {
		ctx = &MatchContext{}
	}

	if m.fresh {
		target := m.shipment
		if target == nil {
			target = ctx.Shipment
		}

		if err := m.checkExternal(rec, target); err != nil {
			return nil, err
		}
		it := m.order.CreateItem(rec.Description, rec.Quantity, rec.UnitPrice, target)
		if rec.ExternalID != "" {
			it.u.SetExternalID(rec.ExternalID)
		}
		if ctx.Shipment == nil {
			ctx.Shipment = it.shipment
		}
		m.noteExternal(rec, it.shipment)
		return it, nil
	}

	if len(m.candidates) == 0 {
		return nil, m.fail("item %q (%v) is not among the previously imported items", rec.Description, ledger.FormatValue(rec.UnitPrice))
	}

	it, refresh, err := m.pick(rec)
	if err != nil {
		return nil, err
	}

	switch {
	case ctx.Shipment == nil:
		ctx.Shipment = it.shipment
	case ctx.Shipment != it.shipment:
		return nil, m.fail("item %q was found in shipment %v but its shipment record belongs to shipment %v",
			rec.Description, it.shipment.ID(), ctx.Shipment.ID())
	}
	if err := m.checkExternal(rec, it.shipment); err != nil {
		return nil, err
	}

	m.remove(it)
	m.noteExternal(rec, it.shipment)
	if refresh {
		it.SetUnitPrice(rec.UnitPrice)
	}
	return it, nil
}

func (m *Matcher) pick(rec ItemRecord) (*Item, bool, error) {
	byPrice := filter(m.candidates, func(it *Item) bool {
		return it.UnitPrice() == rec.UnitPrice
	})

	switch len(byPrice) {
	case 1:
		return byPrice[0], false, nil
	case 0:
		byDesc := filter(m.candidates, func(it *Item) bool {
			return it.Description() == rec.Description && (it.UnitPrice() < 0) == (rec.UnitPrice < 0)
		})
		if len(byDesc) == 1 {
			return byDesc[0], true, nil
		}
		if len(byDesc) == 0 {
			return nil, false, m.fail("no previously imported item matches %q at %v", rec.Description, ledger.FormatValue(rec.UnitPrice))
		}
		return nil, false, m.fail("%d previously imported items are described as %q", len(byDesc), rec.Description)
	}

	byDesc := filter(byPrice, func(it *Item) bool {
		return it.Description() == rec.Description
	})
	if len(byDesc) == 1 {
		return byDesc[0], false, nil
	}
	return nil, false, m.fail("cannot tell apart %d previously imported items priced %v for %q",
		len(byPrice), ledger.FormatValue(rec.UnitPrice), rec.Description)
}

// checkExternal fails if rec's external number was already seen in a shipment other than s. A nil s is
// a shipment yet to be created and so differs from any seen before.
func (m *Matcher) checkExternal(rec ItemRecord, s *Shipment) error {
	if rec.ExternalID == "" {
		return nil
	}
	if prev, ok := m.external[rec.ExternalID]; ok && prev != s {
		return m.fail("item %v turns up in shipment %v and in another shipment", rec.ExternalID, prev.ID())
	}
	return nil
}

func (m *Matcher) noteExternal(rec ItemRecord, s *Shipment) {
	if rec.ExternalID != "" {
		m.external[rec.ExternalID] = s
	}
}

func (m *Matcher) remove(it *Item) {
	if i := slices.Index(m.candidates, it); i >= 0 {
		m.candidates = slices.Delete(m.candidates, i, i+1)
	}
}

func (m *Matcher) fail(format string, a ...any) error {
	return Errorf(Inconsistent, m.order.Number(), format, a...)
}

// IsExhausted returns true once every pre-existing item has been matched.
func (m *Matcher) IsExhausted() bool {
	return len(m.candidates) == 0
}

// Remaining returns the pre-existing items not matched so far.
func (m *Matcher) Remaining() []*Item {
	return slices.Clone(m.candidates)
}

func filter(items []*Item, keep func(*Item) bool) []*Item {
	out := []*Item{}
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
