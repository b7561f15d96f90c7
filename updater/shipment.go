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

package updater

import (
	"fmt"
	"time"

	ledger "github.com/westbury/jmoney-sub007"
	"github.com/westbury/jmoney-sub007/reconcile"
)

// Shipment fields kept on the charge posting.
const (
	MetaLastFour  = "LastFour"
	MetaOrdered   = "Ordered"
	MetaExpected  = "Expected"
	MetaDelivered = "Delivered"
	MetaReturned  = "Returned"
	MetaExchanged = "Exchanged"
	MetaOverseas  = "Overseas"
	MetaCarrier   = "Carrier"
	MetaTracking  = "Tracking"
	MetaService   = "Service"
)

// adjustments in posting order, with the sign of the posting value
var adjustments = []struct {
	kind string
	sign int64
}{
	{KindPostage, 1},
	{KindImportFees, 1},
	{KindGiftcard, -1},
	{KindPromotion, -1},
}

// Shipment is a reconcile.ShipmentUpdater over the postings of one shipment.
type Shipment struct {
	order *Order
	id    string
	items []*Item

	amounts   map[string]int64          // adjustment amounts by kind, all positive
	templates map[string]ledger.Posting // adjustment postings as loaded, for their account and note

	charge    ledger.Posting
	hasCharge bool
}

func newShipment(o *Order, id string) *Shipment {
	return &Shipment{
		order:     o,
		id:        id,
		amounts:   map[string]int64{},
		templates: map[string]ledger.Posting{},
		charge: ledger.Posting{
			Account: o.book.accounts.Charge,
			Meta:    map[string]string{},
		},
	}
}

func (s *Shipment) decode(kind string, p ledger.Posting) error {
	if p.Null && kind != KindCharge {
		return fmt.Errorf("shipment %v: %v posting on %v has no amount", s.id, kind, p.Account)
	}

	switch kind {
	case KindItem:
		if p.Meta == nil {
			p.Meta = map[string]string{}
		}
		s.items = append(s.items, &Item{ship: s, post: p})
		return nil
	case KindCharge:
		if p.Meta == nil {
			p.Meta = map[string]string{}
		}
		s.charge = p
		s.hasCharge = !p.Null && p.Status != ledger.StatusPending
		return nil
	}

	for _, adj := range adjustments {
		if adj.kind == kind {
			s.amounts[kind] += adj.sign * p.Value
			s.templates[kind] = p
			return nil
		}
	}
	return fmt.Errorf("shipment %v: unknown posting kind %q", s.id, kind)
}

func (s *Shipment) encode() []ledger.Posting {
	posts := []ledger.Posting{}
	sum := int64(0)
	add := func(kind string, p ledger.Posting) {
		if p.Meta == nil {
			p.Meta = map[string]string{}
		}
		p.Meta[MetaShipment] = s.id
		p.Meta[MetaKind] = kind
		sum += p.Value
		posts = append(posts, p)
	}

	for _, it := range s.items {
		add(KindItem, *it.post.CleanCopy())
	}

	for _, adj := range adjustments {
		v := s.amounts[adj.kind]
		if v == 0 {
			continue
		}

		p, ok := s.templates[adj.kind]
		if ok {
			p = *p.CleanCopy()
		} else {
			p = ledger.Posting{Account: s.account(adj.kind)}
		}
		p.Value, p.Null = adj.sign*v, false
		add(adj.kind, p)
	}

	charge := *s.charge.CleanCopy()
	charge.Null = false
	if s.hasCharge {
		if charge.Status == ledger.StatusPending {
			charge.Status = ledger.StatusUndefined
		}
		charge.Value = s.charge.Value
	} else {
		charge.Status = ledger.StatusPending
		charge.Value = -sum
	}
	add(KindCharge, charge)
	return posts
}

func (s *Shipment) account(kind string) string {
	a := s.order.book.accounts
	switch kind {
	case KindPostage:
		return a.Postage
	case KindImportFees:
		return a.ImportFees
	case KindGiftcard:
		return a.Giftcard
	case KindPromotion:
		return a.Promotion
	}
	return a.Default
}

func (s *Shipment) ID() string {
	return s.id
}

func (s *Shipment) Items() []reconcile.ItemUpdater {
	out := make([]reconcile.ItemUpdater, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	return out
}

// CreateItem adds an item on the default account. The account is settled once the item has a
// marketplace description.
func (s *Shipment) CreateItem(amount int64) reconcile.ItemUpdater {
	it := &Item{
		ship: s,
		post: ledger.Posting{
			Account: s.order.book.accounts.Default,
			Value:   amount,
			Meta:    map[string]string{},
		},
	}
	s.items = append(s.items, it)
	return it
}

func (s *Shipment) Postage() int64        { return s.amounts[KindPostage] }
func (s *Shipment) SetPostage(v int64)    { s.amounts[KindPostage] = v }
func (s *Shipment) ImportFees() int64     { return s.amounts[KindImportFees] }
func (s *Shipment) SetImportFees(v int64) { s.amounts[KindImportFees] = v }
func (s *Shipment) Giftcard() int64       { return s.amounts[KindGiftcard] }
func (s *Shipment) SetGiftcard(v int64)   { s.amounts[KindGiftcard] = v }
func (s *Shipment) Promotion() int64      { return s.amounts[KindPromotion] }
func (s *Shipment) SetPromotion(v int64)  { s.amounts[KindPromotion] = v }

func (s *Shipment) ChargeAmount() (int64, bool) {
	return s.charge.Value, s.hasCharge
}

func (s *Shipment) SetChargeAmount(v int64) {
	s.charge.Value, s.hasCharge = v, true
}

func (s *Shipment) ClearChargeAmount() {
	s.hasCharge = false
}

// SetLastFour records the card used. If the card has an account of its own the charge moves there.
func (s *Shipment) SetLastFour(digits string) {
	setMeta(s.charge.Meta, MetaLastFour, digits)
	if acct, ok := s.order.book.accounts.Cards[digits]; ok {
		s.charge.Account = acct
	}
}

func (s *Shipment) SetOrderDate(date time.Time)    { setDate(s.charge.Meta, MetaOrdered, date) }
func (s *Shipment) SetExpectedDate(date time.Time) { setDate(s.charge.Meta, MetaExpected, date) }
func (s *Shipment) SetDeliveryDate(date time.Time) { setDate(s.charge.Meta, MetaDelivered, date) }
func (s *Shipment) SetReturned(returned bool)      { setFlag(s.charge.Meta, MetaReturned, returned) }
func (s *Shipment) SetExchanged(exchanged bool)    { setFlag(s.charge.Meta, MetaExchanged, exchanged) }
func (s *Shipment) SetOverseas(overseas bool)      { setFlag(s.charge.Meta, MetaOverseas, overseas) }

func (s *Shipment) SetCarrier(carrier, tracking, service string) {
	setMeta(s.charge.Meta, MetaCarrier, carrier)
	setMeta(s.charge.Meta, MetaTracking, tracking)
	setMeta(s.charge.Meta, MetaService, service)
}
