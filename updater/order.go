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

// Order is a reconcile.OrderUpdater over one transaction.
type Order struct {
	book *Book
	orig *ledger.Transaction // as loaded or last saved, nil for new orders

	header    ledger.Transaction // everything except the postings
	number    string
	total     int64
	hasTotal  bool
	shipments []*Shipment
	others    []ledger.Posting
	discarded bool
}

func newOrder(b *Book, number string, date time.Time) *Order {
	return &Order{
		book:   b,
		number: number,
		header: ledger.Transaction{
			Date:        date,
			Description: fmt.Sprintf("%v order %v", b.market, number),
			Tags:        map[string]bool{},
			KVPairs:     map[string]string{},
		},
	}
}

func decodeOrder(b *Book, tr *ledger.Transaction) (*Order, error) {
	o := &Order{
		book:   b,
		orig:   tr.CleanCopy(),
		number: tr.KVPairs[KeyOrderNumber],
		header: *tr.CleanCopy(),
	}
	o.header.Postings = nil
	if o.header.Tags == nil {
		o.header.Tags = map[string]bool{}
	}

	if v, ok := tr.KVPairs[KeyOrderTotal]; ok {
		total, err := ledger.ParseValue(v)
		if err != nil {
			return nil, fmt.Errorf("order total: %w", err)
		}
		o.total, o.hasTotal = total, true
	}

	byID := map[string]*Shipment{}
	for _, p := range tr.Postings {
		p = *p.CleanCopy()
		kind := p.Meta[MetaKind]
		if kind == "" {
			o.others = append(o.others, p)
			continue
		}

		id := p.Meta[MetaShipment]
		s, ok := byID[id]
		if !ok {
			s = newShipment(o, id)
			byID[id] = s
			o.shipments = append(o.shipments, s)
		}
		if err := s.decode(kind, p); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Order) encode() *ledger.Transaction {
	tr := o.header.CleanCopy()
	if tr.KVPairs == nil {
		tr.KVPairs = map[string]string{}
	}
	tr.KVPairs[KeyOrderNumber] = o.number
	tr.KVPairs[KeyMarketplace] = o.book.market
	if o.hasTotal {
		tr.KVPairs[KeyOrderTotal] = ledger.FormatValueNumber(o.total)
	} else {
		delete(tr.KVPairs, KeyOrderTotal)
	}

	tr.Postings = []ledger.Posting{}
	for _, s := range o.shipments {
		tr.Postings = append(tr.Postings, s.encode()...)
	}
	for _, p := range o.others {
		tr.Postings = append(tr.Postings, *p.CleanCopy())
	}
	return tr
}

// Transaction returns the transaction as it would be committed now.
func (o *Order) Transaction() *ledger.Transaction {
	return o.encode()
}

func (o *Order) OrderNumber() string {
	return o.number
}

func (o *Order) OrderDate() (time.Time, bool) {
	return o.header.Date, !o.header.Date.IsZero()
}

func (o *Order) SetOrderDate(date time.Time) {
	o.header.Date = date
}

func (o *Order) OrderTotal() (int64, bool) {
	return o.total, o.hasTotal
}

func (o *Order) SetOrderTotal(v int64) {
	o.total, o.hasTotal = v, true
}

func (o *Order) Shipments() []reconcile.ShipmentUpdater {
	out := make([]reconcile.ShipmentUpdater, 0, len(o.shipments))
	for _, s := range o.shipments {
		out = append(out, s)
	}
	return out
}

func (o *Order) CreateShipment() reconcile.ShipmentUpdater {
	taken := map[string]bool{}
	for _, s := range o.shipments {
		taken[s.id] = true
	}
	id := ""
	for n := len(o.shipments) + 1; id == "" || taken[id]; n++ {
		id = fmt.Sprint(n)
	}

	s := newShipment(o, id)
	o.shipments = append(o.shipments, s)
	return s
}
