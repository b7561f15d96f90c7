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

import "time"

// Order is one order in a Session.
type Order struct {
	u         OrderUpdater
	shipments []*Shipment
	conflict  time.Time
}

func newOrder(u OrderUpdater) *Order {
	o := &Order{u: u}
	for _, su := range u.Shipments() {
		o.shipments = append(o.shipments, newShipment(o, su))
	}
	return o
}

// Number returns the marketplace order number.
func (o *Order) Number() string {
	return o.u.OrderNumber()
}

// Date returns the order date, if known.
func (o *Order) Date() (time.Time, bool) {
	return o.u.OrderDate()
}

// SetDate sets the order date and copies it to every shipment. Any pending date conflict is resolved.
func (o *Order) SetDate(date time.Time) {
	o.u.SetOrderDate(date)
	for _, s := range o.shipments {
		s.u.SetOrderDate(date)
	}
	o.conflict = time.Time{}
}

// DateConflict returns a date seen in scraped data that differs from the stored order date.
func (o *Order) DateConflict() (time.Time, bool) {
	return o.conflict, !o.conflict.IsZero()
}

// ConfirmDate replaces the stored order date with the conflicting one.
func (o *Order) ConfirmDate() {
	if d, ok := o.DateConflict(); ok {
		o.SetDate(d)
	}
}

func (o *Order) noteDate(date time.Time) {
	stored, ok := o.Date()
	switch {
	case !ok:
		o.SetDate(date)
	case !stored.Equal(date):
		o.conflict = date
	default:
		o.conflict = time.Time{}
	}
}

// Total returns the order total, if known.
func (o *Order) Total() (int64, bool) {
	return o.u.OrderTotal()
}

// SetTotal sets the order total.
func (o *Order) SetTotal(v int64) {
	o.u.SetOrderTotal(v)
}

// Shipments returns the shipments of the order.
func (o *Order) Shipments() []*Shipment {
	return o.shipments
}

// CreateShipment adds an empty shipment. It inherits the order date, if known.
func (o *Order) CreateShipment() *Shipment {
	s := newShipment(o, o.u.CreateShipment())
	if d, ok := o.Date(); ok {
		s.u.SetOrderDate(d)
	}
	o.shipments = append(o.shipments, s)
	return s
}

// FlatShipment returns the single shipment used by marketplaces without shipments, creating it if needed.
func (o *Order) FlatShipment() *Shipment {
	if len(o.shipments) == 0 {
		return o.CreateShipment()
	}
	return o.shipments[0]
}

// Items returns every item of every shipment.
func (o *Order) Items() []*Item {
	items := []*Item{}
	for _, s := range o.shipments {
		items = append(items, s.items...)
	}
	return items
}

// CreateItem adds an item to s, or to a new shipment if s is nil. Quantities below one are taken as one.
func (o *Order) CreateItem(desc string, qty int, unitPrice int64, s *Shipment) *Item {
	if s == nil {
		s = o.CreateShipment()
	}
	if qty < 1 {
		qty = 1
	}

	amount := unitPrice * int64(qty)
	u := s.u.CreateItem(amount)
	u.SetQuantity(qty)
	u.SetMarketDescription(desc)
	u.SetDescription(desc)
	u.SetOrderNumber(o.Number())

	it := &Item{u: u, shipment: s}
	s.items = append(s.items, it)
	s.itemAmountChanged(amount)
	return it
}
