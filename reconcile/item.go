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

// Item is one line item of a Shipment.
type Item struct {
	u        ItemUpdater
	shipment *Shipment
}

// Shipment returns the shipment the item belongs to.
func (it *Item) Shipment() *Shipment {
	return it.shipment
}

// Updater returns the item's ledger handle, for fields with no bearing on the balance.
func (it *Item) Updater() ItemUpdater {
	return it.u
}

// Description returns the marketplace description.
func (it *Item) Description() string {
	return it.u.MarketDescription()
}

// Amount returns the extended price.
func (it *Item) Amount() int64 {
	return it.u.Amount()
}

// Quantity returns the quantity, never less than one.
func (it *Item) Quantity() int {
	if q := it.u.Quantity(); q > 1 {
		return q
	}
	return 1
}

// UnitPrice returns the price of a single unit.
func (it *Item) UnitPrice() int64 {
	return it.u.Amount() / int64(it.Quantity())
}

// SetUnitPrice changes the unit price, keeping the quantity.
func (it *Item) SetUnitPrice(p int64) {
	it.setAmount(p * int64(it.Quantity()))
}

// SetQuantity changes the quantity, keeping the unit price.
func (it *Item) SetQuantity(q int) {
	if q < 1 {
		q = 1
	}
	if q == it.Quantity() {
		return
	}

	unit := it.UnitPrice()
	it.u.SetQuantity(q)
	it.setAmount(unit * int64(q))
}

func (it *Item) setAmount(v int64) {
	old := it.u.Amount()
	if v == old {
		return
	}
	it.u.SetAmount(v)
	it.shipment.itemAmountChanged(v - old)
}
