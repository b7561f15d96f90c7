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
Package reconcile merges scraped order data into orders that may already have been imported before.

An import Session wraps ledger backed orders in an Order, Shipment, Item tree. A Matcher pairs freshly
scraped item records with the items already on an order, and the Shipment keeps the amount charged to
the paying account in step with everything else as amounts trickle in over several scrape passes.

Nothing here knows how orders are stored, that is the Ledger's job.
*/
package reconcile

import "time"

// Ledger finds, creates, and persists orders.
type Ledger interface {
	// FindOrCreateOrder returns the stored order with the given number, or a new empty one. The date is a
	// hint for finding the order, it does not change a stored order.
	FindOrCreateOrder(number string, date time.Time) (OrderUpdater, error)

	// Commit persists all changes made through the updater.
	Commit(o OrderUpdater) error

	// Discard drops all changes made through the updater since it was returned by FindOrCreateOrder.
	Discard(o OrderUpdater)
}

// OrderUpdater is a handle on one stored order.
type OrderUpdater interface {
	OrderNumber() string
	OrderDate() (time.Time, bool)
	SetOrderDate(date time.Time)
	OrderTotal() (int64, bool)
	SetOrderTotal(v int64)

	Shipments() []ShipmentUpdater
	CreateShipment() ShipmentUpdater
}

// ShipmentUpdater is a handle on one shipment of a stored order. All amounts are positive for money paid
// out, except the charge amount, which is the signed amount posted to the paying account (negative for a
// purchase).
type ShipmentUpdater interface {
	ID() string

	Items() []ItemUpdater
	CreateItem(amount int64) ItemUpdater

	Postage() int64
	SetPostage(v int64)
	ImportFees() int64
	SetImportFees(v int64)
	Giftcard() int64
	SetGiftcard(v int64)
	Promotion() int64
	SetPromotion(v int64)

	// ChargeAmount returns false while the charge amount is not yet determined.
	ChargeAmount() (int64, bool)
	SetChargeAmount(v int64)
	ClearChargeAmount()

	SetLastFour(digits string)
	SetOrderDate(date time.Time)
	SetExpectedDate(date time.Time)
	SetDeliveryDate(date time.Time)
	SetReturned(returned bool)
	SetExchanged(exchanged bool)
	SetOverseas(overseas bool)
	SetCarrier(carrier, tracking, service string)
}

// ItemUpdater is a handle on one line item. Amount is the extended price (unit price times quantity).
type ItemUpdater interface {
	Amount() int64
	SetAmount(v int64)
	Quantity() int
	SetQuantity(q int)

	// Description is the user facing description, MarketDescription is the text the marketplace uses
	// for the item and is what matching is done on.
	Description() string
	SetDescription(desc string)
	MarketDescription() string
	SetMarketDescription(desc string)

	SetOrderNumber(number string)
	ExternalID() string
	SetExternalID(id string)
	SetImageCode(code string)
	SetSeller(seller string)
	SetAuthor(author string)
	SetDetail(detail string)
	SetDeliveryDate(date time.Time)
	SetReturnDeadline(date time.Time)
	SetMovie(movie bool)
}
