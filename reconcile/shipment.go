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

// Shipment is one shipment of an Order. It keeps the charge amount balanced against the items and
// adjustments:
//
//	charge = -(items) - postage - import fees + gift card + promotion
//
// While the charge amount is undetermined nothing is adjusted. Once it is determined every setter moves
// it by the change in its own amount, so applying the same value twice changes nothing.
type Shipment struct {
	order *Order
	u     ShipmentUpdater
	items []*Item
}

func newShipment(o *Order, u ShipmentUpdater) *Shipment {
	s := &Shipment{order: o, u: u}
	for _, iu := range u.Items() {
		s.items = append(s.items, &Item{u: iu, shipment: s})
	}
	return s
}

// ID returns the shipment's identifier within its order.
func (s *Shipment) ID() string {
	return s.u.ID()
}

// Order returns the order the shipment belongs to.
func (s *Shipment) Order() *Order {
	return s.order
}

// Items returns the items of the shipment.
func (s *Shipment) Items() []*Item {
	return s.items
}

// Updater returns the shipment's ledger handle, for fields with no bearing on the balance.
func (s *Shipment) Updater() ShipmentUpdater {
	return s.u
}

// PostageAndPackaging returns the postage amount.
func (s *Shipment) PostageAndPackaging() int64 {
	return s.u.Postage()
}

// SetPostageAndPackaging sets the postage amount. Postage increases what is owed.
func (s *Shipment) SetPostageAndPackaging(v int64) {
	old := s.u.Postage()
	if v == old {
		return
	}
	s.u.SetPostage(v)
	s.adjustCharge(old - v)
}

// ImportFees returns the import fees deposit.
func (s *Shipment) ImportFees() int64 {
	return s.u.ImportFees()
}

// SetImportFees sets the import fees deposit. Fees increase what is owed.
func (s *Shipment) SetImportFees(v int64) {
	old := s.u.ImportFees()
	if v == old {
		return
	}
	s.u.SetImportFees(v)
	s.adjustCharge(old - v)
}

// GiftcardAmount returns the amount paid by gift card.
func (s *Shipment) GiftcardAmount() int64 {
	return s.u.Giftcard()
}

// SetGiftcardAmount sets the amount paid by gift card. Gift cards reduce what is owed.
func (s *Shipment) SetGiftcardAmount(v int64) {
	old := s.u.Giftcard()
	if v == old {
		return
	}
	s.u.SetGiftcard(v)
	s.adjustCharge(v - old)
}

// PromotionAmount returns the promotional discount.
func (s *Shipment) PromotionAmount() int64 {
	return s.u.Promotion()
}

// SetPromotionAmount sets the promotional discount. Promotions reduce what is owed.
func (s *Shipment) SetPromotionAmount(v int64) {
	old := s.u.Promotion()
	if v == old {
		return
	}
	s.u.SetPromotion(v)
	s.adjustCharge(v - old)
}

// ChargeAmount returns the amount charged to the paying account, or false if not yet determined. Zero
// is a perfectly good charge amount.
func (s *Shipment) ChargeAmount() (int64, bool) {
	return s.u.ChargeAmount()
}

// SetChargeAmount fixes the charge amount.
func (s *Shipment) SetChargeAmount(v int64) {
	s.u.SetChargeAmount(v)
}

// ClearChargeAmount makes the charge amount undetermined again.
func (s *Shipment) ClearChargeAmount() {
	s.u.ClearChargeAmount()
}

// SetCalculatedChargeAmount fixes the charge amount to the value the items and adjustments add up to,
// replacing whatever it was.
func (s *Shipment) SetCalculatedChargeAmount() {
	s.u.SetChargeAmount(s.CalculatedChargeAmount())
}

// CalculatedChargeAmount returns the charge amount the items and adjustments add up to.
func (s *Shipment) CalculatedChargeAmount() int64 {
	total := int64(0)
	for _, it := range s.items {
		total += it.Amount()
	}
	return -total - s.u.Postage() - s.u.ImportFees() + s.u.Giftcard() + s.u.Promotion()
}

// Balanced returns true if the charge amount is undetermined or agrees with the items and adjustments.
func (s *Shipment) Balanced() bool {
	c, ok := s.u.ChargeAmount()
	return !ok || c == s.CalculatedChargeAmount()
}

func (s *Shipment) itemAmountChanged(delta int64) {
	s.adjustCharge(-delta)
}

func (s *Shipment) adjustCharge(delta int64) {
	if c, ok := s.u.ChargeAmount(); ok {
		s.u.SetChargeAmount(c + delta)
	}
}
