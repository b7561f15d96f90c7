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

package importer

import (
	"strings"
	"time"

	ledger "github.com/westbury/jmoney-sub007"
	"github.com/westbury/jmoney-sub007/market"
	"github.com/westbury/jmoney-sub007/reconcile"
	"github.com/westbury/jmoney-sub007/scrape"
)

// pass is one order of one batch.
type pass struct {
	imp     *Importer
	number  string
	order   *reconcile.Order
	matcher *reconcile.Matcher

	touched []*reconcile.Shipment         // shipments changed by this pass, in the order first touched
	charges map[*reconcile.Shipment]int64 // explicit charge amounts, applied last
}

// importFields runs one pass over one order. The returned order is nil if the failure came before the
// order was found.
func (imp *Importer) importFields(of *scrape.OrderFields) (*reconcile.Order, error) {
	p := &pass{
		imp:     imp,
		number:  strings.TrimSpace(of.OrderNumber),
		charges: map[*reconcile.Shipment]int64{},
	}
	if p.number == "" {
		return nil, reconcile.Errorf(reconcile.Malformed, "", "order has no order number")
	}

	date, _, err := p.date(of.OrderDate)
	if err != nil {
		return nil, err
	}
	p.order, err = imp.session.GetOrCreate(p.number, date)
	if err != nil {
		return nil, err
	}

	return p.order, p.run(of)
}

func (p *pass) run(of *scrape.OrderFields) error {
	total, ok, err := p.amount(of.Total)
	if err != nil {
		return err
	}
	if ok {
		p.order.SetTotal(total)
	}

	if p.imp.market.Flat {
		p.matcher = reconcile.NewShipmentMatcher(p.order.FlatShipment())
	} else {
		p.matcher = reconcile.NewOrderMatcher(p.order)
	}

	for i := range of.Shipments {
		if err := p.shipment(&of.Shipments[i]); err != nil {
			return err
		}
	}

	// Only a page that lists items can tell us items went missing.
	if of.ItemCount() > 0 && !p.matcher.IsExhausted() {
		left := p.matcher.Remaining()
		return p.fail(reconcile.Inconsistent, "%d previously imported item(s) are missing from this page, the first is %q",
			len(left), left[0].Description())
	}

	if of.Payment != nil {
		ships := p.order.Shipments()
		if len(ships) != 1 {
			return p.fail(reconcile.Unsupported, "order level payment details for an order with %d shipments", len(ships))
		}
		if err := p.payment(ships[0], of.Payment, false); err != nil {
			return err
		}
	}

	return p.settle()
}

func (p *pass) shipment(sf *scrape.ShipmentFields) error {
	ctx := &reconcile.MatchContext{}
	if p.imp.market.Flat {
		ctx.Shipment = p.order.FlatShipment()
	}

	items := []*reconcile.Item{}
	for i := range sf.Items {
		it, err := p.item(&sf.Items[i], ctx)
		if err != nil {
			return err
		}
		items = append(items, it)
	}

	s := ctx.Shipment
	if s == nil {
		// Without items the record can only belong to the order's one shipment.
		ships := p.order.Shipments()
		if len(ships) != 1 {
			if sf.Payment == nil && sf.ExpectedDate == "" && sf.DeliveryDate == "" && !sf.IsReturned && !sf.IsExchanged {
				return nil
			}
			return p.fail(reconcile.Unsupported, "shipment details without items for an order with %d shipments", len(ships))
		}
		s = ships[0]
	}
	p.touch(s)

	u := s.Updater()
	expected, ok, err := p.date(sf.ExpectedDate)
	if err != nil {
		return err
	}
	if ok {
		u.SetExpectedDate(expected)
	}

	delivered, ok, err := p.date(sf.DeliveryDate)
	if err != nil {
		return err
	}
	if ok {
		u.SetDeliveryDate(delivered)
		for _, it := range items {
			it.Updater().SetDeliveryDate(delivered)
		}
	}

	if sf.IsReturned {
		u.SetReturned(true)
	}
	if sf.IsExchanged {
		u.SetExchanged(true)
	}

	if sf.Payment != nil {
		return p.payment(s, sf.Payment, sf.IsReturned)
	}
	return nil
}

func (p *pass) item(f *scrape.ItemFields, ctx *reconcile.MatchContext) (*reconcile.Item, error) {
	desc := strings.Join(strings.Fields(f.Description), " ")
	if desc == "" {
		return nil, p.fail(reconcile.Malformed, "item without a description")
	}

	price, ok, err := p.amount(f.UnitPrice)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.fail(reconcile.Malformed, "item %q has no price", desc)
	}

	qty := 0
	if strings.TrimSpace(f.Quantity) != "" {
		qty, err = market.ParseQuantity(f.Quantity)
		if err != nil {
			return nil, p.classify(err)
		}
	}
	dq, detail, err := market.ExtractQuantity(f.Detail)
	if err != nil {
		return nil, p.classify(err)
	}
	if qty == 0 {
		qty = dq
	}

	it, err := p.matcher.Match(reconcile.ItemRecord{
		Description: desc,
		Quantity:    qty,
		UnitPrice:   price,
		ExternalID:  strings.TrimSpace(f.ExternalID),
	}, ctx)
	if err != nil {
		return nil, err
	}
	p.touch(it.Shipment())

	if qty > 0 {
		it.SetQuantity(qty)
	}

	u := it.Updater()
	if id := strings.TrimSpace(f.ExternalID); id != "" {
		u.SetExternalID(id)
	}
	if detail != "" {
		u.SetDetail(detail)
	}
	seller := f.SellerName
	if seller == "" {
		seller = market.ExtractSeller(f.Detail)
	}
	if seller != "" {
		u.SetSeller(seller)
	}
	if f.Author != "" {
		u.SetAuthor(f.Author)
	}
	if f.ImageCode != "" {
		u.SetImageCode(f.ImageCode)
	}

	deadline, ok, err := p.date(f.ReturnDeadline)
	if err != nil {
		return nil, err
	}
	if ok {
		u.SetReturnDeadline(deadline)
	}

	u.SetMovie(market.IsMovie(desc))
	if f.IsOverseas {
		it.Shipment().Updater().SetOverseas(true)
	}
	return it, nil
}

// payment applies payment page fields to s. Adjustments go through the balance maintainer straight away,
// an explicit total is only applied by settle.
func (p *pass) payment(s *reconcile.Shipment, pf *scrape.PaymentFields, returned bool) error {
	p.touch(s)

	postage, ok, err := p.amount(pf.Postage)
	if err != nil {
		return err
	}
	if ok {
		s.SetPostageAndPackaging(abs(postage))
	}

	fees, ok, err := p.amount(pf.ImportFees)
	if err != nil {
		return err
	}
	if ok {
		s.SetImportFees(abs(fees))
	}

	gift, ok, err := p.amount(pf.Giftcard)
	if err != nil {
		return err
	}
	if ok {
		s.SetGiftcardAmount(abs(gift))
	}

	promo, okPromo, err := p.amount(pf.Promotion)
	if err != nil {
		return err
	}
	discount, okDiscount, err := p.amount(pf.Discount)
	if err != nil {
		return err
	}
	if okPromo || okDiscount {
		s.SetPromotionAmount(abs(promo) + abs(discount))
	}

	subtotal, ok, err := p.amount(pf.Subtotal)
	if err != nil {
		return err
	}
	if ok && len(s.Items()) > 0 {
		items := int64(0)
		for _, it := range s.Items() {
			items += it.Amount()
		}
		if abs(items) != abs(subtotal) {
			return p.fail(reconcile.Inconsistent, "shipment %v items come to %v but the page says %v",
				s.ID(), ledger.FormatValue(items), ledger.FormatValue(subtotal))
		}
	}

	if digits := strings.TrimSpace(pf.LastFour); digits != "" {
		if !isLastFour(digits) {
			return p.fail(reconcile.Unsupported, "unrecognised payment card %q", digits)
		}
		s.Updater().SetLastFour(digits)
	}

	if pf.Carrier != "" || pf.Tracking != "" || pf.ShippingService != "" {
		s.Updater().SetCarrier(pf.Carrier, pf.Tracking, pf.ShippingService)
	}

	total, ok, err := p.amount(pf.GrandTotal)
	if err != nil {
		return err
	}
	if ok {
		p.charges[s] = -abs(total)
	}

	refund, ok, err := p.amount(pf.RefundTotal)
	if err != nil {
		return err
	}
	if ok && returned {
		p.charges[s] = abs(refund)
	}
	return nil
}

// settle applies explicit charge amounts, works out the charge of touched shipments that have none yet,
// and checks every touched shipment balances.
func (p *pass) settle() error {
	for _, s := range p.touched {
		if v, ok := p.charges[s]; ok {
			s.SetChargeAmount(v)
		} else if _, ok := s.ChargeAmount(); !ok {
			s.SetCalculatedChargeAmount()
		}

		if !s.Balanced() {
			c, _ := s.ChargeAmount()
			return p.fail(reconcile.Inconsistent, "shipment %v was charged %v but its items and adjustments come to %v",
				s.ID(), ledger.FormatValue(c), ledger.FormatValue(s.CalculatedChargeAmount()))
		}
	}
	return nil
}

func (p *pass) touch(s *reconcile.Shipment) {
	for _, t := range p.touched {
		if t == s {
			return
		}
	}
	p.touched = append(p.touched, s)
}

func (p *pass) amount(s string) (int64, bool, error) {
	if strings.TrimSpace(s) == "" {
		return 0, false, nil
	}
	v, err := p.imp.market.ParseAmount(s)
	if err != nil {
		return 0, false, p.classify(err)
	}
	return v, true, nil
}

func (p *pass) date(s string) (time.Time, bool, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, false, nil
	}
	d, err := p.imp.market.ParseDate(s)
	if err != nil {
		return time.Time{}, false, p.classify(err)
	}
	return d, true, nil
}

// classify turns scraped value errors into order level errors.
func (p *pass) classify(err error) error {
	kind := reconcile.Malformed
	switch err.(type) {
	case market.ErrUnknownCurrency, market.ErrBadQuantity:
		kind = reconcile.Unsupported
	case market.ErrBadAmount, market.ErrBadDate:
	default:
		return err
	}
	return &reconcile.Error{Kind: kind, Order: p.number, Reason: "unreadable scraped value", Err: err}
}

func (p *pass) fail(kind reconcile.Kind, format string, a ...any) error {
	return reconcile.Errorf(kind, p.number, format, a...)
}

func isLastFour(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
