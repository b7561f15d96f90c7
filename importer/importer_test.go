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

package importer_test

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledger "github.com/westbury/jmoney-sub007"
	"github.com/westbury/jmoney-sub007/importer"
	"github.com/westbury/jmoney-sub007/market"
	"github.com/westbury/jmoney-sub007/scrape"
	"github.com/westbury/jmoney-sub007/updater"
)

type countingStore struct {
	*updater.MemStore
	saves int
}

func (s *countingStore) Save(tr *ledger.Transaction) error {
	s.saves++
	return s.MemStore.Save(tr)
}

func newImporter(m *market.Marketplace, store updater.Store, log *slog.Logger) *importer.Importer {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return importer.New(m, updater.NewBook(store, m.Name, updater.DefaultAccounts(), nil), log)
}

func widgetOrder(number string, items ...scrape.ItemFields) scrape.OrderFields {
	if len(items) == 0 {
		items = []scrape.ItemFields{{Description: "Widget", UnitPrice: "$19.99"}}
	}
	return scrape.OrderFields{
		OrderNumber: number,
		OrderDate:   "March 5, 2024",
		Total:       "$19.99",
		Shipments:   []scrape.ShipmentFields{{Items: items}},
	}
}

func withPayment(of scrape.OrderFields, pf scrape.PaymentFields) scrape.OrderFields {
	of.Shipments[0].Payment = &pf
	return of
}

func stored(t *testing.T, store updater.Store, name, number string) *ledger.Transaction {
	t.Helper()
	tr, err := store.FindOrder(name, number, time.Time{})
	require.NoError(t, err)
	require.NotNil(t, tr, "order %v was not stored", number)
	return tr
}

func charge(t *testing.T, tr *ledger.Transaction) ledger.Posting {
	t.Helper()
	for _, p := range tr.Postings {
		if p.Meta[updater.MetaKind] == updater.KindCharge {
			return p
		}
	}
	t.Fatalf("transaction %v has no charge posting", tr.Code)
	return ledger.Posting{}
}

func importOK(t *testing.T, imp *importer.Importer, src importer.Source, orders ...scrape.OrderFields) {
	t.Helper()
	rep, err := imp.Import(src, orders)
	require.NoError(t, err)
	require.Empty(t, rep.Failures(), rep.String())
}

func finish(t *testing.T, imp *importer.Importer) *importer.Report {
	t.Helper()
	rep, err := imp.Finish()
	require.NoError(t, err)
	return rep
}

func TestChargeFollowsPasses(t *testing.T) {
	store := updater.NewMemStore()
	imp := newImporter(market.Amazon, store, nil)
	const number = "111-2223334"

	importOK(t, imp, importer.Listing, widgetOrder(number))
	importOK(t, imp, importer.Detail, withPayment(widgetOrder(number), scrape.PaymentFields{Postage: "$5.00"}))
	finish(t, imp)

	c := charge(t, stored(t, store, "Amazon", number))
	assert.Equal(t, int64(-2499), c.Value)
	assert.Equal(t, ledger.StatusUndefined, c.Status)

	// A later session picks up the gift card.
	imp = newImporter(market.Amazon, store, nil)
	importOK(t, imp, importer.Payment, withPayment(widgetOrder(number), scrape.PaymentFields{
		Subtotal:   "$19.99",
		Postage:    "$5.00",
		Giftcard:   "-$3.00",
		GrandTotal: "$21.99",
		LastFour:   "4321",
	}))
	assert.Equal(t, importer.Payment, imp.State(number))
	finish(t, imp)

	c = charge(t, stored(t, store, "Amazon", number))
	assert.Equal(t, int64(-2199), c.Value)
	assert.Equal(t, "4321", c.Meta[updater.MetaLastFour])
}

func TestPriceRefresh(t *testing.T) {
	store := updater.NewMemStore()
	imp := newImporter(market.Amazon, store, nil)
	importOK(t, imp, importer.Listing, widgetOrder("C",
		scrape.ItemFields{Description: "Kettle", UnitPrice: "$10.00"},
		scrape.ItemFields{Description: "Toaster", UnitPrice: "$25.00"},
	))
	importOK(t, imp, importer.Detail, widgetOrder("C",
		scrape.ItemFields{Description: "Kettle", UnitPrice: "$9.00"},
		scrape.ItemFields{Description: "Toaster", UnitPrice: "$25.00"},
	))
	finish(t, imp)

	tr := stored(t, store, "Amazon", "C")
	assert.Equal(t, int64(900), tr.Postings[0].Value)
	assert.Equal(t, int64(-3400), charge(t, tr).Value)
}

func TestRepeatedPassChangesNothing(t *testing.T) {
	store := &countingStore{MemStore: updater.NewMemStore()}
	order := withPayment(widgetOrder("113-0000001"), scrape.PaymentFields{Postage: "$5.00", Tracking: "1Z999"})

	imp := newImporter(market.Amazon, store, nil)
	importOK(t, imp, importer.Detail, order)
	importOK(t, imp, importer.Detail, order)
	finish(t, imp)
	require.Equal(t, 1, store.saves)
	before := stored(t, store, "Amazon", "113-0000001").String()

	imp = newImporter(market.Amazon, store, nil)
	importOK(t, imp, importer.Detail, order)
	finish(t, imp)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, before, stored(t, store, "Amazon", "113-0000001").String())
}

func TestMissingItemAbortsOrder(t *testing.T) {
	store := &countingStore{MemStore: updater.NewMemStore()}
	imp := newImporter(market.Amazon, store, nil)
	importOK(t, imp, importer.Listing, widgetOrder("113-0000004",
		scrape.ItemFields{Description: "Kettle", UnitPrice: "$10.00"},
		scrape.ItemFields{Description: "Toaster", UnitPrice: "$25.00"},
	))
	finish(t, imp)
	before := stored(t, store, "Amazon", "113-0000004").String()

	logs := new(bytes.Buffer)
	imp = newImporter(market.Amazon, store, slog.New(slog.NewTextHandler(logs, nil)))
	rep, err := imp.Import(importer.Detail, []scrape.OrderFields{
		widgetOrder("113-0000004", scrape.ItemFields{Description: "Kettle", UnitPrice: "$10.00"}),
	})
	require.NoError(t, err)
	require.Len(t, rep.Results, 1)
	assert.Equal(t, importer.Inconsistent, rep.Results[0].Outcome)
	assert.Contains(t, rep.Results[0].Reason, "Toaster")
	assert.Contains(t, logs.String(), "category=data-integrity")

	assert.Nil(t, imp.Session().Lookup("113-0000004"))
	assert.Equal(t, importer.Unknown, imp.State("113-0000004"))
	assert.Empty(t, finish(t, imp).Results)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, before, stored(t, store, "Amazon", "113-0000004").String())
}

func TestFailureDropsEarlierPasses(t *testing.T) {
	store := &countingStore{MemStore: updater.NewMemStore()}
	imp := newImporter(market.Amazon, store, nil)
	importOK(t, imp, importer.Listing, widgetOrder("gone"))

	rep, err := imp.Import(importer.Detail, []scrape.OrderFields{
		widgetOrder("gone", scrape.ItemFields{Description: "Gadget", UnitPrice: "$1.00"}),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Count(importer.Inconsistent))

	finish(t, imp)
	assert.Equal(t, 0, store.saves)
}

func TestSiblingsUnaffected(t *testing.T) {
	store := updater.NewMemStore()
	imp := newImporter(market.Amazon, store, nil)

	badCurrency := widgetOrder("euro", scrape.ItemFields{Description: "Widget", UnitPrice: "€19.99"})
	badDate := widgetOrder("date")
	badDate.OrderDate = "the fifth of March"
	badQty := widgetOrder("qty", scrape.ItemFields{Description: "Widget", UnitPrice: "$1.00", Quantity: "1.5"})
	unbalanced := withPayment(widgetOrder("total"), scrape.PaymentFields{GrandTotal: "$30.00"})
	subtotal := withPayment(widgetOrder("subtotal"), scrape.PaymentFields{Subtotal: "$18.00"})

	rep, err := imp.Import(importer.Detail, []scrape.OrderFields{
		widgetOrder("first"), badCurrency, badDate, badQty, unbalanced, subtotal, widgetOrder("last"),
	})
	require.NoError(t, err)
	require.Len(t, rep.Results, 7)

	outcomes := map[string]importer.Outcome{}
	for _, res := range rep.Results {
		outcomes[res.Order] = res.Outcome
	}
	assert.Equal(t, map[string]importer.Outcome{
		"first":    importer.Imported,
		"euro":     importer.Skipped,
		"date":     importer.Failed,
		"qty":      importer.Skipped,
		"total":    importer.Inconsistent,
		"subtotal": importer.Inconsistent,
		"last":     importer.Imported,
	}, outcomes)

	done := finish(t, imp)
	require.Len(t, done.Results, 2)
	assert.Equal(t, "first", done.Results[0].Order)
	assert.Equal(t, "last", done.Results[1].Order)

	trs, err := store.Transactions()
	require.NoError(t, err)
	assert.Len(t, trs, 2)
}

func TestUnreachableSource(t *testing.T) {
	imp := newImporter(market.EBay, updater.NewMemStore(), nil)
	rep, err := imp.Import(importer.Payment, []scrape.OrderFields{widgetOrder("1"), widgetOrder("2")})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Count(importer.Skipped))
	assert.Empty(t, imp.Session().Orders())
}

func TestStateKeepsFurthestSource(t *testing.T) {
	imp := newImporter(market.Amazon, updater.NewMemStore(), nil)
	assert.Equal(t, importer.Unknown, imp.State("S"))

	importOK(t, imp, importer.Detail, widgetOrder("S"))
	assert.Equal(t, importer.Detail, imp.State("S"))
	importOK(t, imp, importer.Listing, widgetOrder("S"))
	assert.Equal(t, importer.Detail, imp.State("S"))

	done := finish(t, imp)
	require.Len(t, done.Results, 1)
	assert.Equal(t, importer.Detail, done.Results[0].Source)
}

func TestFlatMarketplace(t *testing.T) {
	store := updater.NewMemStore()
	imp := newImporter(market.EBay, store, nil)

	order := scrape.OrderFields{
		OrderNumber: "12-34567-89012",
		OrderDate:   "Mar 05, 2024",
		Shipments: []scrape.ShipmentFields{
			{Items: []scrape.ItemFields{{Description: "Lens cap", UnitPrice: "US $4.00", Detail: "Qty 2"}}},
			{Items: []scrape.ItemFields{{Description: "Strap", UnitPrice: "US $12.50", SellerName: "camstuff"}}},
		},
	}
	importOK(t, imp, importer.Listing, order)
	importOK(t, imp, importer.Detail, order)
	finish(t, imp)

	tr := stored(t, store, "EBay", "12-34567-89012")
	require.Len(t, tr.Postings, 3)
	for _, p := range tr.Postings {
		assert.Equal(t, "1", p.Meta[updater.MetaShipment])
	}
	assert.Equal(t, int64(800), tr.Postings[0].Value)
	assert.Equal(t, "2", tr.Postings[0].Meta[updater.MetaQuantity])
	assert.Equal(t, "camstuff", tr.Postings[1].Meta[updater.MetaSeller])
	assert.Equal(t, int64(-2050), charge(t, tr).Value)
}

func TestShipmentsKeptApart(t *testing.T) {
	store := updater.NewMemStore()
	imp := newImporter(market.Amazon, store, nil)

	order := scrape.OrderFields{
		OrderNumber: "two",
		OrderDate:   "March 5, 2024",
		Shipments: []scrape.ShipmentFields{
			{Items: []scrape.ItemFields{{Description: "Kettle", UnitPrice: "$10.00"}}},
			{Items: []scrape.ItemFields{{Description: "Toaster", UnitPrice: "$25.00"}}, DeliveryDate: "March 9, 2024"},
		},
	}
	importOK(t, imp, importer.Listing, order)

	// Order level payment details cannot be split between shipments.
	withTotal := order
	withTotal.Payment = &scrape.PaymentFields{GrandTotal: "$35.00"}
	rep, err := imp.Import(importer.Payment, []scrape.OrderFields{withTotal})
	require.NoError(t, err)
	assert.Equal(t, importer.Skipped, rep.Results[0].Outcome)

	importOK(t, imp, importer.Listing, order)
	finish(t, imp)

	tr := stored(t, store, "Amazon", "two")
	require.Len(t, tr.Postings, 4)
	assert.Equal(t, "1", tr.Postings[1].Meta[updater.MetaShipment])
	assert.Equal(t, int64(-1000), tr.Postings[1].Value)
	assert.Equal(t, "2", tr.Postings[3].Meta[updater.MetaShipment])
	assert.Equal(t, int64(-2500), tr.Postings[3].Value)
	assert.Equal(t, "2024/03/09", tr.Postings[3].Meta[updater.MetaDelivered])
}

func TestReturnedShipment(t *testing.T) {
	store := updater.NewMemStore()
	imp := newImporter(market.Amazon, store, nil)

	order := scrape.OrderFields{
		OrderNumber: "R",
		OrderDate:   "March 5, 2024",
		Shipments: []scrape.ShipmentFields{{
			IsReturned: true,
			Items:      []scrape.ItemFields{{Description: "Widget", UnitPrice: "-$19.99"}},
			Payment:    &scrape.PaymentFields{RefundTotal: "$19.99"},
		}},
	}
	importOK(t, imp, importer.Payment, order)
	finish(t, imp)

	c := charge(t, stored(t, store, "Amazon", "R"))
	assert.Equal(t, int64(1999), c.Value)
	assert.Equal(t, "true", c.Meta[updater.MetaReturned])
}

func TestDateConflictKeepsStoredDate(t *testing.T) {
	store := updater.NewMemStore()
	imp := newImporter(market.Amazon, store, nil)
	importOK(t, imp, importer.Listing, widgetOrder("D"))
	finish(t, imp)

	logs := new(bytes.Buffer)
	imp = newImporter(market.Amazon, store, slog.New(slog.NewTextHandler(logs, nil)))
	later := widgetOrder("D")
	later.OrderDate = "March 6, 2024"
	importOK(t, imp, importer.Listing, later)
	assert.Contains(t, logs.String(), "scraped=2024-03-06")

	o := imp.Session().Lookup("D")
	require.NotNil(t, o)
	d, _ := o.Date()
	assert.Equal(t, "2024-03-05", d.Format("2006-01-02"))
}

func TestReportString(t *testing.T) {
	rep := &importer.Report{}
	rep.Merge(&importer.Report{Results: []importer.Result{
		{Order: "1", Source: importer.Listing, Outcome: importer.Imported},
		{Order: "2", Source: importer.Detail, Outcome: importer.Failed, Reason: "bad date"},
	}})
	assert.Equal(t, "1 imported, 0 skipped, 0 inconsistent, 1 failed\n\t2 (detail): failed: bad date\n", rep.String())

	src, err := importer.ParseSource(" Payment ")
	require.NoError(t, err)
	assert.Equal(t, importer.Payment, src)
	_, err = importer.ParseSource("unknown")
	assert.Error(t, err)
}
