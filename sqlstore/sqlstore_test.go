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

package sqlstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledger "github.com/westbury/jmoney-sub007"
	"github.com/westbury/jmoney-sub007/updater"
)

func open(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func order(number string, value int64) *ledger.Transaction {
	return &ledger.Transaction{
		Date:        time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		Description: "EBay order " + number,
		Tags:        map[string]bool{"online": true},
		KVPairs: map[string]string{
			updater.KeyMarketplace: "EBay",
			updater.KeyOrderNumber: number,
		},
		Postings: []ledger.Posting{
			{Account: "Expenses:Hobbies", Value: value, Meta: map[string]string{"Kind": "item", "Shipment": "1", "Desc": "Lens cap"}},
			{Account: "Liabilities:Credit Card", Status: ledger.StatusPending, Value: -value, Meta: map[string]string{"Kind": "charge", "Shipment": "1"}},
		},
	}
}

func TestStoreSaveAndFind(t *testing.T) {
	s := open(t)

	tr := order("12-34567-89012", 899)
	require.NoError(t, s.Save(tr))
	require.NotEmpty(t, tr.Code)

	found, err := s.FindOrder("EBay", "12-34567-89012", time.Time{})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, tr.String(), found.String())

	// A new revision replaces the postings.
	edit := found.CleanCopy()
	edit.Postings[0].Value = 999
	edit.Postings[1].Value = -999
	edit.Postings[1].Status = ledger.StatusUndefined
	edit.Postings = append(edit.Postings, ledger.Posting{Account: "Expenses:Postage", Value: 100}, ledger.Posting{Account: "Liabilities:Credit Card", Value: -100})
	require.NoError(t, s.Save(edit))
	assert.Equal(t, tr.Code, edit.Code)
	assert.NotEqual(t, tr.KVPairs[updater.KeyRevision], edit.KVPairs[updater.KeyRevision])

	found, err = s.FindOrder("EBay", "12-34567-89012", time.Time{})
	require.NoError(t, err)
	require.Len(t, found.Postings, 4)
	assert.Equal(t, int64(999), found.Postings[0].Value)
	assert.Equal(t, "Lens cap", found.Postings[0].Meta["Desc"])
	assert.Equal(t, ledger.StatusUndefined, found.Postings[1].Status)

	trs, err := s.Transactions()
	require.NoError(t, err)
	assert.Len(t, trs, 1)

	missing, err := s.FindOrder("Amazon", "12-34567-89012", time.Time{})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStoreRejectsUnbalanced(t *testing.T) {
	s := open(t)

	tr := order("1", 100)
	tr.Postings[1].Value = -1
	assert.Error(t, s.Save(tr))

	trs, err := s.Transactions()
	require.NoError(t, err)
	assert.Empty(t, trs)
}

func TestStoreBacksBook(t *testing.T) {
	s := open(t)
	book := updater.NewBook(s, "EBay", updater.DefaultAccounts(), nil)

	u, err := book.FindOrCreateOrder("77", time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	u.SetOrderTotal(1500)
	ship := u.CreateShipment()
	it := ship.CreateItem(1500)
	it.SetMarketDescription("Tripod")
	ship.SetChargeAmount(-1500)
	require.NoError(t, book.Commit(u))

	u, err = book.FindOrCreateOrder("77", time.Time{})
	require.NoError(t, err)
	total, ok := u.OrderTotal()
	assert.True(t, ok)
	assert.Equal(t, int64(1500), total)
	require.Len(t, u.Shipments(), 1)
	c, ok := u.Shipments()[0].ChargeAmount()
	assert.True(t, ok)
	assert.Equal(t, int64(-1500), c)
	assert.Equal(t, "Tripod", u.Shipments()[0].Items()[0].MarketDescription())
}
