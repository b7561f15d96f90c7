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
Package updater stores orders as ledger transactions.

Each order is one transaction. The order number, marketplace, and total are transaction key/value pairs,
everything else lives on the postings. For every shipment the postings are, in order:

	items            (Kind: item)        one per line item, on an expense account
	postage          (Kind: postage)     only if not zero
	import fees      (Kind: importfees)  only if not zero
	gift card        (Kind: giftcard)    negative, only if not zero
	promotion        (Kind: promotion)   negative, only if not zero
	charge           (Kind: charge)      the paying account, carries the shipment details

Every one of these has a Shipment metadata key naming its shipment. A charge that is not yet determined is
written as a pending posting that balances the shipment. Postings without a Kind belong to the user and
are kept as they are.
*/
package updater

import (
	"errors"
	"fmt"
	"time"

	ledger "github.com/westbury/jmoney-sub007"
	"github.com/westbury/jmoney-sub007/reconcile"
)

// Transaction key/value pairs.
const (
	KeyOrderNumber = "OrderNumber"
	KeyMarketplace = "Marketplace"
	KeyOrderTotal  = "OrderTotal"
	KeyRevision    = "RID"
)

// Posting metadata keys shared by all kinds.
const (
	MetaShipment = "Shipment"
	MetaKind     = "Kind"
)

// Posting kinds.
const (
	KindItem       = "item"
	KindPostage    = "postage"
	KindImportFees = "importfees"
	KindGiftcard   = "giftcard"
	KindPromotion  = "promotion"
	KindCharge     = "charge"
)

// Store persists transactions.
type Store interface {
	// FindOrder returns the latest revision of the order's transaction, or nil if there is none. near is
	// the likely date of the order, stores may use it to search faster.
	FindOrder(market, number string, near time.Time) (*ledger.Transaction, error)

	// Save stores a new transaction or a new revision of an existing one (same Code). New transactions
	// are given a Code. Every save gets a fresh revision ID.
	Save(tr *ledger.Transaction) error

	// Transactions returns the latest revision of every transaction.
	Transactions() ([]ledger.Transaction, error)
}

// Accounts names the accounts orders post to.
type Accounts struct {
	Charge     string
	Postage    string
	ImportFees string
	Giftcard   string
	Promotion  string
	Default    string // Items no matcher knows

	Cards map[string]string // Last four digits of a card to the card's account, overrides Charge.
}

// DefaultAccounts returns a usable set of account names.
func DefaultAccounts() Accounts {
	return Accounts{
		Charge:     "Liabilities:Credit Card",
		Postage:    "Expenses:Postage",
		ImportFees: "Expenses:Import Fees",
		Giftcard:   "Assets:Gift Cards",
		Promotion:  "Income:Promotions",
		Default:    "Expenses:Unsorted",
	}
}

// ErrForeignOrder is returned by Book.Commit for updaters the book did not create.
var ErrForeignOrder = errors.New("Order was not loaded by this book.")

// ErrDiscarded is returned by Book.Commit for orders that were discarded.
var ErrDiscarded = errors.New("Order was discarded.")

// Book is a reconcile.Ledger for one marketplace on top of a Store.
type Book struct {
	store    Store
	market   string
	accounts Accounts
	matchers []ledger.Matcher
}

// NewBook creates a Book. Item accounts are picked by the matchers, falling back to accounts.Default.
func NewBook(store Store, market string, accounts Accounts, matchers []ledger.Matcher) *Book {
	return &Book{
		store:    store,
		market:   market,
		accounts: accounts,
		matchers: matchers,
	}
}

// IsOrder returns true if tr is the transaction for the given order.
func IsOrder(tr *ledger.Transaction, market, number string) bool {
	return tr.KVPairs[KeyOrderNumber] == number && tr.KVPairs[KeyMarketplace] == market
}

// FindOrCreateOrder implements reconcile.Ledger.
func (b *Book) FindOrCreateOrder(number string, date time.Time) (reconcile.OrderUpdater, error) {
	tr, err := b.store.FindOrder(b.market, number, date)
	if err != nil {
		return nil, fmt.Errorf("find order %v: %w", number, err)
	}
	if tr == nil {
		return newOrder(b, number, date), nil
	}

	o, err := decodeOrder(b, tr)
	if err != nil {
		return nil, &reconcile.Error{
			Kind:   reconcile.Inconsistent,
			Order:  number,
			Reason: fmt.Sprintf("stored transaction %v cannot be read", tr.Code),
			Err:    err,
		}
	}
	return o, nil
}

// Commit implements reconcile.Ledger. Nothing is saved if the transaction did not change.
func (b *Book) Commit(u reconcile.OrderUpdater) error {
	o, ok := u.(*Order)
	if !ok || o.book != b {
		return ErrForeignOrder
	}
	if o.discarded {
		return ErrDiscarded
	}

	tr := o.encode()
	if err := tr.Validate(); err != nil {
		return fmt.Errorf("order %v: %w", o.number, err)
	}
	if o.orig != nil && o.orig.String() == tr.String() {
		return nil
	}

	if err := b.store.Save(tr); err != nil {
		return fmt.Errorf("save order %v: %w", o.number, err)
	}
	o.orig = tr.CleanCopy()
	o.header.Code = tr.Code
	o.header.KVPairs[KeyRevision] = tr.KVPairs[KeyRevision]
	return nil
}

// Discard implements reconcile.Ledger. Changes only ever live in the updater, so there is nothing to undo.
func (b *Book) Discard(u reconcile.OrderUpdater) {
	if o, ok := u.(*Order); ok && o.book == b {
		o.discarded = true
	}
}
