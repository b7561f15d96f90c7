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
	"strconv"
	"strings"
	"time"

	ledger "github.com/westbury/jmoney-sub007"
)

// Item fields kept on the item posting.
const (
	MetaDesc        = "Desc" // Marketplace description, the posting note holds the user's description.
	MetaQuantity    = "Qty"
	MetaOrderNumber = "OrderNumber"
	MetaExternalID  = "ASIN"
	MetaImage       = "Image"
	MetaSeller      = "Seller"
	MetaAuthor      = "Author"
	MetaDetail      = "Detail"
	MetaReturnBy    = "ReturnBy"
	MetaMovie       = "Movie"
)

// Item is a reconcile.ItemUpdater over one item posting.
type Item struct {
	ship *Shipment
	post ledger.Posting
}

func (it *Item) Amount() int64 {
	return it.post.Value
}

func (it *Item) SetAmount(v int64) {
	it.post.Value = v
}

// Quantity returns the stored quantity, 1 if there is none.
func (it *Item) Quantity() int {
	q, err := strconv.Atoi(it.post.Meta[MetaQuantity])
	if err != nil || q < 1 {
		return 1
	}
	return q
}

func (it *Item) SetQuantity(q int) {
	setMeta(it.post.Meta, MetaQuantity, strconv.Itoa(q))
}

func (it *Item) Description() string {
	return it.post.Note
}

func (it *Item) SetDescription(desc string) {
	it.post.Note = clean(desc)
}

func (it *Item) MarketDescription() string {
	return it.post.Meta[MetaDesc]
}

// SetMarketDescription stores the marketplace description. Items still on the default account are
// categorised by it.
func (it *Item) SetMarketDescription(desc string) {
	setMeta(it.post.Meta, MetaDesc, desc)

	def := it.ship.order.book.accounts.Default
	if it.post.Account == def {
		it.post.Account = ledger.MatchAccount(it.ship.order.book.matchers, it.post.Meta[MetaDesc], def)
	}
}

func (it *Item) SetOrderNumber(number string) { setMeta(it.post.Meta, MetaOrderNumber, number) }
func (it *Item) ExternalID() string           { return it.post.Meta[MetaExternalID] }
func (it *Item) SetExternalID(id string)      { setMeta(it.post.Meta, MetaExternalID, id) }
func (it *Item) SetImageCode(code string)     { setMeta(it.post.Meta, MetaImage, code) }
func (it *Item) SetSeller(seller string)      { setMeta(it.post.Meta, MetaSeller, seller) }
func (it *Item) SetAuthor(author string)      { setMeta(it.post.Meta, MetaAuthor, author) }
func (it *Item) SetDetail(detail string)      { setMeta(it.post.Meta, MetaDetail, detail) }

func (it *Item) SetDeliveryDate(date time.Time)   { setDate(it.post.Meta, MetaDelivered, date) }
func (it *Item) SetReturnDeadline(date time.Time) { setDate(it.post.Meta, MetaReturnBy, date) }
func (it *Item) SetMovie(movie bool)              { setFlag(it.post.Meta, MetaMovie, movie) }

// Metadata values must stay on one line.
func clean(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

func setMeta(meta map[string]string, key, value string) {
	value = clean(value)
	if value == "" {
		delete(meta, key)
		return
	}
	meta[key] = value
}

func setDate(meta map[string]string, key string, date time.Time) {
	if date.IsZero() {
		delete(meta, key)
		return
	}
	meta[key] = date.Format("2006/01/02")
}

func setFlag(meta map[string]string, key string, on bool) {
	if !on {
		delete(meta, key)
		return
	}
	meta[key] = "true"
}
