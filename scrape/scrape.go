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
Package scrape holds the field hierarchy produced by the page extractor: orders, their shipments, and
the items in each shipment. All values are the raw strings found on the page, nothing is parsed here.

A Batch is one paste worth of orders from a single page type.
*/
package scrape

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Batch is every order found on one scraped page.
type Batch struct {
	Marketplace string        `json:"marketplace"`
	Source      string        `json:"source"` // listing, detail, or payment
	Orders      []OrderFields `json:"orders"`
}

// OrderFields is one order.
type OrderFields struct {
	OrderNumber string           `json:"orderNumber"`
	OrderDate   string           `json:"orderDate,omitempty"`
	Total       string           `json:"total,omitempty"`
	Payment     *PaymentFields   `json:"payment,omitempty"` // Only on order level payment pages.
	Shipments   []ShipmentFields `json:"shipments,omitempty"`
}

// ShipmentFields is one shipment of an order. For flat marketplaces there is normally a single record
// holding all the items.
type ShipmentFields struct {
	ExpectedDate string         `json:"expectedDate,omitempty"`
	DeliveryDate string         `json:"deliveryDate,omitempty"`
	IsReturned   bool           `json:"isReturned,omitempty"`
	IsExchanged  bool           `json:"isExchanged,omitempty"`
	Payment      *PaymentFields `json:"payment,omitempty"`
	Items        []ItemFields   `json:"items,omitempty"`
}

// ItemFields is one line item.
type ItemFields struct {
	Description    string `json:"description"`
	UnitPrice      string `json:"unitPrice"`
	Quantity       string `json:"quantity,omitempty"`
	Detail         string `json:"detail,omitempty"` // Free text, may hide a quantity or seller.
	SellerName     string `json:"sellerName,omitempty"`
	Author         string `json:"author,omitempty"`
	ReturnDeadline string `json:"returnDeadline,omitempty"`
	ExternalID     string `json:"externalId,omitempty"` // ASIN, ISBN, or item number
	ImageCode      string `json:"imageCode,omitempty"`
	IsOverseas     bool   `json:"isOverseas,omitempty"`
}

// PaymentFields are the money and shipping details from detail and payment pages.
type PaymentFields struct {
	Subtotal        string `json:"subtotal,omitempty"`
	Discount        string `json:"discount,omitempty"`
	Giftcard        string `json:"giftcard,omitempty"`
	Promotion       string `json:"promotion,omitempty"`
	ImportFees      string `json:"importFees,omitempty"`
	GrandTotal      string `json:"grandTotal,omitempty"`
	RefundTotal     string `json:"refundTotal,omitempty"`
	LastFour        string `json:"lastFour,omitempty"`
	Postage         string `json:"postage,omitempty"`
	Carrier         string `json:"carrier,omitempty"`
	Tracking        string `json:"tracking,omitempty"`
	ShippingService string `json:"shippingService,omitempty"`
}

// ErrNoMarketplace is returned by Load when a batch does not say where it came from.
var ErrNoMarketplace = errors.New("Scrape batch does not name a marketplace.")

// ErrNoSource is returned by Load when a batch does not say which page it came from.
var ErrNoSource = errors.New("Scrape batch does not name a source page.")

// Load reads one JSON encoded batch. Unknown fields are an error, since they most likely mean the
// extractor and the importer disagree about the format.
func Load(r io.Reader) (*Batch, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	b := &Batch{}
	if err := dec.Decode(b); err != nil {
		return nil, err
	}

	b.Marketplace = strings.TrimSpace(b.Marketplace)
	b.Source = strings.ToLower(strings.TrimSpace(b.Source))
	if b.Marketplace == "" {
		return nil, ErrNoMarketplace
	}
	if b.Source == "" {
		return nil, ErrNoSource
	}
	return b, nil
}

// ItemCount returns the number of item records in the order.
func (o *OrderFields) ItemCount() int {
	n := 0
	for _, s := range o.Shipments {
		n += len(s.Items)
	}
	return n
}
