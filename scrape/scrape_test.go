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

package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listing = `{
	"marketplace": "Amazon",
	"source": " Listing ",
	"orders": [{
		"orderNumber": "111-2223334",
		"orderDate": "March 5, 2024",
		"total": "$24.99",
		"shipments": [{
			"deliveryDate": "March 9, 2024",
			"items": [
				{"description": "Widget", "unitPrice": "$19.99", "detail": "Sold by: Widget Co", "externalId": "B000123"},
				{"description": "Gadget", "unitPrice": "$5.00", "quantity": "2"}
			]
		}]
	}, {
		"orderNumber": "111-9999999",
		"payment": {"grandTotal": "$3.00", "lastFour": "1234"}
	}]
}`

func TestLoad(t *testing.T) {
	b, err := Load(strings.NewReader(listing))
	require.NoError(t, err)

	assert.Equal(t, "Amazon", b.Marketplace)
	assert.Equal(t, "listing", b.Source)
	require.Len(t, b.Orders, 2)

	o := b.Orders[0]
	assert.Equal(t, "111-2223334", o.OrderNumber)
	assert.Nil(t, o.Payment)
	assert.Equal(t, 2, o.ItemCount())
	assert.Equal(t, "B000123", o.Shipments[0].Items[0].ExternalID)
	assert.Equal(t, "2", o.Shipments[0].Items[1].Quantity)

	require.NotNil(t, b.Orders[1].Payment)
	assert.Equal(t, "1234", b.Orders[1].Payment.LastFour)
	assert.Equal(t, 0, b.Orders[1].ItemCount())
}

func TestLoadRejects(t *testing.T) {
	_, err := Load(strings.NewReader(`{"source": "listing", "orders": []}`))
	assert.ErrorIs(t, err, ErrNoMarketplace)

	_, err = Load(strings.NewReader(`{"marketplace": "EBay", "orders": []}`))
	assert.ErrorIs(t, err, ErrNoSource)

	_, err = Load(strings.NewReader(`{"marketplace": "EBay", "source": "listing", "shipping": "fast"}`))
	assert.Error(t, err)
}
