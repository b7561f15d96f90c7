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

package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		m    *Marketplace
		in   string
		want int64
	}{
		{Amazon, "$19.99", 1999},
		{Amazon, "$1,234.50", 123450},
		{Amazon, "$1,234,567", 123456700},
		{Amazon, "$999,000.5", 99900050},
		{Amazon, "-$5.00", -500},
		{Amazon, "$-5.00", -500},
		{Amazon, "($3.10)", -310},
		{Amazon, "12", 1200},
		{Amazon, ".5", 50},
		{AmazonUK, "£7.49", 749},
		{AmazonUK, "GBP 10.00", 1000},
		{EBay, "US $12.00", 1200},
		{EBay, "US$0.99", 99},
	}
	for _, c := range cases {
		got, err := c.m.ParseAmount(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseAmountErrors(t *testing.T) {
	_, err := Amazon.ParseAmount("€5.00")
	assert.IsType(t, ErrUnknownCurrency(""), err)

	_, err = AmazonUK.ParseAmount("$5.00")
	assert.IsType(t, ErrUnknownCurrency(""), err)

	for _, in := range []string{"", "$", "$1.2.3", "$1.999", "$abc", "$1e3",
		"$12,34", "$1,2,3.45", "$,5.00", "$1,,000.00", "$1234,567.00", "$1,000,", "$1,000.00,", "$100000000000000000000"} {
		_, err = Amazon.ParseAmount(in)
		assert.IsType(t, ErrBadAmount(""), err, in)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"March 5, 2024", "Mar 5, 2024", "Tuesday, March 5, 2024", "03/05/2024", "  March  5,   2024 "} {
		got, err := Amazon.ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}

	got, err := AmazonUK.ParseDate("05/03/2024")
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = EBay.ParseDate("Mar 05, 2024")
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	_, err = Amazon.ParseDate("5th of March")
	assert.IsType(t, ErrBadDate(""), err)
}

func TestQuantity(t *testing.T) {
	q, err := ParseQuantity(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, q)

	for _, in := range []string{"0", "-1", "two", ""} {
		_, err := ParseQuantity(in)
		assert.IsType(t, ErrBadQuantity(""), err, in)
	}

	q, rest, err := ExtractQuantity("Blue widget, Qty 3")
	require.NoError(t, err)
	assert.Equal(t, 3, q)
	assert.Equal(t, "Blue widget", rest)

	q, rest, err = ExtractQuantity("Quantity: 12 Sold by: Widget Co")
	require.NoError(t, err)
	assert.Equal(t, 12, q)
	assert.Equal(t, "Sold by: Widget Co", rest)

	q, rest, err = ExtractQuantity("Nothing here")
	require.NoError(t, err)
	assert.Equal(t, 0, q)
	assert.Equal(t, "Nothing here", rest)

	_, _, err = ExtractQuantity("qty 0")
	assert.IsType(t, ErrBadQuantity(""), err)
}

func TestExtractSellerAndMovie(t *testing.T) {
	assert.Equal(t, "Widget Co", ExtractSeller("Return eligible\nSold by: Widget Co\n"))
	assert.Equal(t, "Amazon.com Services LLC", ExtractSeller("sold by Amazon.com Services LLC"))
	assert.Equal(t, "", ExtractSeller("Return eligible through Jan 5"))

	assert.True(t, IsMovie("Casablanca [Blu-ray]"))
	assert.True(t, IsMovie("The Third Man (DVD)"))
	assert.False(t, IsMovie("Dvorak keyboard"))
}

func TestLookup(t *testing.T) {
	m, err := Lookup(" Amazon.co.uk ")
	require.NoError(t, err)
	assert.Same(t, AmazonUK, m)
	assert.True(t, EBay.Flat)
	assert.True(t, Amazon.Reaches("payment"))
	assert.False(t, AmazonUK.Reaches("payment"))

	_, err = Lookup("etsy")
	assert.IsType(t, ErrUnknownMarketplace(""), err)
}
