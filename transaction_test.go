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

package ledger_test

import (
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledger "github.com/westbury/jmoney-sub007"
)

func TestParseValue(t *testing.T) {
	cases := map[string]int64{
		"12.5":  1250,
		"-0.99": -99,
		"1200":  120000,
		".07":   7,
		" 3.00": 300,
	}
	for in, want := range cases {
		v, err := ledger.ParseValue(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, v, in)
	}

	_, err := ledger.ParseValue("1.005")
	assert.Equal(t, ledger.ErrPrecision("1.005"), err)
	_, err = ledger.ParseValue("twelve")
	assert.Error(t, err)

	for _, in := range []string{"92233720368547758.08", "100000000000000000000", "-92233720368547758.09"} {
		_, err = ledger.ParseValue(in)
		assert.Equal(t, ledger.ErrRange(in), err, in)
	}
	v, err := ledger.ParseValue("-92233720368547758.08")
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), v)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "$12.34", ledger.FormatValue(1234))
	assert.Equal(t, "$-0.05", ledger.FormatValue(-5))
	assert.Equal(t, "0.00", ledger.FormatValueNumber(0))
}

func TestRecategorize(t *testing.T) {
	matchers := []ledger.Matcher{
		{R: regexp.MustCompile(`(?i)paperback|hardcover`), Account: "Expenses:Books"},
		{R: regexp.MustCompile(`(?i)cable`), Account: "Expenses:Electronics"},
	}

	tr := ledger.Transaction{
		Date: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		Postings: []ledger.Posting{
			{Account: "Expenses:Unsorted", Value: 1999, Meta: map[string]string{"Desc": "Go (Paperback)"}},
			{Account: "Expenses:Unsorted", Value: 500, Meta: map[string]string{"Desc": "Teapot"}},
			{Account: "Expenses:Gifts", Value: 300, Meta: map[string]string{"Desc": "USB cable"}},
			{Account: "Liabilities:Visa", Value: -2799},
		},
	}

	assert.True(t, tr.Recategorize("Expenses:Unsorted", "Desc", matchers))
	assert.Equal(t, "Expenses:Books", tr.Postings[0].Account)
	assert.Equal(t, "Expenses:Unsorted", tr.Postings[1].Account)
	assert.Equal(t, "Expenses:Gifts", tr.Postings[2].Account, "only the given account is moved")
	assert.False(t, tr.Recategorize("Expenses:Unsorted", "Desc", matchers))
}

func TestTransactionString(t *testing.T) {
	tr := ledger.Transaction{
		Date:        time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		Code:        "x1",
		Description: "Order",
		Tags:        map[string]bool{"b": true, "a": true},
		KVPairs:     map[string]string{"Z": "last", "A": "first"},
		Postings: []ledger.Posting{
			{Account: "Expenses:Books", Value: 1999, Note: "Go", Meta: map[string]string{"Kind": "item"}},
			{Account: "Liabilities:Visa", Status: ledger.StatusPending, Null: true},
		},
	}

	want := "2024/03/05   (x1) Order\n" +
		"\t; :a:b:\n" +
		"\t; A: first\n" +
		"\t; Z: last\n" +
		"\tExpenses:Books                                     $19.99  ; Go\n" +
		"\t    ; Kind: item\n" +
		"\t! Liabilities:Visa\n"
	assert.Equal(t, want, tr.String())

	cp := tr.CleanCopy()
	cp.Postings[0].Meta["Kind"] = "changed"
	assert.Equal(t, "item", tr.Postings[0].Meta["Kind"])
	assert.NoError(t, tr.Validate())
	assert.True(t, tr.Postings[1].Null, "Validate leaves the transaction alone")
}
