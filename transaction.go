/*
Copyright 2021 by Milo Christiansen

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
Package ledger contains the transaction model shared by the order importer and the
stores that persist it.

Transactions follow the Ledger CLI file format closely enough that a journal written
by this package can be read with Ledger again. Amounts are integers in minor currency
units (cents) so that scraped prices survive a round trip exactly.

Postings may carry metadata (; Key: Value lines directly under the posting). The
importer uses this to keep per-item and per-shipment details on the lines they
describe.
*/
package ledger

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Status is the clearing state of a transaction or posting.
type Status int

// Status constants for Transaction.Status and Posting.Status
const (
	StatusUndefined = Status(iota)
	StatusPending
	StatusClear
)

// Transaction is a single transaction from a ledger file.
type Transaction struct {
	Date        time.Time // 2020/10/10
	ClearDate   time.Time // =2020/10/10 (optional)
	Status      Status    //   | ! | * (optional)
	Code        string    // ( Stuff ) (optional), used as the transaction ID
	Description string    // Spent monie on stuf

	Postings []Posting

	Comments []string // ; Stuff...

	Tags    map[string]bool   // ; :tag:tag:tag:
	KVPairs map[string]string // ; Key: Value

	Line int // The line number where the transaction starts.
}

// Posting is a single line item in a Transaction.
type Posting struct {
	Status  Status            //   | ! | *  (optional)
	Account string            // Account:Name
	Value   int64             // $20.00 (currently only supporting USD style amounts, in cents)
	Null    bool              // True if the Value is implied. Value may or may not contain a valid amount.
	Note    string            // ; Stuff
	Meta    map[string]string // ; Key: Value lines following the posting
}

// CleanCopy takes a perfect copy of the transaction object, safe for editing without making any changes to the parent.
func (t *Transaction) CleanCopy() *Transaction {
	nt := *t
	nt.Postings = slices.Clone(t.Postings)
	for i := range nt.Postings {
		nt.Postings[i] = *t.Postings[i].CleanCopy()
	}
	nt.Comments = slices.Clone(t.Comments)
	nt.Tags = maps.Clone(t.Tags)
	nt.KVPairs = maps.Clone(t.KVPairs)
	return &nt
}

// CleanCopy returns a copy of the posting that shares no memory with the original.
func (p *Posting) CleanCopy() *Posting {
	np := *p
	np.Meta = maps.Clone(p.Meta)
	return &np
}

// Balance ensures that all postings in the transaction add up to 0 or there is a single null posting.
// Returns false, nil if there is more than one null posting, otherwise returns the ending balances of
// all accounts with postings and true if the transaction balances to 0 or there was a null posting.
func (t *Transaction) Balance() (bool, map[string]int64) {
	bal := int64(0)
	null := -1
	accounts := map[string]int64{}

	for i, p := range t.Postings {
		if p.Null && null != -1 {
			return false, nil // Multiple null postings
		}
		if p.Null {
			null = i
			continue
		}
		bal += p.Value
		accounts[p.Account] += p.Value
	}
	if null != -1 {
		accounts[t.Postings[null].Account] += -bal
		return true, accounts
	}
	return bal == 0, accounts
}

// Canonicalize takes a transaction and sets the value of any null postings that may exist to
// the required value to make it balance. Returns an error if there are multiple null postings or
// if there are no null postings and the transaction does not balance.
func (t *Transaction) Canonicalize() error {
	bal := int64(0)
	null := -1

	for i, p := range t.Postings {
		if p.Null && null != -1 {
			return MultipleNullError([2]int{-1, t.Line})
		}
		if p.Null {
			null = i
			continue
		}
		bal += p.Value
	}
	if null != -1 {
		t.Postings[null].Value = -bal
		t.Postings[null].Null = false
		return nil
	}
	if bal != 0 {
		return BalanceError([2]int{-1, t.Line})
	}
	return nil
}

// Validate is like Canonicalize but leaves the transaction untouched. A single null posting is fine.
func (t *Transaction) Validate() error {
	return t.CleanCopy().Canonicalize()
}

// SumTransactions balances a list of transactions, and returns a map of accounts to their ending values.
func SumTransactions(ts []Transaction) (map[string]int64, error) {
	accounts := map[string]int64{}

	for i, t := range ts {
		ok, ac := t.Balance()
		if !ok {
			return nil, BalanceError([2]int{i, t.Line})
		}

		for k, v := range ac {
			accounts[k] += v
		}
	}

	return accounts, nil
}

type sumTree struct {
	children map[string]*sumTree
	value    int64
}

func (st *sumTree) render(name, lvl, pad string, res [][]string) [][]string {
	if len(st.children) == 1 {
		for key, child := range st.children {
			return child.render(name+":"+key, lvl, pad, res)
		}
	}

	padding := ""
	if name != "" {
		padding = pad
		res = append(res, []string{lvl + strings.TrimPrefix(name, ":"), FormatValue(st.value)})
	}

	keys := maps.Keys(st.children)
	sort.Strings(keys)

	for _, key := range keys {
		res = st.children[key].render(key, lvl+padding, pad, res)
	}
	return res
}

// FormatSums takes a map of accounts to sums and turns it into a list of name/value pairs
// with indentation applied to the names.
func FormatSums(accounts map[string]int64, pad string) [][]string {
	root := &sumTree{children: map[string]*sumTree{}}

	for account, value := range accounts {
		parts := strings.Split(account, ":")

		level := root
		for _, part := range parts {
			if level.children == nil {
				level.children = map[string]*sumTree{}
			}
			if level.children[part] == nil {
				level.children[part] = &sumTree{}
			}
			level.children[part].value += value
			level = level.children[part]
		}
	}

	return root.render("", "", pad, nil)
}

// String renders the transaction in ledger file syntax. Tags, key/value pairs, and posting
// metadata are written in sorted order so that an unchanged transaction always renders the same.
func (t *Transaction) String() string {
	buf := new(bytes.Buffer)

	buf.WriteString(t.Date.Format("2006/01/02"))
	if !t.ClearDate.IsZero() {
		fmt.Fprintf(buf, "=%v", t.ClearDate.Format("2006/01/02"))
	}

	switch t.Status {
	case StatusClear:
		buf.WriteString(" * ")
	case StatusPending:
		buf.WriteString(" ! ")
	default:
		buf.WriteString("   ")
	}

	if t.Code != "" {
		fmt.Fprintf(buf, "(%v) ", t.Code)
	}

	fmt.Fprintf(buf, "%v\n", t.Description)

	// We don't know if the comments and postings were interleaved in any way,
	// so canonically we will just do the comments and metadata first.
	for _, line := range t.Comments {
		fmt.Fprintf(buf, "\t; %v\n", line)
	}
	if len(t.Tags) != 0 {
		tags := maps.Keys(t.Tags)
		sort.Strings(tags)
		fmt.Fprintf(buf, "\t; :%v:\n", strings.Join(tags, ":"))
	}
	writeKV(buf, "\t", t.KVPairs)

	for _, p := range t.Postings {
		fmt.Fprintf(buf, "\t%v\n", p.String())
		writeKV(buf, "\t    ", p.Meta)
	}

	return buf.String()
}

func writeKV(buf *bytes.Buffer, indent string, kv map[string]string) {
	keys := maps.Keys(kv)
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%v; %v: %v\n", indent, k, kv[k])
	}
}

// String renders the posting line, without any metadata.
func (p *Posting) String() string {
	buf := new(bytes.Buffer)

	switch p.Status {
	case StatusClear:
		buf.WriteString("* ")
	case StatusPending:
		buf.WriteString("! ")
	}

	if !p.Null {
		fmt.Fprintf(buf, "%-48s  ", p.Account)

		if p.Value >= 0 {
			buf.WriteString(" ")
		}

		buf.WriteString(FormatValue(p.Value))
	} else {
		buf.WriteString(p.Account)
	}

	if p.Note != "" {
		fmt.Fprintf(buf, "  ; %v", p.Note)
	}

	return buf.String()
}

// TransactionDateSorter is a helper for sorting a list of transactions by date.
type TransactionDateSorter []Transaction

func (tds TransactionDateSorter) Len() int {
	return len(tds)
}

func (tds TransactionDateSorter) Less(i, j int) bool {
	return tds[i].Date.Before(tds[j].Date)
}

func (tds TransactionDateSorter) Swap(i, j int) {
	tds[i], tds[j] = tds[j], tds[i]
}

// Error types

// BalanceError is returned by functions that validate transactions in some way when the transaction isn't balanced.
type BalanceError [2]int

func (err BalanceError) Error() string {
	if err[0] < 0 {
		return fmt.Sprintf("Transaction (defined on line %v) does not balance.", err[1])
	}
	return fmt.Sprintf("Transaction %v (defined on line %v) does not balance.", err[0], err[1])
}

// MultipleNullError is returned by functions that validate transactions in some way when the transaction has more
// than one null posting.
type MultipleNullError [2]int

func (err MultipleNullError) Error() string {
	if err[0] < 0 {
		return fmt.Sprintf("Transaction (defined on line %v) has multiple null postings.", err[1])
	}
	return fmt.Sprintf("Transaction %v (defined on line %v) has multiple null postings.", err[0], err[1])
}
