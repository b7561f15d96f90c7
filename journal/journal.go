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
Package journal keeps transactions in a ledger file.

The file is an append only log. Every transaction has an ID in its code field, an edit is written as a new
copy of the transaction with the same ID, and the last copy is the one in effect. ledger.File.StripHistory
compacts a journal down to its current state.
*/
package journal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	ledger "github.com/westbury/jmoney-sub007"
	"github.com/westbury/jmoney-sub007/parse"
	"github.com/westbury/jmoney-sub007/updater"
)

// Window is how far either side of the hinted date FindOrder looks before falling back to a full scan.
const Window = 60 * 24 * time.Hour

// Journal does all the work of keeping a clear consistent view of the underlying transaction log.
// This handles loading and appending to the log file and keeping the lookup lists in step.
type Journal struct {
	file *os.File // The ledger file, open for appending.

	// All the transactions in the ledger file, exactly as they appear and in source order.
	raw []ledger.Transaction

	// Directives from the file, used for account matchers.
	directives []ledger.Directive

	// The simplified transactions, all edits and such removed, in chronological order then source order
	// for same-date transactions.
	simple   []ledger.Transaction
	simpleid map[string]int // ID to index map for the simplified list.

	// All transactions by ID, each group is then in source order (so the last item in each list is the
	// authoritative version).
	byid map[string][]ledger.Transaction

	lock sync.RWMutex
}

// ErrMissingID is returned by Open if, during loading, a transaction is found that does not have an ID.
// Since all transactions written by this system are given IDs this means a corrupted or badly
// manually edited file. Go fix your mistake and try again.
var ErrMissingID = errors.New("Transaction missing ID.")

// Open loads the ledger file at path, creating it if needed. Only one Journal should have a given file open.
func Open(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}

	j, err := load(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("load %v: %w", path, err)
	}
	return j, nil
}

func load(f *os.File) (*Journal, error) {
	// Since the parser is a little dumb, slurp the whole file
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	file, err := parse.ParseLedger(string(data))
	if err != nil {
		return nil, err
	}

	j := &Journal{
		file:       f,
		raw:        file.T,
		directives: file.D,
		simpleid:   map[string]int{},
		byid:       map[string][]ledger.Transaction{},
	}
	for _, tr := range j.raw {
		if tr.Code == "" {
			return nil, ErrMissingID
		}

		// The last transaction with a given ID is the authoritative version of that transaction.
		// However, "source order" of the transaction list is defined by the first version of that
		// transaction.
		if _, ok := j.byid[tr.Code]; ok {
			j.byid[tr.Code] = append(j.byid[tr.Code], tr)
			j.simple[j.simpleid[tr.Code]] = tr
			continue
		}
		j.byid[tr.Code] = []ledger.Transaction{tr}
		j.simpleid[tr.Code] = len(j.simple)
		j.simple = append(j.simple, tr)
	}
	j.resort()
	return j, nil
}

// resort puts the simple list in chronological then source order and rebuilds its index.
func (j *Journal) resort() {
	sort.Stable(ledger.TransactionDateSorter(j.simple))
	j.simpleid = make(map[string]int, len(j.simple))
	for i, tr := range j.simple {
		j.simpleid[tr.Code] = i
	}
}

// Close closes the ledger file.
func (j *Journal) Close() error {
	return j.file.Close()
}

// Save writes a transaction to the log. A transaction without a Code is new and is given one, otherwise
// it is written as an edit of the transaction with that ID. Either way it gets a fresh revision ID.
func (j *Journal) Save(tr *ledger.Transaction) error {
	// Before we do anything, make sure the transaction is well formed.
	if err := tr.Validate(); err != nil {
		return err
	}

	j.lock.Lock()
	defer j.lock.Unlock()

	updater.Stamp(tr, func(code string) bool {
		_, ok := j.byid[code]
		return ok
	})
	saved := *tr.CleanCopy()

	// Write the transaction to the log file. This is the most likely step to fail somehow.
	if _, err := fmt.Fprintf(j.file, "\n%v", saved.String()); err != nil {
		return err
	}

	// Ok, the error conditions are out of the way, update our internal state.
	j.raw = append(j.raw, saved)
	j.byid[saved.Code] = append(j.byid[saved.Code], saved)
	if idx, ok := j.simpleid[saved.Code]; ok {
		j.simple[idx] = saved
	} else {
		j.simple = append(j.simple, saved)
	}
	j.resort()
	return nil
}

// FindOrder returns the current version of an order transaction. Transactions within Window of near are
// searched first, then everything.
func (j *Journal) FindOrder(market, number string, near time.Time) (*ledger.Transaction, error) {
	j.lock.RLock()
	defer j.lock.RUnlock()

	if !near.IsZero() {
		start := sort.Search(len(j.simple), func(i int) bool {
			return !j.simple[i].Date.Before(near.Add(-Window))
		})
		for i := start; i < len(j.simple) && !j.simple[i].Date.After(near.Add(Window)); i++ {
			if updater.IsOrder(&j.simple[i], market, number) {
				return j.simple[i].CleanCopy(), nil
			}
		}
	}

	for i := range j.simple {
		if updater.IsOrder(&j.simple[i], market, number) {
			return j.simple[i].CleanCopy(), nil
		}
	}
	return nil, nil
}

// Transactions returns the simplified transaction list (all edits resolved), sorted by date and then
// source order.
func (j *Journal) Transactions() ([]ledger.Transaction, error) {
	j.lock.RLock()
	defer j.lock.RUnlock()

	trs := make([]ledger.Transaction, 0, len(j.simple))
	for _, tr := range j.simple {
		trs = append(trs, *tr.CleanCopy())
	}
	return trs, nil
}

// History returns all existing versions of a transaction in source order. The last transaction in the
// list is the one currently in effect. In case of a non-existent ID, nil is returned.
func (j *Journal) History(id string) []ledger.Transaction {
	j.lock.RLock()
	defer j.lock.RUnlock()

	if _, ok := j.byid[id]; !ok {
		return nil
	}

	// Make a perfectly clean copy.
	trs := []ledger.Transaction{}
	for _, tr := range j.byid[id] {
		trs = append(trs, *tr.CleanCopy())
	}
	return trs
}

// Compact writes the journal without its edit history, directives first, transactions in source order.
func (j *Journal) Compact(w io.Writer) error {
	j.lock.RLock()
	f := (&ledger.File{T: j.raw, D: j.directives}).CleanCopy()
	j.lock.RUnlock()

	f.StripHistory()
	return f.Format(w)
}

// Matchers returns the item matchers defined by payee lines of the file's account directives.
func (j *Journal) Matchers() ([]ledger.Matcher, error) {
	j.lock.RLock()
	defer j.lock.RUnlock()

	f := &ledger.File{D: j.directives}
	return f.ParseMatchers()
}

// Accounts returns a sorted list of accounts used by current transactions.
func (j *Journal) Accounts() []string {
	j.lock.RLock()
	defer j.lock.RUnlock()

	accounts := map[string]bool{}
	for _, tr := range j.simple {
		for _, post := range tr.Postings {
			accounts[post.Account] = true
		}
	}

	list := []string{}
	for account := range accounts {
		list = append(list, account)
	}
	sort.Strings(list)
	return list
}

// Balances returns a ready to display balance overview for all accounts. Each element in the slice is a
// display row consisting of the name of the row with indentation applied and the formatted value.
func (j *Journal) Balances() ([][]string, error) {
	trs, err := j.Transactions()
	if err != nil {
		return nil, err
	}

	accounts, err := ledger.SumTransactions(trs)
	if err != nil {
		return nil, err
	}
	return ledger.FormatSums(accounts, "    "), nil
}
