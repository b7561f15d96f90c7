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

package ledger

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/westbury/jmoney-sub007/parse/lex"
)

// File hold a parsed ledger file stored as lists of Directives and Transactions.
type File struct {
	T []Transaction
	D []Directive
}

// ErrImproperInterleave is returned by File.Format if the lists do not interleave properly.
// Caused by bad FoundBefore values in the directives.
var ErrImproperInterleave = errors.New("Ledger file transaction and directive lists do not interleave properly.")

// Format writes out a ledger file, interleaving the transactions and directives according to the
// "FoundBefore" values in the directives. The directive list is sorted on the FoundBefore values as
// part of this operation.
func (f *File) Format(w io.Writer) error {
	// Use a stable sort to be minimally disruptive.
	sort.SliceStable(f.D, func(i, j int) bool {
		return f.D[i].FoundBefore < f.D[j].FoundBefore
	})

	ctr, cdr := 0, 0
	for ctr < len(f.T) || cdr < len(f.D) {
		// If we have remaining directives and the next directive goes before the current transaction
		if cdr < len(f.D) && f.D[cdr].FoundBefore <= ctr {
			if _, err := fmt.Fprintf(w, "\n%v", f.D[cdr].String()); err != nil {
				return err
			}
			cdr++
			continue
		}

		// If we have remaining directives and we are out of transactions
		if ctr >= len(f.T) {
			return ErrImproperInterleave
		}

		if _, err := fmt.Fprintf(w, "\n%v", f.T[ctr].String()); err != nil {
			return err
		}
		ctr++
	}
	return nil
}

// ErrMalformedAccountName is returned by File.Accounts if an account name is malformed.
type ErrMalformedAccountName struct {
	Name     string
	Location lex.Location
}

func (err ErrMalformedAccountName) Error() string {
	return fmt.Sprintf("Malformed account name (%s) at %s", err.Name, err.Location)
}

// Accounts returns a slice of all account directives, in the order they are found in D.
// If any account directives fail to parse, Accounts returns an error.
func (f *File) Accounts() ([]Account, error) {
	accts := []Account{}
	for dIx, d := range f.D {
		if d.Type != "account" {
			continue
		}

		acct := Account{
			Name:           d.Argument,
			FoundBefore:    d.FoundBefore,
			Location:       d.Location,
			DirectiveIndex: dIx,
		}

		// filter out some things that cause funny behavior
		if strings.Contains(acct.Name, "  ") || strings.ContainsAny(acct.Name, ";\t") {
			return nil, ErrMalformedAccountName{acct.Name, acct.Location}
		}

		for sdIx, sd := range d.Lines {
			switch {
			case strings.HasPrefix(sd, "default"):
				// ledger is lax about directive parsing
				acct.Default = true
			case strings.HasPrefix(sd, "alias"):
				alias := strings.TrimSpace(sd[len("alias"):])
				if strings.Contains(alias, "  ") || strings.ContainsAny(alias, ";\t") {
					return nil, ErrMalformedAccountName{
						Name:     alias,
						Location: acct.Location.L(acct.Location.Line() + uint64(sdIx) + 1),
					}
				}
				acct.Aliases = append(acct.Aliases, alias)
			case strings.HasPrefix(sd, "payee"):
				acct.Payees = append(acct.Payees, strings.TrimSpace(sd[len("payee"):]))
			case strings.HasPrefix(sd, "note"):
				acct.Note = strings.TrimSpace(sd[len("note"):])
			}
		}

		accts = append(accts, acct)
	}
	return accts, nil
}

// Account is a simple type representing an account directive. Subdirectives containing value expressions
// are not included.
type Account struct {
	Name    string   // The name of this account.
	Note    string   // The contents of the note subdirective.
	Aliases []string // One string for each alias subdirective.
	Payees  []string // One string for each payee subdirective.
	Default bool     // True if the default subdirective is present.

	FoundBefore    int          // The transaction index this account precedes.
	DirectiveIndex int          // The index of this account in the list of all directives. Calling File.Format may ruin this relationship.
	Location       lex.Location // Line number where this account starts.
}

// ParseMatchers builds item matchers from the payee subdirectives of the account directives in this file.
// Each payee line is a regular expression matched against item descriptions.
func (f *File) ParseMatchers() ([]Matcher, error) {
	accounts, err := f.Accounts()
	if err != nil {
		return nil, err
	}

	matchers := []Matcher{}
	for _, acct := range accounts {
		for _, reStr := range acct.Payees {
			re, err := regexp.Compile(reStr)
			if err != nil {
				return nil, err
			}

			matchers = append(matchers, Matcher{
				Account: acct.Name,
				R:       re,
			})
		}
	}
	return matchers, nil
}

// CleanCopy takes a perfect copy of the file object. Any edits to the returned File
// will not modify this method's receiver.
func (f *File) CleanCopy() *File {
	nf := &File{[]Transaction{}, []Directive{}}

	for _, tr := range f.T {
		nf.T = append(nf.T, *tr.CleanCopy())
	}

	for _, dir := range f.D {
		nf.D = append(nf.D, *dir.CleanCopy())
	}

	return nf
}

// StripHistory removes all edit history, leaving the last revision of each transaction at the
// position of its first revision. Transactions are identified by Code, transactions without one
// are kept as they are. This method assumes all directives are at the beginning of the file.
func (f *File) StripHistory() {
	newTrs := []Transaction{}
	trIxs := map[string]int{}
	for _, tr := range f.T {
		if tr.Code == "" {
			newTrs = append(newTrs, tr)
			continue
		}

		if idx, ok := trIxs[tr.Code]; ok {
			newTrs[idx] = tr
			continue
		}

		trIxs[tr.Code] = len(newTrs)
		newTrs = append(newTrs, tr)
	}

	f.T = newTrs
}
