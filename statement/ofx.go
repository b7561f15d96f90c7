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
Package statement brings card and bank statements into a store and links them to order charges.

Statement lines are imported as transactions of their own, keyed by the bank's FITID so importing the same
statement twice is harmless. Link then finds the statement line for each determined order charge, marks
the charge cleared, and retires the statement line, leaving the order transaction as the single record
of the payment.
*/
package statement

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aclindsa/ofxgo"

	ledger "github.com/westbury/jmoney-sub007"
	"github.com/westbury/jmoney-sub007/updater"
)

// Statement line key/value pairs, and the charge posting metadata Link adds.
const (
	KeyFITID   = "FITID"
	KeyAccount = "Account"
	KeyTrnType = "TrnTyp"
	KeyName    = "Name"
	KeyMemo    = "Memo"
	KeyOrder   = "Order" // Code of the order a line was merged into.
	MetaPosted = "Posted"
)

// DescSrc selects the OFX field used for transaction descriptions.
type DescSrc int

// Options for DescSrc.
const (
	DescName     DescSrc = iota
	DescMemo             // because some banks put the useful text in the memo
	DescNameMemo         // because some banks output braindead OFX files
)

// ErrNoStatements is returned by Import for OFX files with neither bank nor card statements.
var ErrNoStatements = errors.New("No banks or credit cards.")

// ErrUnexpectedResponse is returned by Import for OFX statement messages of an unknown type.
var ErrUnexpectedResponse = errors.New("Unexpected response type.")

// Import stores the statement lines from an OFX file that are not already in the store. Each becomes a
// transaction with a posting to account and a null posting to the account the matchers pick for its
// description (defaultAccount if none match). Returns the number of lines imported.
func Import(store updater.Store, r io.Reader, src DescSrc, account, defaultAccount string, matchers []ledger.Matcher) (int, error) {
	resp, err := ofxgo.ParseResponse(r)
	if err != nil {
		return 0, err
	}
	if len(resp.Bank) == 0 && len(resp.CreditCard) == 0 {
		return 0, ErrNoStatements
	}

	existing, err := store.Transactions()
	if err != nil {
		return 0, err
	}
	seen := map[string]bool{}
	for _, tr := range existing {
		if tr.KVPairs[KeyFITID] != "" && tr.KVPairs[KeyAccount] == account {
			seen[tr.KVPairs[KeyFITID]] = true
		}
	}

	n := 0
	for _, msg := range append(resp.Bank, resp.CreditCard...) {
		var list *ofxgo.TransactionList
		switch m := msg.(type) {
		case *ofxgo.StatementResponse:
			list = m.BankTranList
		case *ofxgo.CCStatementResponse:
			list = m.BankTranList
		default:
			return n, ErrUnexpectedResponse
		}
		if list == nil {
			continue
		}

		for _, str := range list.Transactions {
			fitid := string(str.FiTID)
			if seen[fitid] {
				continue
			}

			tr, err := line(str, src, account, defaultAccount, matchers)
			if err != nil {
				return n, err
			}
			if err := store.Save(tr); err != nil {
				return n, fmt.Errorf("save statement line %v: %w", fitid, err)
			}
			seen[fitid] = true
			n++
		}
	}
	return n, nil
}

func line(str ofxgo.Transaction, src DescSrc, account, defaultAccount string, matchers []ledger.Matcher) (*ledger.Transaction, error) {
	v, err := ledger.ParseValue(str.TrnAmt.String())
	if err != nil {
		return nil, err
	}

	desc := ""
	switch src {
	case DescName:
		desc = string(str.Name)
	case DescMemo:
		desc = string(str.Memo)
	case DescNameMemo:
		desc = string(str.Name + str.Memo)
	}

	kv := map[string]string{
		KeyFITID:   string(str.FiTID),
		KeyTrnType: str.TrnType.String(),
		KeyAccount: account,
	}
	// Empty values would not survive a trip through a ledger file.
	if str.Memo != "" {
		kv[KeyMemo] = string(str.Memo)
	}
	if str.Name != "" {
		kv[KeyName] = string(str.Name)
	}

	posted := str.DtPosted.Time
	return &ledger.Transaction{
		Description: desc,
		Date:        time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC),
		Status:      ledger.StatusUndefined,
		Tags:        map[string]bool{},
		KVPairs:     kv,
		Postings: []ledger.Posting{
			{
				Account: account,
				Value:   v,
			},
			{
				Account: ledger.MatchAccount(matchers, desc, defaultAccount),
				Null:    true,
			},
		},
	}, nil
}
