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

package statement

import (
	"fmt"
	"time"

	ledger "github.com/westbury/jmoney-sub007"
	"github.com/westbury/jmoney-sub007/updater"
)

// Link pairs determined order charges on chargeAccount with statement lines of the same amount posted
// within window of the order date, picking the closest date. The charge posting is cleared and records the
// line's FITID and posting date; the line gets a revision without postings that names the order. Returns the
// number of charges linked.
func Link(store updater.Store, chargeAccount string, window time.Duration) (int, error) {
	trs, err := store.Transactions()
	if err != nil {
		return 0, err
	}

	lines := []*ledger.Transaction{}
	orders := []*ledger.Transaction{}
	for i := range trs {
		tr := &trs[i]
		switch {
		case tr.KVPairs[KeyFITID] != "" && tr.KVPairs[KeyAccount] == chargeAccount && tr.KVPairs[KeyOrder] == "" && len(tr.Postings) > 0:
			lines = append(lines, tr)
		case tr.KVPairs[updater.KeyOrderNumber] != "":
			orders = append(orders, tr)
		}
	}

	used := map[*ledger.Transaction]bool{}
	n := 0
	for _, order := range orders {
		changed := false
		for i := range order.Postings {
			p := &order.Postings[i]
			if !linkable(p, chargeAccount) {
				continue
			}

			best := closest(lines, used, p.Value, order.Date, chargeAccount, window)
			if best == nil {
				continue
			}
			used[best] = true

			p.Status = ledger.StatusClear
			p.Meta[KeyFITID] = best.KVPairs[KeyFITID]
			p.Meta[MetaPosted] = best.Date.Format("2006/01/02")
			changed = true
			n++

			merged := best.CleanCopy()
			merged.KVPairs[KeyOrder] = order.Code
			merged.Postings = nil
			if err := store.Save(merged); err != nil {
				return n, fmt.Errorf("merge statement line %v: %w", best.KVPairs[KeyFITID], err)
			}
		}

		if changed {
			if err := store.Save(order); err != nil {
				return n, fmt.Errorf("save order %v: %w", order.KVPairs[updater.KeyOrderNumber], err)
			}
		}
	}
	return n, nil
}

func linkable(p *ledger.Posting, chargeAccount string) bool {
	return p.Account == chargeAccount &&
		p.Meta[updater.MetaKind] == updater.KindCharge &&
		p.Meta[KeyFITID] == "" &&
		!p.Null &&
		p.Status == ledger.StatusUndefined &&
		p.Value != 0
}

func closest(lines []*ledger.Transaction, used map[*ledger.Transaction]bool, value int64, date time.Time, account string, window time.Duration) *ledger.Transaction {
	var best *ledger.Transaction
	var bestDist time.Duration
	for _, l := range lines {
		if used[l] || lineValue(l, account) != value {
			continue
		}

		dist := l.Date.Sub(date)
		if dist < 0 {
			dist = -dist
		}
		if dist > window {
			continue
		}
		if best == nil || dist < bestDist {
			best, bestDist = l, dist
		}
	}
	return best
}

func lineValue(l *ledger.Transaction, account string) int64 {
	v := int64(0)
	for _, p := range l.Postings {
		if p.Account == account && !p.Null {
			v += p.Value
		}
	}
	return v
}
