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
Package importer runs scrape passes against an import session.

Each order may be imported several times from different pages (the order listing, the order detail page,
the payment page). Every pass matches the scraped items against what the order already has, fills in the
fields the page offers, and leaves the order balanced. Failures are confined to the order they happen in:
the order is discarded, the rest of the batch carries on. Nothing is persisted until Finish.
*/
package importer

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/westbury/jmoney-sub007/market"
	"github.com/westbury/jmoney-sub007/reconcile"
	"github.com/westbury/jmoney-sub007/scrape"
)

// Importer imports scraped batches from one marketplace. It is not safe for concurrent use.
type Importer struct {
	market  *market.Marketplace
	session *reconcile.Session
	states  map[string]Source
	log     *slog.Logger
}

// New creates an importer writing to l. A nil logger means slog.Default().
func New(m *market.Marketplace, l reconcile.Ledger, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	return &Importer{
		market:  m,
		session: reconcile.NewSession(l),
		states:  map[string]Source{},
		log:     log.With("market", m.Name),
	}
}

// Import runs one pass over every order in a batch scraped from src. The returned error is only set for
// failures that concern the whole import (a broken store, for example); the report is valid up to that
// point.
func (imp *Importer) Import(src Source, orders []scrape.OrderFields) (*Report, error) {
	log := imp.log.With("batch", uuid.NewString(), "source", src.String())
	rep := &Report{}

	if !imp.market.Reaches(src.String()) {
		reason := fmt.Sprintf("%v has no %v pages", imp.market.Name, src)
		for _, of := range orders {
			log.Warn("skipping order", "order", of.OrderNumber, "reason", reason)
			rep.add(Result{Order: of.OrderNumber, Source: src, Outcome: Skipped, Reason: reason})
		}
		return rep, nil
	}

	for i := range orders {
		res, err := imp.importOrder(log, src, &orders[i])
		if err != nil {
			return rep, err
		}
		rep.add(res)
	}

	log.Info("batch imported",
		"imported", rep.Count(Imported),
		"skipped", rep.Count(Skipped),
		"inconsistent", rep.Count(Inconsistent),
		"failed", rep.Count(Failed),
	)
	return rep, nil
}

func (imp *Importer) importOrder(log *slog.Logger, src Source, of *scrape.OrderFields) (Result, error) {
	number := strings.TrimSpace(of.OrderNumber)
	res := Result{Order: number, Source: src}

	o, err := imp.importFields(of)
	if err == nil {
		if imp.states[number] < src {
			imp.states[number] = src
		}
		res.Outcome = Imported
		log.Info("order imported", "order", number, "state", imp.states[number].String())

		if d, ok := o.DateConflict(); ok {
			stored, _ := o.Date()
			log.Warn("order date differs from the recorded date", "order", number,
				"recorded", stored.Format(time.DateOnly), "scraped", d.Format(time.DateOnly))
		}
		return res, nil
	}

	rerr, ok := reconcile.AsError(err)
	if !ok {
		return res, fmt.Errorf("order %v: %w", number, err)
	}

	if o == nil {
		o = imp.session.Lookup(number)
	}
	if o != nil {
		imp.session.Discard(o)
	}
	delete(imp.states, number)

	res.Reason = rerr.Reason
	if rerr.Err != nil {
		res.Reason += ": " + rerr.Err.Error()
	}

	switch rerr.Kind {
	case reconcile.Inconsistent:
		res.Outcome = Inconsistent
		log.Error("reconciliation inconsistency", "order", number, "category", "data-integrity", "reason", res.Reason)
	case reconcile.Malformed:
		res.Outcome = Failed
		log.Warn("skipping order", "order", number, "kind", rerr.Kind.String(), "reason", res.Reason)
	default:
		res.Outcome = Skipped
		log.Warn("skipping order", "order", number, "kind", rerr.Kind.String(), "reason", res.Reason)
	}
	return res, nil
}

// State returns the furthest source the order has been imported from in this session.
func (imp *Importer) State(number string) Source {
	return imp.states[number]
}

// Session returns the underlying import session.
func (imp *Importer) Session() *reconcile.Session {
	return imp.session
}

// Finish commits every order still in the session.
func (imp *Importer) Finish() (*Report, error) {
	rep := &Report{}
	for _, o := range imp.session.Orders() {
		number := o.Number()
		if err := imp.session.Commit(o); err != nil {
			return rep, fmt.Errorf("commit order %v: %w", number, err)
		}
		rep.add(Result{Order: number, Source: imp.states[number], Outcome: Imported})
	}

	imp.log.Info("import finished", "orders", len(rep.Results))
	return rep, nil
}
