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

package main

import (
	"fmt"
	"os"

	"github.com/westbury/jmoney-sub007/importer"
	"github.com/westbury/jmoney-sub007/market"
	"github.com/westbury/jmoney-sub007/tools"
	"github.com/westbury/jmoney-sub007/updater"
)

func main() {
	cfg := tools.HandleErrV(tools.LoadConfig())
	log := tools.NewLogger(os.Stderr, cfg.Log)

	fs := tools.CommonFlagSet(cfg, tools.FlagStore|tools.FlagMatchFile|tools.FlagDryRun, usage)
	fs.Parse()
	tools.HandleErrS(fs.Flags.NArg() == 0, "No batch files given.")

	store := tools.HandleErrV(tools.OpenStore(fs.Store))
	defer store.Close()
	matchers := tools.HandleErrV(tools.LoadMatchers(fs.MatchFile, store))

	target := tools.Store(store)
	if fs.DryRun {
		target = tools.HandleErrV(tools.DryRun(store))
	}

	// One importer (and so one session) per marketplace, finished after every batch is in.
	importers := map[string]*importer.Importer{}
	started := []*importer.Importer{}
	rep := &importer.Report{}
	for _, path := range fs.Flags.Args() {
		b := tools.HandleErrV(tools.LoadBatch(path))
		m := tools.HandleErrV(market.Lookup(b.Marketplace))
		src := tools.HandleErrV(importer.ParseSource(b.Source))

		imp, ok := importers[m.Name]
		if !ok {
			imp = importer.New(m, updater.NewBook(target, m.Name, cfg.Accounts.Book(), matchers), log)
			importers[m.Name] = imp
			started = append(started, imp)
		}

		r, err := imp.Import(src, b.Orders)
		rep.Merge(r)
		tools.HandleErr(err)
	}

	for _, imp := range started {
		tools.HandleErrV(imp.Finish())
	}
	fmt.Print(rep.String())
}

var usage = `Usage: ordimport [flags] batch.json...

Imports scraped order pages into the order store. Batches are applied in the order given,
so list order pages before detail pages before payment pages. Orders that could not be
imported are left as they were and listed in the report.
`
