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

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/westbury/jmoney-sub007/journal"
	"github.com/westbury/jmoney-sub007/tools"
	"github.com/westbury/jmoney-sub007/updater"
)

func main() {
	cfg := tools.HandleErrV(tools.LoadConfig())
	tools.NewLogger(os.Stderr, cfg.Log)

	fs := tools.CommonFlagSet(cfg, tools.FlagStore, usage)
	market := "Amazon"
	fs.Flags.StringVar(&market, "market", market, "The `marketplace` of the order.")
	rid := ""
	fs.Flags.StringVar(&rid, "rid", rid, "Only show revisions after this revision `ID`.")
	balances := false
	fs.Flags.BoolVar(&balances, "balances", balances, "Print account balances instead.")
	compact := false
	fs.Flags.BoolVar(&compact, "compact", compact, "Print the whole journal without edit history instead.")
	fs.Parse()

	j := tools.HandleErrV(journal.Open(fs.Store))
	defer j.Close()

	if compact {
		tools.HandleErr(j.Compact(os.Stdout))
		return
	}

	if balances {
		for _, row := range tools.HandleErrV(j.Balances()) {
			fmt.Printf("%-60s %14s\n", row[0], row[1])
		}
		return
	}

	tools.HandleErrS(fs.Flags.NArg() != 1, "Expected a single order number.")
	tr := tools.HandleErrV(j.FindOrder(market, fs.Flags.Arg(0), time.Time{}))
	tools.HandleErrS(tr == nil, fmt.Sprintf("No %v order %v.", market, fs.Flags.Arg(0)))

	revs := j.History(tr.Code)
	if rid != "" {
		// Go through the revisions *in reverse* looking for the given one.
		i := len(revs) - 1
		for ; i >= 0; i-- {
			if revs[i].KVPairs[updater.KeyRevision] == rid {
				break
			}
		}
		tools.HandleErrS(i < 0, fmt.Sprintf("Order %v has no revision %v.", fs.Flags.Arg(0), rid))
		revs = revs[i+1:]
	}

	for _, rev := range revs {
		fmt.Printf("\n%v", rev.String())
	}
}

var usage = `Usage: history [flags] ORDER

This program prints every stored revision of an order from a ledger journal, oldest first.
Each revision is a complete copy of the order transaction, with its own revision ID.
`
