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
	"log/slog"
	"os"

	"github.com/westbury/jmoney-sub007/tools"
	"github.com/westbury/jmoney-sub007/updater"
)

var usage string = `Usage:

Move order items still on the default account to the account picked by the matchers, going by
the marketplace description of each item.
`

func main() {
	cfg := tools.HandleErrV(tools.LoadConfig())
	tools.NewLogger(os.Stderr, cfg.Log)

	fs := tools.CommonFlagSet(cfg, tools.FlagStore|tools.FlagMatchFile|tools.FlagDryRun, usage)
	from := cfg.Accounts.Default
	fs.Flags.StringVar(&from, "from", from, "Recategorize postings on this `account`.")
	fs.Parse()

	store := tools.HandleErrV(tools.OpenStore(fs.Store))
	defer store.Close()
	matchers := tools.HandleErrV(tools.LoadMatchers(fs.MatchFile, store))
	tools.HandleErrS(len(matchers) == 0, "No matchers, nothing to do.")

	trs := tools.HandleErrV(store.Transactions())
	n := 0
	for i := range trs {
		tr := &trs[i]
		if !tr.Recategorize(from, updater.MetaDesc, matchers) {
			continue
		}
		if !fs.DryRun {
			tools.HandleErr(store.Save(tr))
		}
		slog.Info("recategorized", "code", tr.Code, "description", tr.Description)
		n++
	}
	fmt.Printf("%d transaction(s) recategorized\n", n)
}
