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
	"strings"
	"time"

	"github.com/westbury/jmoney-sub007/statement"
	"github.com/westbury/jmoney-sub007/tools"
)

func main() {
	cfg := tools.HandleErrV(tools.LoadConfig())
	tools.NewLogger(os.Stderr, cfg.Log)

	fs := tools.CommonFlagSet(cfg, tools.FlagStore|tools.FlagSourceFile|tools.FlagAccountName|tools.FlagMatchFile|tools.FlagDryRun, usage)
	desc := "name"
	fs.Flags.StringVar(&desc, "desc", desc, "Description `source`: name, memo, or namememo.")
	link := true
	fs.Flags.BoolVar(&link, "link", link, "Link order charges to the imported lines.")
	window := cfg.LinkWindowDays
	fs.Flags.IntVar(&window, "window", window, "How many `days` a line may be from its order date.")
	fs.Parse()

	src, ok := map[string]statement.DescSrc{
		"name":     statement.DescName,
		"memo":     statement.DescMemo,
		"namememo": statement.DescNameMemo,
	}[strings.ToLower(desc)]
	tools.HandleErrS(!ok, fmt.Sprintf("Unknown description source: %q", desc))

	store := tools.HandleErrV(tools.OpenStore(fs.Store))
	defer store.Close()
	matchers := tools.HandleErrV(tools.LoadMatchers(fs.MatchFile, store))

	target := tools.Store(store)
	if fs.DryRun {
		target = tools.HandleErrV(tools.DryRun(store))
	}

	n := tools.HandleErrV(statement.Import(target, fs.SourceFile, src, fs.AccountName, cfg.Accounts.Default, matchers))
	slog.Info("statement imported", "account", fs.AccountName, "lines", n)

	if link {
		linked := tools.HandleErrV(statement.Link(target, fs.AccountName, time.Duration(window)*24*time.Hour))
		slog.Info("charges linked", "account", fs.AccountName, "charges", linked)
	}
}

var usage = `Usage:

This program reads an OFX statement and adds every line not seen before to the order store.
Order charges on the same account are then matched up with the new lines and cleared.
`
