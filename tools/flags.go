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

package tools

import (
	"flag"
	"fmt"
	"os"
)

const (
	FlagStore       = 1 << iota // The order store, see OpenStore
	FlagSourceFile              // The source data file
	FlagMatchFile               // Match file (csv account match data)
	FlagAccountName             // Account name
	FlagDryRun                  // Do not write to the store
)

// FlagSet is used to store the results from the common flags. Not all of these values will be valid, even if
// their flag is in the set. Defaults come from the Config.
type FlagSet struct {
	Store       string
	SourceFile  *os.File
	MatchFile   string
	AccountName string
	DryRun      bool

	Flags *flag.FlagSet
}

// CommonFlagSet returns a flagset filled out with your choice of several common flags.
func CommonFlagSet(cfg *Config, flags int, usage string) *FlagSet {
	fs := &FlagSet{
		Store:       cfg.Store,
		SourceFile:  os.Stdin,
		MatchFile:   cfg.MatchFile,
		AccountName: cfg.Accounts.Charge,
		Flags:       flag.NewFlagSet(os.Args[0], flag.ExitOnError),
	}

	if flags&FlagStore != 0 {
		fs.Flags.StringVar(&fs.Store, "store", fs.Store, "The order store: a ledger file `path`, sqlite:DSN, or mem:.")
	}

	if flags&FlagSourceFile != 0 {
		fs.Flags.Func("source", "The data source file `path`.", func(s string) (err error) {
			if s != "-" {
				fs.SourceFile, err = os.Open(s)
			}
			return
		})
	}

	if flags&FlagMatchFile != 0 {
		fs.Flags.StringVar(&fs.MatchFile, "match", fs.MatchFile, "Path to the match information `csv` file.")
	}

	if flags&FlagAccountName != 0 {
		fs.Flags.StringVar(&fs.AccountName, "account", fs.AccountName, "The `account` name.")
	}

	if flags&FlagDryRun != 0 {
		fs.Flags.BoolVar(&fs.DryRun, "dry-run", false, "Report what would happen without changing the store.")
	}

	fs.Flags.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		fs.Flags.PrintDefaults()
	}

	return fs
}

func (fs *FlagSet) Parse() {
	fs.Flags.Parse(os.Args[1:])
}
