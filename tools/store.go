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

package tools

import (
	"io"
	"strings"

	"github.com/westbury/jmoney-sub007/journal"
	"github.com/westbury/jmoney-sub007/sqlstore"
	"github.com/westbury/jmoney-sub007/updater"
)

// Store is an order store the tools can close when they are done.
type Store interface {
	updater.Store
	io.Closer
}

type memStore struct {
	*updater.MemStore
}

func (memStore) Close() error { return nil }

// OpenStore opens the store at where. "sqlite:" followed by a DSN opens a database, "mem:" is an
// empty in memory store, anything else is the path of a ledger journal.
func OpenStore(where string) (Store, error) {
	switch {
	case strings.HasPrefix(where, "sqlite:"):
		s, err := sqlstore.Open(strings.TrimPrefix(where, "sqlite:"))
		if err != nil {
			return nil, err
		}
		return s, nil
	case where == "mem:":
		return memStore{updater.NewMemStore()}, nil
	}

	j, err := journal.Open(where)
	if err != nil {
		return nil, err
	}
	return j, nil
}

// DryRun returns an in memory copy of s. Changes made to the copy are never written back.
func DryRun(s updater.Store) (Store, error) {
	trs, err := s.Transactions()
	if err != nil {
		return nil, err
	}
	return memStore{updater.NewMemStore(trs...)}, nil
}
