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

package updater

import (
	"time"

	ledger "github.com/westbury/jmoney-sub007"
)

// MemStore is a Store that keeps everything in memory. Used for dry runs.
type MemStore struct {
	trs []ledger.Transaction
}

// NewMemStore returns a MemStore holding copies of trs.
func NewMemStore(trs ...ledger.Transaction) *MemStore {
	s := &MemStore{}
	for _, tr := range trs {
		s.trs = append(s.trs, *tr.CleanCopy())
	}
	return s
}

func (s *MemStore) FindOrder(market, number string, near time.Time) (*ledger.Transaction, error) {
	for i := range s.trs {
		if IsOrder(&s.trs[i], market, number) {
			return s.trs[i].CleanCopy(), nil
		}
	}
	return nil, nil
}

func (s *MemStore) Save(tr *ledger.Transaction) error {
	if err := tr.Validate(); err != nil {
		return err
	}

	Stamp(tr, func(code string) bool {
		return s.index(code) != -1
	})

	idx := s.index(tr.Code)
	if idx == -1 {
		s.trs = append(s.trs, *tr.CleanCopy())
		return nil
	}
	s.trs[idx] = *tr.CleanCopy()
	return nil
}

func (s *MemStore) index(code string) int {
	for i := range s.trs {
		if s.trs[i].Code == code {
			return i
		}
	}
	return -1
}

func (s *MemStore) Transactions() ([]ledger.Transaction, error) {
	out := make([]ledger.Transaction, 0, len(s.trs))
	for _, tr := range s.trs {
		out = append(out, *tr.CleanCopy())
	}
	return out, nil
}

// Stamp gives a transaction a fresh revision ID, and a Code if it has none. taken reports Codes that are
// already in use.
func Stamp(tr *ledger.Transaction, taken func(code string) bool) {
	if tr.Code == "" {
		tr.Code = <-ledger.IDService
		for taken(tr.Code) {
			tr.Code = <-ledger.IDService
		}
	}

	if tr.KVPairs == nil {
		tr.KVPairs = map[string]string{}
	}
	tr.KVPairs[KeyRevision] = <-ledger.IDService
}
