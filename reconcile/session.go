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

package reconcile

import "time"

// Session is the working set of orders touched by one import. It is not safe for concurrent use.
type Session struct {
	ledger Ledger
	orders map[string]*Order
	seen   []string // order numbers in the order they were first seen
}

// NewSession starts an empty session on top of l.
func NewSession(l Ledger) *Session {
	return &Session{
		ledger: l,
		orders: map[string]*Order{},
	}
}

// GetOrCreate returns the session's order with the given number, loading or creating it through the
// ledger the first time it is asked for.
//
// The date only helps the ledger find the order. An order with no date yet takes it, an order with a
// different date keeps its own and reports the new one from DateConflict.
func (s *Session) GetOrCreate(number string, date time.Time) (*Order, error) {
	o, ok := s.orders[number]
	if !ok {
		u, err := s.ledger.FindOrCreateOrder(number, date)
		if err != nil {
			return nil, err
		}

		o = newOrder(u)
		s.orders[number] = o
		s.seen = append(s.seen, number)
	}

	if !date.IsZero() {
		o.noteDate(date)
	}
	return o, nil
}

// Lookup returns the session's order with the given number, or nil.
func (s *Session) Lookup(number string) *Order {
	return s.orders[number]
}

// Orders returns all orders in the session in the order they were first seen.
func (s *Session) Orders() []*Order {
	orders := make([]*Order, 0, len(s.seen))
	for _, n := range s.seen {
		orders = append(orders, s.orders[n])
	}
	return orders
}

// Commit persists the order and removes it from the session.
func (s *Session) Commit(o *Order) error {
	err := s.ledger.Commit(o.u)
	if err != nil {
		return err
	}
	s.forget(o)
	return nil
}

// Discard drops every change made to the order and removes it from the session.
func (s *Session) Discard(o *Order) {
	s.ledger.Discard(o.u)
	s.forget(o)
}

func (s *Session) forget(o *Order) {
	number := o.Number()
	if s.orders[number] != o {
		return
	}
	delete(s.orders, number)
	for i, n := range s.seen {
		if n == number {
			s.seen = append(s.seen[:i], s.seen[i+1:]...)
			break
		}
	}
}
