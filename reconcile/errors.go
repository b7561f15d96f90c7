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

import (
	"errors"
	"fmt"
)

// Kind classifies reconciliation failures.
type Kind int

const (
	// Unsupported means the scraped data has a shape the importer does not handle (an unknown currency
	// or an odd quantity, for example).
	Unsupported Kind = iota + 1

	// Inconsistent means the scraped data and the previously imported order no longer agree.
	Inconsistent

	// Malformed means an amount or date literal could not be parsed.
	Malformed
)

func (k Kind) String() string {
	switch k {
	case Unsupported:
		return "unsupported"
	case Inconsistent:
		return "inconsistent"
	case Malformed:
		return "malformed"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Outcome is what a failure means for the order it happened in.
type Outcome int

const (
	// SkipOrder leaves the order as it was, the data was simply not usable.
	SkipOrder Outcome = iota + 1

	// AbortOrder leaves the order as it was and flags it, stored and scraped data disagree.
	AbortOrder
)

// Outcome returns what an error of this kind means for the order.
func (k Kind) Outcome() Outcome {
	if k == Inconsistent {
		return AbortOrder
	}
	return SkipOrder
}

// Error is a failure confined to a single order. Any other error returned by this package or the importer
// concerns the whole import.
type Error struct {
	Kind   Kind
	Order  string
	Reason string
	Err    error
}

func (err *Error) Error() string {
	msg := fmt.Sprintf("Order %v: %v", err.Order, err.Reason)
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

func (err *Error) Unwrap() error {
	return err.Err
}

// Errorf creates an Error without a cause.
func Errorf(kind Kind, order, format string, a ...any) *Error {
	return &Error{Kind: kind, Order: order, Reason: fmt.Sprintf(format, a...)}
}

// AsError returns the order level Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr, true
	}
	return nil, false
}
