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

package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrPrecision is returned by ParseValue when an amount has more precision than a minor currency unit.
type ErrPrecision string

func (err ErrPrecision) Error() string {
	return fmt.Sprintf("Amount has more than two decimal places: %q", string(err))
}

// ErrRange is returned by ParseValue when an amount does not fit in an int64 count of minor units.
type ErrRange string

func (err ErrRange) Error() string {
	return fmt.Sprintf("Amount out of range: %q", string(err))
}

// ParseValue takes a plain decimal number ("12.5", "-0.99", "1200") and converts it to an integer
// amount of minor currency units. Currency symbols and digit grouping must be removed by the caller.
func ParseValue(v string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return 0, err
	}

	if !d.Equal(d.Truncate(2)) {
		return 0, ErrPrecision(v)
	}
	cents := d.Shift(2)
	if !cents.BigInt().IsInt64() {
		return 0, ErrRange(v)
	}
	return cents.IntPart(), nil
}

// FormatValue takes a amount of money in cents and formats it for display.
func FormatValue(v int64) string {
	return "$" + FormatValueNumber(v)
}

// FormatValueNumber is exactly the same as FormatValue, but it does not add any currency indicators.
func FormatValueNumber(v int64) string {
	return decimal.New(v, -2).StringFixed(2)
}
