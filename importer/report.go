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

package importer

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Outcome is what happened to one order.
type Outcome int

const (
	Imported     Outcome = iota // Changes kept (committed by Finish).
	Skipped                     // The scraped data was not usable, the order was left alone.
	Inconsistent                // Scraped and stored data disagree, the order was left alone.
	Failed                      // A literal could not be parsed, the order was left alone.
)

var outcomeNames = []string{"imported", "skipped", "inconsistent", "failed"}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// Result is the outcome for one order.
type Result struct {
	Order   string
	Source  Source
	Outcome Outcome
	Reason  string // Empty for imported orders.
}

// Report lists results in the order the orders were processed.
type Report struct {
	Results []Result
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
}

// Count returns the number of orders with the given outcome.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Failures returns every result that was not Imported.
func (r *Report) Failures() []Result {
	out := []Result{}
	for _, res := range r.Results {
		if res.Outcome != Imported {
			out = append(out, res)
		}
	}
	return out
}

// Merge appends the results of other.
func (r *Report) Merge(other *Report) {
	if other != nil {
		r.Results = append(r.Results, slices.Clone(other.Results)...)
	}
}

func (r *Report) String() string {
	buf := new(strings.Builder)
	fmt.Fprintf(buf, "%d imported, %d skipped, %d inconsistent, %d failed\n",
		r.Count(Imported), r.Count(Skipped), r.Count(Inconsistent), r.Count(Failed))
	for _, res := range r.Failures() {
		fmt.Fprintf(buf, "\t%v (%v): %v: %v\n", res.Order, res.Source, res.Outcome, res.Reason)
	}
	return buf.String()
}
