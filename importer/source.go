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
)

// Source is the kind of page a batch was scraped from. Sources are ordered, an order's state is the
// furthest source it has been imported from.
type Source int

const (
	Unknown Source = iota
	Listing
	Detail
	Payment
)

var sourceNames = []string{"unknown", "listing", "detail", "payment"}

func (s Source) String() string {
	if s < 0 || int(s) >= len(sourceNames) {
		return fmt.Sprintf("Source(%d)", int(s))
	}
	return sourceNames[s]
}

// ParseSource returns the source with the given name.
func ParseSource(name string) (Source, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range sourceNames {
		if n == name && Source(i) != Unknown {
			return Source(i), nil
		}
	}
	return Unknown, ErrUnknownSource(name)
}

// ErrUnknownSource is returned by ParseSource for names it does not know.
type ErrUnknownSource string

func (err ErrUnknownSource) Error() string {
	return fmt.Sprintf("Unknown scrape source: %q", string(err))
}
