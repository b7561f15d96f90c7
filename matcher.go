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

import "regexp"

// Matcher assigns an account to anything whose description matches R.
type Matcher struct {
	R       *regexp.Regexp
	Account string
	Payee   string // Optional replacement description.
}

// MatchAccount returns the account of the first matcher that matches desc, or def if none do.
func MatchAccount(matchers []Matcher, desc, def string) string {
	for _, m := range matchers {
		if m.R.MatchString(desc) {
			return m.Account
		}
	}
	return def
}

// Recategorize moves every posting on account from to the account chosen by the matchers, using the
// posting metadata under key as the description. Returns true if any posting changed.
func (t *Transaction) Recategorize(from, key string, matchers []Matcher) bool {
	changed := false
	for i := range t.Postings {
		p := &t.Postings[i]
		if p.Account != from || p.Meta[key] == "" {
			continue
		}

		to := MatchAccount(matchers, p.Meta[key], from)
		if to != from {
			p.Account = to
			changed = true
		}
	}
	return changed
}
