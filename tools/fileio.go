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
	"encoding/csv"
	"io"
	"os"
	"regexp"

	ledger "github.com/westbury/jmoney-sub007"
	"github.com/westbury/jmoney-sub007/scrape"
)

// LoadMatchFile loads a csv match file (regexp, account, payee) and parses it into a list of Matchers. An
// empty path gives no matchers.
func LoadMatchFile(path string) ([]ledger.Matcher, error) {
	matchers := []ledger.Matcher{}
	if path == "" {
		return matchers, nil
	}

	mr, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer mr.Close()

	mrdr := csv.NewReader(mr)
	mrdr.FieldsPerRecord = 3
	mrdr.Comment = '#'

	for {
		line, err := mrdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		reg, err := regexp.Compile(line[0])
		if err != nil {
			return nil, err
		}

		matchers = append(matchers, ledger.Matcher{
			R:       reg,
			Account: line[1],
			Payee:   line[2],
		})
	}
	return matchers, nil
}

// LoadMatchers combines the match file with any matchers the store itself defines.
func LoadMatchers(path string, s Store) ([]ledger.Matcher, error) {
	matchers, err := LoadMatchFile(path)
	if err != nil {
		return nil, err
	}

	if ms, ok := s.(interface{ Matchers() ([]ledger.Matcher, error) }); ok {
		more, err := ms.Matchers()
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, more...)
	}
	return matchers, nil
}

// LoadBatch reads a scrape batch from the given path, "-" is standard input.
func LoadBatch(path string) (*scrape.Batch, error) {
	if path == "-" {
		return scrape.Load(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return scrape.Load(f)
}
