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

/*
Package parse reads ledger files.

Each element is either an xact or a directive. Periodic and automated transactions are not supported.

Comment lines inside a transaction that come before the first posting belong to the transaction.
Key/value comment lines after a posting belong to that posting (see ledger.Posting.Meta).
*/
package parse

import (
	"strings"
	"time"

	ledger "github.com/westbury/jmoney-sub007"
	"github.com/westbury/jmoney-sub007/parse/lex"
)

// ParseLedger parses a ledger file from a string.
func ParseLedger(input string) (*ledger.File, error) {
	if !strings.HasSuffix(input, "\n") {
		input += "\n"
	}
	return ParseLedgerRaw(lex.NewCharReader(input, 1))
}

// ParseLedgerRaw parses a ledger file from a CharReader. The input must end with a newline.
func ParseLedgerRaw(cr *lex.CharReader) (*ledger.File, error) {
	f := &ledger.File{T: []ledger.Transaction{}, D: []ledger.Directive{}}
	for !cr.EOF {
		// Indented content outside of a transaction or directive may only be blank or a comment.
		cr.Eat(" \t")
		if cr.EOF {
			break
		}
		if cr.C == '\n' {
			cr.Next()
			continue
		}

		switch {
		case cr.Match(";#%|*"):
			cr.EatUntil("\n")
			cr.Next()
		case cr.MatchNumeric():
			tr, err := parseTransaction(cr)
			if err != nil {
				return nil, err
			}
			f.T = append(f.T, *tr)
		case cr.MatchAlpha():
			d, err := parseDirective(cr, len(f.T))
			if err != nil {
				return nil, err
			}
			f.D = append(f.D, *d)
		default:
			return nil, ErrMalformed(line(cr))
		}
	}
	return f, nil
}

func line(cr *lex.CharReader) int {
	return int(cr.L.Line())
}

func parseTransaction(cr *lex.CharReader) (*ledger.Transaction, error) {
	current := &ledger.Transaction{
		Tags:    map[string]bool{},
		KVPairs: map[string]string{},
		Line:    line(cr),
	}

	// Parse the leading dates(s)
	date, err := ParseDate(cr)
	if err != nil {
		return nil, err
	}
	current.Date = date
	if cr.C == '=' {
		cr.Next()
		date, err := ParseDate(cr)
		if err != nil {
			return nil, err
		}
		current.ClearDate = date
	}

	cr.Eat(" \t")
	if cr.EOF {
		return nil, ErrUnexpectedEnd(line(cr))
	}

	current.Status = parseStatus(cr)

	cr.Eat(" \t")
	if cr.EOF {
		return nil, ErrUnexpectedEnd(line(cr))
	}

	// An optional "code"
	if cr.C == '(' {
		cr.Next()
		cr.Eat(" \t")
		code, err := ReadUntilTrimmed(cr, ")\n")
		if err != nil {
			return nil, err
		}
		if cr.C == '\n' {
			return nil, ErrMalformed(line(cr))
		}
		current.Code = code
		cr.Next()
		cr.Eat(" \t")
		if cr.EOF {
			return nil, ErrUnexpectedEnd(line(cr))
		}
	}

	// And, to cap the first line off, the description.
	desc, err := ReadUntilTrimmed(cr, "\n")
	if err != nil {
		return nil, err
	}
	current.Description = desc
	cr.Next()

	// Now parse the individual postings or comment lines.
	for cr.Match(" \t") {
		cr.Eat(" \t")
		if cr.EOF {
			return nil, ErrUnexpectedEnd(line(cr))
		}

		// A line of nothing but white space ends the transaction.
		if cr.C == '\n' {
			cr.Next()
			break
		}

		if cr.C == ';' {
			if err := parseComment(cr, current); err != nil {
				return nil, err
			}
			continue
		}

		post, err := parsePosting(cr)
		if err != nil {
			return nil, err
		}
		current.Postings = append(current.Postings, *post)
	}

	return current, nil
}

func parseStatus(cr *lex.CharReader) ledger.Status {
	switch cr.C {
	case '*':
		cr.Next()
		return ledger.StatusClear
	case '!':
		cr.Next()
		return ledger.StatusPending
	}
	return ledger.StatusUndefined
}

// parseComment reads a comment line and files it as a tag line, a key/value pair, or a plain comment.
// Key/value pairs found after the first posting are metadata of the latest posting.
func parseComment(cr *lex.CharReader, current *ledger.Transaction) error {
	at := line(cr)
	cr.Next()
	text, err := ReadUntilTrimmed(cr, "\n")
	if err != nil {
		return err
	}
	cr.Next()

	if strings.HasPrefix(text, ":") {
		if !strings.HasSuffix(text, ":") {
			return ErrMalformedTagLine(at)
		}
		for _, tag := range strings.Split(text, ":") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				current.Tags[tag] = true
			}
		}
		return nil
	}

	if key, value, ok := splitKV(text); ok {
		if n := len(current.Postings); n > 0 {
			p := &current.Postings[n-1]
			if p.Meta == nil {
				p.Meta = map[string]string{}
			}
			p.Meta[key] = value
			return nil
		}
		current.KVPairs[key] = value
		return nil
	}

	current.Comments = append(current.Comments, text)
	return nil
}

// splitKV splits "Key: Value". The key may not contain white space and the colon must be followed by
// white space.
func splitKV(text string) (string, string, bool) {
	i := strings.IndexByte(text, ':')
	if i <= 0 || i+1 >= len(text) || (text[i+1] != ' ' && text[i+1] != '\t') {
		return "", "", false
	}
	key := text[:i]
	if strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return key, strings.TrimSpace(text[i+1:]), true
}

func parsePosting(cr *lex.CharReader) (*ledger.Posting, error) {
	post := &ledger.Posting{Status: parseStatus(cr)}

	cr.Eat(" \t")
	if cr.EOF {
		return nil, ErrUnexpectedEnd(line(cr))
	}

	// Account names *can* include spaces, but only one in a row. Two or more spaces or a tab
	// ends the name.
	buf := []rune{}
	for cr.C != '\t' && cr.C != '\n' && (cr.C != ' ' || cr.NC != ' ') {
		buf = append(buf, cr.C)
		cr.Next()
		if cr.EOF {
			return nil, ErrUnexpectedEnd(line(cr))
		}
	}
	if len(buf) == 0 {
		return nil, ErrMalformed(line(cr))
	}
	post.Account = strings.TrimSpace(string(buf))

	cr.Eat(" \t")
	if cr.EOF {
		return nil, ErrUnexpectedEnd(line(cr))
	}

	value, null, err := parseAmount(cr)
	if err != nil {
		return nil, err
	}
	post.Value, post.Null = value, null

	cr.Eat(" \t")
	if cr.EOF {
		return nil, ErrUnexpectedEnd(line(cr))
	}

	// Optional note
	if cr.C == ';' {
		cr.Next()
		note, err := ReadUntilTrimmed(cr, "\n")
		if err != nil {
			return nil, err
		}
		post.Note = note
	}

	if cr.C != '\n' {
		return nil, ErrMalformed(line(cr))
	}
	cr.Next()
	return post, nil
}

// parseAmount reads an optional amount. Currently only supporting USD style amounts with or without the
// leading $, the sign may come before or after it.
func parseAmount(cr *lex.CharReader) (int64, bool, error) {
	at := line(cr)
	neg := false
	if cr.C == '-' {
		neg = true
		cr.Next()
	}
	if cr.C == '$' {
		cr.Next()
		cr.Eat(" \t")
	}
	if cr.C == '-' && !neg {
		neg = true
		cr.Next()
	}
	if cr.EOF {
		return 0, false, ErrUnexpectedEnd(at)
	}

	num := cr.ReadMatch("0123456789.,", nil)
	if cr.EOF {
		return 0, false, ErrUnexpectedEnd(at)
	}
	if len(num) == 0 {
		if neg {
			return 0, false, ErrBadAmount(at)
		}
		return 0, true, nil
	}

	v, err := ledger.ParseValue(strings.ReplaceAll(string(num), ",", ""))
	if err != nil {
		return 0, false, ErrBadAmount(at)
	}
	if neg {
		v = -v
	}
	return v, false, nil
}

func parseDirective(cr *lex.CharReader, before int) (*ledger.Directive, error) {
	d := &ledger.Directive{
		FoundBefore: before,
		Location:    cr.L,
	}

	d.Type = string(cr.ReadMatch("abcdefghijklmnopqrstuvwxyz-_", nil))
	if d.Type == "" {
		return nil, ErrMalformed(line(cr))
	}
	cr.Eat(" \t")
	if cr.EOF {
		return nil, ErrUnexpectedEnd(line(cr))
	}

	arg, err := ReadUntilTrimmed(cr, "\n")
	if err != nil {
		return nil, err
	}
	d.Argument = arg
	cr.Next()

	for cr.Match(" \t") {
		cr.Eat(" \t")
		if cr.EOF {
			break
		}
		if cr.C == '\n' {
			cr.Next()
			break
		}

		sub, err := ReadUntilTrimmed(cr, "\n")
		if err != nil {
			return nil, err
		}
		d.Lines = append(d.Lines, sub)
		cr.Next()
	}
	return d, nil
}

// ReadUntilTrimmed reads characters from the CharReader until one of the characters in `chars` is found.
// The result then has all the whitespace trimmed from the ends.
func ReadUntilTrimmed(cr *lex.CharReader, chars string) (string, error) {
	ln := cr.ReadUntil(chars, nil)
	if cr.EOF {
		return "", ErrUnexpectedEnd(line(cr))
	}
	return strings.Trim(string(ln), " \t"), nil
}

// ParseDate reads a date (in yyyy/mm/dd format, - and . are also accepted as separators) from the CharReader.
func ParseDate(cr *lex.CharReader) (time.Time, error) {
	date := []rune{}
	var t time.Time

	for i, n := range []int{4, 2, 2} {
		var ok bool
		ok, date = cr.ReadMatchLimit("0123456789", date, n)
		if !ok {
			return t, ErrBadDate(line(cr))
		}
		if cr.EOF {
			return t, ErrUnexpectedEnd(line(cr))
		}
		if i == 2 {
			break
		}

		if !cr.Match("/-.") {
			return t, ErrBadDate(line(cr))
		}
		date = append(date, '/')
		cr.Next()
	}

	t, err := time.Parse("2006/01/02", string(date))
	if err != nil {
		return t, ErrBadDate(line(cr))
	}
	return t, nil
}
