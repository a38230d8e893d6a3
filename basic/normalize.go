package basic

import "strings"

// statementKeywords is the pass-1 keyword set from spec.md §4.4: wherever
// one of these appears in unmasked code, it wins unconditionally over any
// identifier interpretation, mirroring the original tokenizer's greedy
// left-to-right keyword crunch (spec.md §9: do not replace this with a
// single "smart" scanner).
var statementKeywords = []string{
	"PRINT", "INPUT", "IF", "THEN", "GOTO", "GOSUB", "RETURN", "FOR", "NEXT",
	"DIM", "DATA", "READ", "POKE", "LET", "END", "REM", "RUN", "STOP", "ON",
	"RESTORE",
}

func isUpperLetter(c byte) bool { return c >= 'A' && c <= 'Z' }
func isDigitByte(c byte) bool   { return c >= '0' && c <= '9' }
func isIdentChar(c byte) bool   { return isUpperLetter(c) || isDigitByte(c) }

func toUpperByte(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// maskedText pairs normalized text with a parallel "masked" flag per byte:
// masked positions are string-literal interiors (including their
// delimiting quotes) or REM comment tails, which no later pass may touch.
type maskedText struct {
	text   []byte
	masked []bool
}

func (m *maskedText) append(c byte, masked bool) {
	m.text = append(m.text, c)
	m.masked = append(m.masked, masked)
}

func (m *maskedText) lastUnmasked() (byte, bool) {
	for i := len(m.text) - 1; i >= 0; i-- {
		if !m.masked[i] {
			return m.text[i], true
		}
	}
	return 0, false
}

func (m *maskedText) String() string { return string(m.text) }

// uppercaseAndMask uppercases raw source code outside of string literals
// and REM comment tails, leaving those regions' original characters (and
// case) untouched, per spec.md §4.4. It also inserts the smart-spacing
// separator immediately after a recognized REM so "10REMHI" still reads
// as "REM HI" once masked.
func uppercaseAndMask(raw string) *maskedText {
	out := &maskedText{}
	quoted := false
	inRem := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case inRem:
			out.append(c, true)
		case quoted:
			out.append(c, true)
			if c == '"' {
				quoted = false
			}
		case c == '"':
			quoted = true
			out.append(c, true)
		default:
			uc := toUpperByte(c)
			out.append(uc, false)
			if endsWithREM(out) {
				inRem = true
				if i+1 < len(raw) && isIdentChar(toUpperByte(raw[i+1])) {
					out.append(' ', false)
				}
			}
		}
	}
	return out
}

// endsWithREM reports whether the unmasked text built so far ends with a
// word-bounded "REM".
func endsWithREM(m *maskedText) bool {
	n := len(m.text)
	if n < 3 || string(m.text[n-3:]) != "REM" {
		return false
	}
	if n == 3 {
		return true
	}
	return !isIdentChar(m.text[n-4])
}

// passStatementKeywords implements spec.md §4.4 pass 1.
func passStatementKeywords(in *maskedText) *maskedText {
	out := &maskedText{}
	text := in.text
	for i := 0; i < len(text); {
		if in.masked[i] {
			out.append(text[i], true)
			i++
			continue
		}
		if kw, ok := matchKeywordAt(text, i); ok {
			if last, ok := out.lastUnmasked(); ok && isIdentChar(last) {
				out.append(' ', false)
			}
			for j := 0; j < len(kw); j++ {
				out.append(kw[j], false)
			}
			i += len(kw)
			if i < len(text) && !in.masked[i] && isIdentCharOrSigil(text[i]) {
				out.append(' ', false)
			}
			continue
		}
		out.append(text[i], false)
		i++
	}
	return out
}

func isIdentCharOrSigil(c byte) bool {
	return isIdentChar(c) || c == '$' || c == '%'
}

func matchKeywordAt(text []byte, i int) (string, bool) {
	for _, kw := range statementKeywords {
		if i+len(kw) <= len(text) && string(text[i:i+len(kw)]) == kw {
			return kw, true
		}
	}
	return "", false
}

// passLogicalOps implements spec.md §4.4 pass 2: AND/OR/NOT normalize only
// when both surrounding characters are identifier-like, or both are not —
// never on a mixed boundary (spec.md's "FOR" example). A string literal
// directly beside the word cannot belong to an identifier, so a word that
// touches one (as in "N"ANDA$) is normalized whatever is on its other side.
func passLogicalOps(in *maskedText) *maskedText {
	out := &maskedText{}
	text := in.text
	logicalOps := []string{"AND", "NOT", "OR"}
	for i := 0; i < len(text); {
		if in.masked[i] {
			out.append(text[i], true)
			i++
			continue
		}
		matched := false
		for _, op := range logicalOps {
			if i+len(op) > len(text) || string(text[i:i+len(op)]) != op {
				continue
			}
			if in.masked[i+len(op)-1] {
				continue
			}
			var before, after byte
			hasBefore, hasAfter := false, false
			if last, ok := out.lastUnmasked(); ok {
				before, hasBefore = last, true
			}
			if i+len(op) < len(text) && !in.masked[i+len(op)] {
				after, hasAfter = text[i+len(op)], true
			}
			beforeIsIdent := hasBefore && isIdentChar(before)
			afterIsIdent := hasAfter && isIdentChar(after)
			besideString := (i > 0 && in.masked[i-1]) || (i+len(op) < len(text) && in.masked[i+len(op)])
			if beforeIsIdent != afterIsIdent && !besideString {
				continue // mixed boundary: skip, do not treat as the operator here
			}
			if hasBefore && before != ' ' {
				out.append(' ', false)
			}
			for j := 0; j < len(op); j++ {
				out.append(op[j], false)
			}
			if hasAfter && after != ' ' {
				out.append(' ', false)
			}
			i += len(op)
			matched = true
			break
		}
		if matched {
			continue
		}
		out.append(text[i], false)
		i++
	}
	return out
}

// passContextualTO implements spec.md §4.4 pass 3: the first TO inside a
// FOR region (opened by a normalized FOR keyword, closed at that TO or at
// end of line) gets surrounding spaces inserted.
func passContextualTO(in *maskedText) *maskedText {
	out := &maskedText{}
	text := in.text
	inForRegion := false
	for i := 0; i < len(text); {
		if in.masked[i] {
			out.append(text[i], true)
			i++
			continue
		}
		if !inForRegion && matchesWord(text, i, "FOR") {
			for j := 0; j < 3; j++ {
				out.append(text[i+j], false)
			}
			i += 3
			inForRegion = true
			continue
		}
		if inForRegion && i+2 <= len(text) && string(text[i:i+2]) == "TO" {
			if last, ok := out.lastUnmasked(); ok && last != ' ' {
				out.append(' ', false)
			}
			out.append('T', false)
			out.append('O', false)
			if i+2 < len(text) && !in.masked[i+2] && text[i+2] != ' ' {
				out.append(' ', false)
			}
			i += 2
			inForRegion = false
			continue
		}
		out.append(text[i], false)
		i++
	}
	return out
}

// matchesWord reports whether text[i:] starts with word as a standalone
// token (its own preceding/following characters are not identifier chars).
func matchesWord(text []byte, i int, word string) bool {
	if i+len(word) > len(text) || string(text[i:i+len(word)]) != word {
		return false
	}
	if i > 0 && isIdentChar(text[i-1]) {
		return false
	}
	if i+len(word) < len(text) && isIdentChar(text[i+len(word)]) {
		return false
	}
	return true
}

// Normalize runs the full three-pass contract over one line's raw text
// (everything after the line number) and returns canonical, upper-cased,
// disambiguated text ready for the lexer.
func Normalize(raw string) string {
	m := uppercaseAndMask(raw)
	m = passStatementKeywords(m)
	m = passLogicalOps(m)
	m = passContextualTO(m)
	return strings.TrimRight(m.String(), " \t")
}
