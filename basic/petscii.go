package basic

import "strings"

// petsciiPlaceholders maps the in-band bracketed placeholders a tokenized
// C64 program's string literals carry (control codes the original PETSCII
// screen code rendered as reverse-video glyphs) to their Unicode
// equivalents, applied at print() time per spec.md §4.2.
var petsciiPlaceholders = []struct {
	token string
	glyph string
}{
	{"[CLR]", ""},      // handled specially: triggers clear(), emits nothing
	{"[REVERSE]", ""}, // handled specially: toggles the reverse attribute
	{"[SIDE]", "│"},
	{"[BORDERS]", "─"},
	{"[BALL]", "●"},
	{"[FIELD]", "▒"},
	{"[CORNER]", "┼"},
	{"[HEART]", "♥"},
	{"[SPADE]", "♠"},
	{"[CLUB]", "♣"},
	{"[DIAMOND]", "♦"},
	{"[UP]", "↑"},
	{"[DOWN]", "↓"},
	{"[LEFT]", "←"},
	{"[RIGHT]", "→"},
	{"[PI]", "π"},
}

// petsciiToken is one decoded placeholder event emitted while scanning a
// print() payload: either literal text to write, a clear-screen request,
// or a reverse-attribute toggle.
type petsciiToken struct {
	text          string
	isClear       bool
	isReverseFlip bool
}

// scanPetscii splits s into a sequence of literal-text/control events,
// substituting bracketed placeholders for their Unicode glyphs and
// surfacing [CLR] and [REVERSE] as control events rather than text.
func scanPetscii(s string) []petsciiToken {
	var out []petsciiToken
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			out = append(out, petsciiToken{text: buf.String()})
			buf.Reset()
		}
	}
	i := 0
	for i < len(s) {
		if s[i] == '[' {
			if end := strings.IndexByte(s[i:], ']'); end >= 0 {
				tag := s[i : i+end+1]
				if matched, isClear, isRev := matchPlaceholder(tag); matched != "" || isClear || isRev {
					flush()
					switch {
					case isClear:
						out = append(out, petsciiToken{isClear: true})
					case isRev:
						out = append(out, petsciiToken{isReverseFlip: true})
					default:
						out = append(out, petsciiToken{text: matched})
					}
					i += end + 1
					continue
				}
			}
		}
		buf.WriteByte(s[i])
		i++
	}
	flush()
	return out
}

func matchPlaceholder(tag string) (glyph string, isClear bool, isReverse bool) {
	for _, p := range petsciiPlaceholders {
		if p.token != tag {
			continue
		}
		switch tag {
		case "[CLR]":
			return "", true, false
		case "[REVERSE]":
			return "", false, true
		default:
			return p.glyph, false, false
		}
	}
	return "", false, false
}
