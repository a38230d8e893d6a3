package basic

import (
	"encoding/binary"
	"testing"
)

// buildPRG assembles a minimal PRG image from (lineno, body bytes) pairs,
// computing link offsets the way the real tokenizer would.
func buildPRG(loadAddr uint16, lines [][2]any) []byte {
	var out []byte
	out = binary.LittleEndian.AppendUint16(out, loadAddr)
	addr := int(loadAddr)
	for _, l := range lines {
		lineno := l[0].(int)
		body := l[1].([]byte)
		lineLen := 2 + 2 + len(body) + 1
		addr += lineLen
		out = binary.LittleEndian.AppendUint16(out, uint16(addr))
		out = binary.LittleEndian.AppendUint16(out, uint16(lineno))
		out = append(out, body...)
		out = append(out, 0)
	}
	out = binary.LittleEndian.AppendUint16(out, 0)
	return out
}

func tok(spelling string) byte {
	for i, s := range tokenSpellings {
		if s == spelling {
			return byte(tokenBase + i)
		}
	}
	panic("unknown token spelling: " + spelling)
}

func TestDetokenizeSimplePrint(t *testing.T) {
	body := []byte{tok("PRINT"), '"', 'H', 'I', '"'}
	data := buildPRG(0x0801, [][2]any{{10, body}})
	lines, err := Detokenize(data)
	if err != nil {
		t.Fatalf("Detokenize: %v", err)
	}
	if len(lines) != 1 || lines[0].Number != 10 {
		t.Fatalf("lines = %+v", lines)
	}
	if lines[0].Text != `PRINT"HI"` {
		t.Errorf("text = %q", lines[0].Text)
	}
}

func TestDetokenizeRemTailVerbatim(t *testing.T) {
	body := append([]byte{tok("REM")}, "hi There"...)
	data := buildPRG(0x0801, [][2]any{{10, body}})
	lines, err := Detokenize(data)
	if err != nil {
		t.Fatalf("Detokenize: %v", err)
	}
	if lines[0].Text != "REM hi There" {
		t.Errorf("rem text = %q", lines[0].Text)
	}
}

func TestDetokenizeUnknownTokenFails(t *testing.T) {
	data := buildPRG(0x0801, [][2]any{{10, []byte{0xFF}}})
	_, err := Detokenize(data)
	be, ok := err.(*Error)
	if !ok || be.Kind != ErrBadToken {
		t.Fatalf("expected BadToken, got %v", err)
	}
}

func TestDetokenizeUnterminatedStringFails(t *testing.T) {
	body := []byte{tok("PRINT"), '"', 'H', 'I'}
	data := buildPRG(0x0801, [][2]any{{10, body}})
	_, err := Detokenize(data)
	be, ok := err.(*Error)
	if !ok || be.Kind != ErrUnterminatedString {
		t.Fatalf("expected UnterminatedString, got %v", err)
	}
}

func TestDetokenizeTruncatedFails(t *testing.T) {
	data := []byte{0x01, 0x08, 0x10, 0x00}
	_, err := Detokenize(data)
	be, ok := err.(*Error)
	if !ok || be.Kind != ErrTruncated {
		t.Fatalf("expected Truncated, got %v", err)
	}
}

func TestDetokenizeSmartSpacing(t *testing.T) {
	// GOSUB2000 tokenized: GOSUB token directly followed by digits.
	body := []byte{tok("GOSUB"), '2', '0', '0', '0'}
	data := buildPRG(0x0801, [][2]any{{60, body}})
	lines, err := Detokenize(data)
	if err != nil {
		t.Fatalf("Detokenize: %v", err)
	}
	if lines[0].Text != "GOSUB 2000" {
		t.Errorf("text = %q, want %q", lines[0].Text, "GOSUB 2000")
	}
}

func TestRoundTripThroughPRGAndText(t *testing.T) {
	source := "10 PRINT \"HELLO\"\n20 GOTO 10\n"
	progFromText, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse direct: %v", err)
	}

	body10 := []byte{tok("PRINT"), '"', 'H', 'E', 'L', 'L', 'O', '"'}
	body20 := []byte{tok("GOTO"), '1', '0'}
	data := buildPRG(0x0801, [][2]any{{10, body10}, {20, body20}})
	lines, err := Detokenize(data)
	if err != nil {
		t.Fatalf("Detokenize: %v", err)
	}
	progFromPRG, err := ParseLines(lines)
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}

	if progFromText.Len() != progFromPRG.Len() {
		t.Fatalf("line count mismatch: %d vs %d", progFromText.Len(), progFromPRG.Len())
	}
	for i := 0; i < progFromText.Len(); i++ {
		n1, s1 := progFromText.LineAt(i)
		n2, s2 := progFromPRG.LineAt(i)
		if n1 != n2 || len(s1) != len(s2) {
			t.Fatalf("line %d mismatch: (%d,%d stmts) vs (%d,%d stmts)", i, n1, len(s1), n2, len(s2))
		}
	}
}
