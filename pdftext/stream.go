package pdftext

import (
	"math"
	"strconv"
	"strings"
)

// columnGap is the absolute displacement (in thousandths of text space) above
// which a spacing value inside a TJ array separates two table cells rather
// than kerning one word.
const columnGap = 500

type tokenKind int

const (
	tokString tokenKind = iota // (text)
	tokHex                     // <hex glyph string>
	tokNumber                  // 123, -45.6
	tokWord                    // operators: BT, Tj, TJ, TD, ...
	tokArray                   // [...] with children
)

type token struct {
	kind     tokenKind
	value    string
	children []token
}

// textItems walks the text operators of a decompressed content stream and
// returns the shown strings in order. An empty string marks a line move
// (Td/TD with a vertical offset, or a Tm reset) so that callers can regroup
// items into lines.
func textItems(stream []byte, glyphs CMap) []string {
	var items []string
	var stack []token
	var charSpacing float64 // current Tc in text space units

	emit := func(s string) {
		spacing := charSpacing * 1000
		if math.Abs(spacing) > columnGap {
			// Large character spacing puts every glyph in its own column.
			for _, ch := range s {
				items = append(items, string(ch))
			}
			return
		}
		items = append(items, s)
	}

	for _, t := range (&scanner{src: string(stream)}).run() {
		if t.kind != tokWord {
			stack = append(stack, t)
			continue
		}

		switch t.value {
		case "Tj":
			if s, ok := topShown(stack, glyphs); ok {
				emit(s)
			}

		case "TJ":
			if len(stack) > 0 && stack[len(stack)-1].kind == tokArray {
				items = append(items, splitTJ(stack[len(stack)-1].children, charSpacing*1000, glyphs)...)
			}

		case "Td", "TD":
			// Two numeric operands, tx ty; a vertical move starts a new line.
			if len(stack) >= 2 {
				ty, err := strconv.ParseFloat(stack[len(stack)-1].value, 64)
				if err == nil && ty != 0 {
					items = append(items, "")
				}
			}

		case "Tm":
			items = append(items, "")

		case "Tc":
			if len(stack) > 0 {
				if v, err := strconv.ParseFloat(stack[len(stack)-1].value, 64); err == nil {
					charSpacing = v
				}
			}
		}
		stack = stack[:0]
	}

	return items
}

// topShown resolves the string operand of a Tj, decoding hex glyph strings.
func topShown(stack []token, glyphs CMap) (string, bool) {
	if len(stack) == 0 {
		return "", false
	}
	switch t := stack[len(stack)-1]; t.kind {
	case tokString:
		return t.value, true
	case tokHex:
		return glyphs.DecodeHex(t.value), true
	}
	return "", false
}

// splitTJ flattens a TJ array into text items, breaking a new item wherever
// the effective gap between adjacent glyphs exceeds columnGap. The gap is the
// character spacing minus any intervening TJ displacement: reports that
// spread columns with a large Tc cancel it with matching TJ values inside a
// cell, so the two have to be netted against each other.
func splitTJ(children []token, spacing float64, glyphs CMap) []string {
	var items []string
	var cell strings.Builder
	gap := 0.0
	first := true

	show := func(s string) {
		for _, ch := range s {
			if !first && cell.Len() > 0 && math.Abs(gap) > columnGap {
				items = append(items, cell.String())
				cell.Reset()
			}
			cell.WriteRune(ch)
			first = false
			gap = spacing
		}
	}

	for _, c := range children {
		switch c.kind {
		case tokString:
			show(c.value)
		case tokHex:
			show(glyphs.DecodeHex(c.value))
		case tokNumber:
			v, err := strconv.ParseFloat(c.value, 64)
			if err != nil {
				continue
			}
			// Positive displacement pulls glyphs together, negative pushes
			// them apart.
			gap -= v
		}
	}
	if cell.Len() > 0 {
		items = append(items, cell.String())
	}
	return items
}

// scanner tokenizes a PDF content stream. It understands exactly what the
// text extractor needs: literal and hex strings, numbers, arrays, and bare
// operator words. Names and dictionaries are consumed and dropped.
type scanner struct {
	src string
	pos int
}

func (sc *scanner) run() []token {
	var tokens []token
	for {
		t, ok := sc.next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, t)
	}
}

func (sc *scanner) next() (token, bool) {
	for sc.pos < len(sc.src) {
		switch ch := sc.src[sc.pos]; {
		case isSpace(ch):
			sc.pos++

		case ch == '%':
			for sc.pos < len(sc.src) && sc.src[sc.pos] != '\n' && sc.src[sc.pos] != '\r' {
				sc.pos++
			}

		case ch == '(':
			return token{kind: tokString, value: sc.literalString()}, true

		case ch == '[':
			return sc.array(), true

		case ch == '<':
			if sc.pos+1 < len(sc.src) && sc.src[sc.pos+1] == '<' {
				sc.skipDict()
				continue
			}
			return token{kind: tokHex, value: sc.hexString()}, true

		case ch == '/':
			sc.pos++
			for sc.pos < len(sc.src) && !isDelim(sc.src[sc.pos]) {
				sc.pos++
			}

		case ch == ']' || ch == '>':
			sc.pos++

		case isNumberStart(ch):
			return token{kind: tokNumber, value: sc.number()}, true

		default:
			start := sc.pos
			for sc.pos < len(sc.src) && !isDelim(sc.src[sc.pos]) {
				sc.pos++
			}
			if word := sc.src[start:sc.pos]; word != "" {
				return token{kind: tokWord, value: word}, true
			}
		}
	}
	return token{}, false
}

// literalString consumes a (...) string, handling nesting, backslash escapes
// and octal codes. sc.pos sits on the opening parenthesis.
func (sc *scanner) literalString() string {
	var buf strings.Builder
	sc.pos++ // (
	depth := 1

	for sc.pos < len(sc.src) && depth > 0 {
		ch := sc.src[sc.pos]
		switch {
		case ch == '\\' && sc.pos+1 < len(sc.src):
			sc.pos++
			esc := sc.src[sc.pos]
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case '(', ')', '\\':
				buf.WriteByte(esc)
			default:
				if esc >= '0' && esc <= '7' {
					oct := string(esc)
					for len(oct) < 3 && sc.pos+1 < len(sc.src) && sc.src[sc.pos+1] >= '0' && sc.src[sc.pos+1] <= '7' {
						sc.pos++
						oct += string(sc.src[sc.pos])
					}
					v, _ := strconv.ParseInt(oct, 8, 32)
					buf.WriteByte(byte(v))
				} else {
					buf.WriteByte(esc)
				}
			}
		case ch == '(':
			depth++
			buf.WriteByte(ch)
		case ch == ')':
			depth--
			if depth > 0 {
				buf.WriteByte(ch)
			}
		default:
			buf.WriteByte(ch)
		}
		sc.pos++
	}
	return buf.String()
}

// hexString consumes a <...> string and returns the raw hex digits.
func (sc *scanner) hexString() string {
	sc.pos++ // <
	start := sc.pos
	for sc.pos < len(sc.src) && sc.src[sc.pos] != '>' {
		sc.pos++
	}
	hexDigits := sc.src[start:sc.pos]
	if sc.pos < len(sc.src) {
		sc.pos++ // >
	}
	return hexDigits
}

// skipDict consumes a << ... >> dictionary, nesting included.
func (sc *scanner) skipDict() {
	depth := 0
	for sc.pos < len(sc.src) {
		if strings.HasPrefix(sc.src[sc.pos:], "<<") {
			depth++
			sc.pos += 2
			continue
		}
		if strings.HasPrefix(sc.src[sc.pos:], ">>") {
			depth--
			sc.pos += 2
			if depth == 0 {
				return
			}
			continue
		}
		sc.pos++
	}
}

func (sc *scanner) number() string {
	start := sc.pos
	if sc.src[sc.pos] == '-' || sc.src[sc.pos] == '+' {
		sc.pos++
	}
	for sc.pos < len(sc.src) && (isDigit(sc.src[sc.pos]) || sc.src[sc.pos] == '.') {
		sc.pos++
	}
	return sc.src[start:sc.pos]
}

// array consumes a [...] operand, keeping only the strings and numbers that
// matter to TJ.
func (sc *scanner) array() token {
	sc.pos++ // [
	var children []token

	for sc.pos < len(sc.src) {
		ch := sc.src[sc.pos]
		switch {
		case isSpace(ch):
			sc.pos++
		case ch == ']':
			sc.pos++
			return token{kind: tokArray, children: children}
		case ch == '(':
			children = append(children, token{kind: tokString, value: sc.literalString()})
		case ch == '<':
			children = append(children, token{kind: tokHex, value: sc.hexString()})
		case isNumberStart(ch):
			children = append(children, token{kind: tokNumber, value: sc.number()})
		default:
			sc.pos++
		}
	}
	return token{kind: tokArray, children: children}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isNumberStart(ch byte) bool {
	return ch == '-' || ch == '+' || ch == '.' || isDigit(ch)
}

func isDelim(ch byte) bool {
	return isSpace(ch) || ch == '(' || ch == '[' || ch == '/' || ch == '<' || ch == ']' || ch == '>'
}
