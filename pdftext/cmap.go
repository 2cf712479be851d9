package pdftext

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
)

// CMap maps 2-byte glyph IDs to Unicode runes, parsed from a font's ToUnicode
// stream.
type CMap map[uint16]rune

// ParseCMap reads the beginbfchar/endbfchar and beginbfrange/endbfrange
// sections of a ToUnicode CMap stream.
func ParseCMap(data []byte) CMap {
	cmap := make(CMap)

	forEachSection(string(data), "beginbfchar", "endbfchar", func(section string) {
		tokens := hexTokens(section)
		for i := 0; i+1 < len(tokens); i += 2 {
			cmap[hexUint16(tokens[i])] = rune(hexUint16(tokens[i+1]))
		}
	})

	forEachSection(string(data), "beginbfrange", "endbfrange", func(section string) {
		tokens := hexTokens(section)
		for i := 0; i+2 < len(tokens); i += 3 {
			lo, hi := hexUint16(tokens[i]), hexUint16(tokens[i+1])
			dst := hexUint16(tokens[i+2])
			for g := lo; g <= hi; g++ {
				cmap[g] = rune(dst + (g - lo))
			}
		}
	})

	return cmap
}

// DecodeHex decodes a hex glyph string of 2-byte big-endian glyph IDs. Glyphs
// missing from the map decode as their own code point, which covers fonts
// that use an identity encoding without a ToUnicode stream.
func (cmap CMap) DecodeHex(hexStr string) string {
	hexStr = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, hexStr)
	if len(hexStr)%2 != 0 {
		// Odd digit counts are padded with 0 per the PDF string rules.
		hexStr += "0"
	}

	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return ""
	}

	var buf strings.Builder
	for i := 0; i+1 < len(b); i += 2 {
		gid := binary.BigEndian.Uint16(b[i : i+2])
		if r, ok := cmap[gid]; ok {
			buf.WriteRune(r)
			continue
		}
		buf.WriteRune(rune(gid))
	}
	return buf.String()
}

// forEachSection invokes fn with the text of every begin...end section pair.
func forEachSection(s, begin, end string, fn func(section string)) {
	for {
		i := strings.Index(s, begin)
		if i < 0 {
			return
		}
		s = s[i+len(begin):]
		j := strings.Index(s, end)
		if j < 0 {
			return
		}
		fn(s[:j])
		s = s[j+len(end):]
	}
}

// hexTokens pulls every <hex> token out of a CMap section.
func hexTokens(s string) []string {
	var tokens []string
	for {
		start := strings.IndexByte(s, '<')
		if start < 0 {
			return tokens
		}
		rest := s[start+1:]
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return tokens
		}
		tokens = append(tokens, rest[:end])
		s = rest[end+1:]
	}
}

func hexUint16(h string) uint16 {
	b, err := hex.DecodeString(strings.TrimSpace(h))
	if err != nil || len(b) < 2 {
		return 0
	}
	return binary.BigEndian.Uint16(b[:2])
}
