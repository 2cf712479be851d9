package pdftext

import "testing"

const sampleCMap = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
2 begincodespacerange
<0000> <FFFF>
endcodespacerange
2 beginbfchar
<0003> <0020>
<000F> <002C>
endbfchar
1 beginbfrange
<0024> <003D> <0041>
endbfrange
endcmap
end end`

func TestParseCMap(t *testing.T) {
	cmap := ParseCMap([]byte(sampleCMap))

	tests := []struct {
		gid  uint16
		want rune
	}{
		{0x0003, ' '},
		{0x000F, ','},
		{0x0024, 'A'},
		{0x0025, 'B'},
		{0x003D, 'Z'},
	}
	for _, tt := range tests {
		if got, ok := cmap[tt.gid]; !ok || got != tt.want {
			t.Errorf("cmap[%#04x] = %q (present=%v), want %q", tt.gid, got, ok, tt.want)
		}
	}
}

func TestDecodeHex(t *testing.T) {
	cmap := ParseCMap([]byte(sampleCMap))

	if got := cmap.DecodeHex("002400030025"); got != "A B" {
		t.Errorf("DecodeHex = %q, want %q", got, "A B")
	}
	if got := cmap.DecodeHex("0024 0025\n0026"); got != "ABC" {
		t.Errorf("DecodeHex with whitespace = %q, want %q", got, "ABC")
	}
}

func TestDecodeHexIdentityFallback(t *testing.T) {
	// Glyph IDs not covered by the map decode as their own code point.
	var cmap CMap
	if got := cmap.DecodeHex("00480069"); got != "Hi" {
		t.Errorf("identity decode = %q, want %q", got, "Hi")
	}
}

func TestDecodeHexBadInput(t *testing.T) {
	var cmap CMap
	if got := cmap.DecodeHex("zz"); got != "" {
		t.Errorf("bad hex decoded to %q, want empty", got)
	}
}
