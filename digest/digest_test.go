package digest

import (
	"strings"
	"testing"
)

// simpleRand mirrors the original's pseudo-random generator so the same
// non-pathological byte sequences get exercised without a real RNG.
func simpleRand(n int) []byte {
	data := make([]byte, n)
	var acc uint64 = 0x10001
	for i := range data {
		acc = acc*1337 + uint64(i)
		data[i] = byte(acc & 0xFF)
	}
	return data
}

func TestParseRoundtrip(t *testing.T) {
	raw := simpleRand(32)
	var arr [32]byte
	copy(arr[:], raw)

	src := NewSha256(arr)
	dst, err := Parse(src.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !src.Equal(dst) {
		t.Fatalf("roundtrip mismatch: %v != %v", src, dst)
	}
}

func TestParseWrongLength(t *testing.T) {
	if _, err := Parse("sha256:abcd"); err == nil {
		t.Fatal("expected error for short hex")
	}
}

func TestParseNonHex(t *testing.T) {
	bad := "sha256:" + strings.Repeat("z", 64)
	if _, err := Parse(bad); err == nil {
		t.Fatal("expected error for non-hex digest")
	}
}

func TestParseUnknownAlgorithm(t *testing.T) {
	if _, err := Parse("md5:" + strings.Repeat("0", 64)); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}

func TestParseNoColon(t *testing.T) {
	if _, err := Parse("nocolonhere"); err == nil {
		t.Fatal("expected error for missing ':'")
	}
}

func TestEqualityAndOrdering(t *testing.T) {
	zero, _ := Parse("sha256:" + strings.Repeat("0", 64))
	one, _ := Parse("sha256:" + strings.Repeat("1", 64))

	if !zero.Less(one) {
		t.Fatal("expected zero < one")
	}
	if zero.Equal(one) {
		t.Fatal("expected zero != one")
	}
}

func TestTextMarshal(t *testing.T) {
	d, _ := Parse("sha256:" + strings.Repeat("a", 64))
	text, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var back Digest
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if !back.Equal(d) {
		t.Fatal("marshal/unmarshal roundtrip mismatch")
	}
}
