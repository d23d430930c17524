package cache

import "testing"

func TestLayerInfoFormat(t *testing.T) {
	l := LayerInfo{Name: "name", Hash: 0x0123456789ABCDEF}

	if got := l.HashHex(); got != "0123456789ABCDEF" {
		t.Fatalf("HashHex() = %q", got)
	}
	if got := l.ID(); got != "name-0123456789ABCDEF" {
		t.Fatalf("ID() = %q", got)
	}
	if got := l.WorkPath(); got != "layers/build-name-0123456789ABCDEF" {
		t.Fatalf("WorkPath() = %q", got)
	}
	if got := l.DonePath(); got != "layers/name-0123456789ABCDEF" {
		t.Fatalf("DonePath() = %q", got)
	}
}

func TestLayerInfoParseRoundtrip(t *testing.T) {
	l := LayerInfo{Name: "name", Hash: 0x0123456789ABCDEF}

	got, err := ParseLayerInfo(l.ID())
	if err != nil {
		t.Fatalf("ParseLayerInfo: %v", err)
	}
	if got != l {
		t.Fatalf("ParseLayerInfo() = %+v, want %+v", got, l)
	}
}

func TestLayerInfoParseRejectsShortTail(t *testing.T) {
	if _, err := ParseLayerInfo("name-123456789ABCDEF"); err == nil {
		t.Fatal("expected error for 15-char hash tail")
	}
}

func TestLayerInfoParseRejectsLongTail(t *testing.T) {
	if _, err := ParseLayerInfo("name-0123456789ABCDEF0"); err == nil {
		t.Fatal("expected error for 17-char hash tail")
	}
}

func TestLayerInfoParseRejectsNoSeparator(t *testing.T) {
	if _, err := ParseLayerInfo("nohashhere"); err == nil {
		t.Fatal("expected error when there is no '-' separator")
	}
}

func TestLayerInfoParseMultiSegmentName(t *testing.T) {
	// Names may themselves contain dashes; LastIndex ensures the tail is
	// always taken from the final segment.
	got, err := ParseLayerInfo("my-cool-layer-0000000000000001")
	if err != nil {
		t.Fatalf("ParseLayerInfo: %v", err)
	}
	if got.Name != "my-cool-layer" || got.Hash != 1 {
		t.Fatalf("ParseLayerInfo() = %+v", got)
	}
}
