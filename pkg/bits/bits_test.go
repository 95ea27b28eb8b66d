package bits

import "testing"

func TestBit(t *testing.T) {
	tests := []struct {
		n    uint
		want byte
	}{
		{1, 0x01},
		{2, 0x02},
		{4, 0x08},
		{8, 0x80},
		{0, 0x00}, // out of range
		{9, 0x00}, // out of range
	}

	for _, tt := range tests {
		if got := Bit(tt.n); got != tt.want {
			t.Errorf("Bit(%d) = %02X, want %02X", tt.n, got, tt.want)
		}
	}
}

func TestIsSet(t *testing.T) {
	if !IsSet(0x80, 8) {
		t.Error("bit 8 of 0x80 should be set")
	}
	if IsSet(0x7F, 8) {
		t.Error("bit 8 of 0x7F should not be set")
	}
	if !IsSet(0x01, 1) {
		t.Error("bit 1 of 0x01 should be set")
	}
}

func TestSetClear(t *testing.T) {
	b := Set(0x00, 8)
	if b != 0x80 {
		t.Errorf("Set(0x00, 8) = %02X, want 80", b)
	}
	b = Clear(0x85, 8)
	if b != 0x05 {
		t.Errorf("Clear(0x85, 8) = %02X, want 05", b)
	}
	// Clearing an unset bit is a no-op.
	if got := Clear(0x05, 8); got != 0x05 {
		t.Errorf("Clear(0x05, 8) = %02X, want 05", got)
	}
}

func TestGetRange(t *testing.T) {
	tests := []struct {
		b         byte
		high, low uint
		want      byte
	}{
		{0b0000_1100, 4, 3, 0b11},
		{0b1010_0000, 8, 5, 0b1010},
		{0xFF, 8, 1, 0xFF},
		{0xFF, 1, 2, 0x00}, // inverted range
	}

	for _, tt := range tests {
		if got := GetRange(tt.b, tt.high, tt.low); got != tt.want {
			t.Errorf("GetRange(%08b, %d, %d) = %d, want %d",
				tt.b, tt.high, tt.low, got, tt.want)
		}
	}
}
