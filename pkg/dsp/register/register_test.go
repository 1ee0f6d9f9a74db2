package register

import (
	"errors"
	"testing"
)

func TestFieldInsertExtract(t *testing.T) {
	var reg uint8
	var err error

	if reg, err = NR10Pace.Insert(reg, 5); err != nil {
		t.Fatal(err)
	}
	if reg, err = NR10Direction.Insert(reg, 1); err != nil {
		t.Fatal(err)
	}
	if reg, err = NR10Step.Insert(reg, 3); err != nil {
		t.Fatal(err)
	}

	if reg != 0x5B {
		t.Errorf("reg = %#02x, want 0x5b", reg)
	}
	if got := NR10Pace.Extract(reg); got != 5 {
		t.Errorf("pace = %d, want 5", got)
	}
	if got := NR10Direction.Extract(reg); got != 1 {
		t.Errorf("direction = %d, want 1", got)
	}
	if got := NR10Step.Extract(reg); got != 3 {
		t.Errorf("step = %d, want 3", got)
	}
}

func TestFieldRejectsOverflow(t *testing.T) {
	reg, err := NR11Duty.Insert(0x3F, 4)
	if !errors.Is(err, ErrNotRepresentable) {
		t.Fatalf("expected ErrNotRepresentable, got %v", err)
	}
	if reg != 0x3F {
		t.Errorf("register modified on error: %#02x", reg)
	}
}

func TestFieldEncode(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		want    uint8
		wantErr bool
	}{
		{"zero", 0, 0, false},
		{"max", 7, 7, false},
		{"too large", 8, 0, true},
		{"fractional", 2.5, 0, true},
		{"negative", -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NR10Step.Encode(tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrNotRepresentable) {
					t.Errorf("Encode(%v) err = %v, want ErrNotRepresentable", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Encode(%v) unexpected error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("Encode(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestFieldSetPreservesOtherBits(t *testing.T) {
	reg, err := NR11Duty.Set(0x15, 2)
	if err != nil {
		t.Fatal(err)
	}
	if reg != 0x95 {
		t.Errorf("reg = %#02x, want 0x95", reg)
	}
	if NR11Length.Extract(reg) != 0x15 {
		t.Errorf("length bits changed: %#02x", NR11Length.Extract(reg))
	}
}
