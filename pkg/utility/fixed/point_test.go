package fixed

import (
	"testing"
)

func TestPoint_Arithmetic(t *testing.T) {
	tests := []struct {
		name     string
		got      Point
		expected string
	}{
		{"add", FromInt(2, 0).Add(FromInt(3, 0)), "5"},
		{"sub", FromInt(2, 0).Sub(FromInt(3, 0)), "-1"},
		{"mul", FromFloat64(1.5).Mul(FromInt(4, 0)), "6.0"},
		{"div", FromInt(3, 0).Div(FromInt(2, 0)), "1.5"},
		{"mul int", FromFloat64(0.1).MulInt(3), "0.3"},
		{"div int", FromInt(1, 0).DivInt(4), "0.25"},
		{"neg", FromInt(7, 0).Neg(), "-7"},
		{"abs", FromInt(-7, 0).Abs(), "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.String() != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, tt.got.String())
			}
		})
	}
}

func TestPoint_Sign(t *testing.T) {
	if got := FromInt(-5, 0).Sign(); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
	if got := Zero.Sign(); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := FromFloat64(0.001).Sign(); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestPoint_Compare(t *testing.T) {
	a := FromFloat64(1.25)
	b := FromFloat64(1.250)

	if !a.Eq(b) {
		t.Error("expected equality regardless of scale")
	}
	if !a.Gte(b) || !a.Lte(b) {
		t.Error("expected non-strict comparisons to hold for equal values")
	}
	if !Min(a, One).Eq(One) {
		t.Error("expected Min to pick the smaller value")
	}
	if !Max(a, One).Eq(a) {
		t.Error("expected Max to pick the larger value")
	}
}

func TestPoint_TextRoundTrip(t *testing.T) {
	in := FromFloat64(123.456)

	text, err := in.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}

	var out Point
	if err := out.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if !in.Eq(out) {
		t.Errorf("expected %s, got %s", in, out)
	}
}

func TestPoint_FromStringInvalid(t *testing.T) {
	if _, err := FromString("not a number"); err == nil {
		t.Error("expected error for invalid input")
	}
}
