package core

import "testing"

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"small amount keeps cents", 123.45, "$123.45"},
		{"zero", 0, "$0.00"},
		{"whole dollars under 1000", 42, "$42.00"},
		{"thousands drop the fraction", 12345.67, "$12,345"},
		{"exactly 1000", 1000, "$1,000"},
		{"fraction truncated not rounded", 1999.99, "$1,999"},
		{"millions grouped", 1234567, "$1,234,567"},
		{"negative small amount", -123.45, "-$123.45"},
		{"negative thousands", -12345, "-$12,345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMoney(tt.value); got != tt.want {
				t.Errorf("FormatMoney(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatMoneyWith(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		currency Currency
		want     string
	}{
		{"USD suffix", 123.45, USD, "$123.45USD"},
		{"CAD suffix on grouped amount", -12345, CAD, "-$12,345CAD"},
		{"USD suffix on grouped amount", 12345, USD, "$12,345USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMoneyWith(tt.value, tt.currency); got != tt.want {
				t.Errorf("FormatMoneyWith(%v, %s) = %q, want %q", tt.value, tt.currency, got, tt.want)
			}
		})
	}
}
