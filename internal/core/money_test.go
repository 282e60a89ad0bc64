package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0", 0, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestLineAmount(t *testing.T) {
	cases := []struct {
		qty   string
		price int64
		want  int64
	}{
		{"2", 5000, 10000},
		{"1", 5000, 5000},
		{"2.5", 100, 250},
		{"0.333", 100, 33},
		{"0", 100, 0},
	}
	for _, tc := range cases {
		qty, err := decimal.NewFromString(tc.qty)
		if err != nil {
			t.Fatalf("bad quantity %q: %v", tc.qty, err)
		}
		got := LineAmount(qty, Money{Cents: tc.price})
		if got.Cents != tc.want {
			t.Fatalf("LineAmount(%s, %d) = %d, want %d", tc.qty, tc.price, got.Cents, tc.want)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Fatalf("zero should be valid, got %v", err)
	}
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 300}
	b := Money{Cents: 500}
	if got := a.Sub(b); got.Cents != -200 || !got.IsNegative() {
		t.Fatalf("expected -200 negative, got %d", got.Cents)
	}
	if got := a.Add(b); got.Cents != 800 {
		t.Fatalf("expected 800, got %d", got.Cents)
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0"},
		{50000, "500"},
		{1250, "12.5"},
		{1234, "12.34"},
		{105, "1.05"},
		{-20000, "-200"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Errorf("String(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}
