package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{" 2.50 ", "2.5", true},
		{"0", "0", true},
		{"-1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		part, whole string
		want        string
	}{
		{"150", "500", "30"},
		{"1", "3", "33.33"},
		{"2", "3", "66.67"},
		{"600", "500", "120"},
		{"10", "0", "0"},
		{"0", "0", "0"},
		{"112.5", "87.5", "128.57"},
	}
	for _, tc := range cases {
		got := Percentage(decimal.RequireFromString(tc.part), decimal.RequireFromString(tc.whole))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("Percentage(%s, %s) = %s, want %s", tc.part, tc.whole, got, tc.want)
		}
	}
}

func TestRoundingIsHalfUp(t *testing.T) {
	if got := RoundMoney(decimal.RequireFromString("2.345")); !got.Equal(decimal.RequireFromString("2.35")) {
		t.Fatalf("RoundMoney = %s", got)
	}
	if got := DivMoney(decimal.NewFromInt(1), decimal.NewFromInt(8)); !got.Equal(decimal.RequireFromString("0.13")) {
		t.Fatalf("DivMoney = %s", got)
	}
	if got := DivMoney(decimal.NewFromInt(1), decimal.Zero); !got.IsZero() {
		t.Fatalf("DivMoney by zero = %s", got)
	}
	if got := FormatMoney(decimal.RequireFromString("87.5")); got != "87.50" {
		t.Fatalf("FormatMoney = %s", got)
	}
}
