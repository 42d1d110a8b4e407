package french

import (
	"math"
	"testing"
)

const sample = `This file was created by CMPT_ME_BEME_RETS using the 202412 CRSP database.

,Mkt-RF,SMB,HML,RF
192607,  2.96, -2.56, -2.43, 0.22
192608,  2.64, -1.17,  3.82, 0.25

 Annual Factors: January-December

,Mkt-RF,SMB,HML,RF
1927, 29.47, -2.46, -3.75, 3.12
1928, 35.39,  4.20, -6.15, 3.56
Copyright 2024 Kenneth R. French
`

func TestAnnualRows(t *testing.T) {
	rows := annualRows(sample, 5)

	if len(rows) != 2 {
		t.Fatalf("rows = %v, want the 2 annual rows only", rows)
	}
	r, ok := rows[1927]
	if !ok {
		t.Fatal("1927 missing")
	}
	if r[1] != "29.47" || r[4] != "3.12" {
		t.Errorf("1927 fields = %v, want Mkt-RF 29.47 and RF 3.12", r)
	}
	// Monthly rows (192607) and prose must not leak in.
	if _, ok := rows[192607]; ok {
		t.Error("monthly row mistaken for a year")
	}
}

func TestAnnualRowsMinFields(t *testing.T) {
	rows := annualRows("1927, 29.47\n1928, 35.39, 4.20, -6.15, 3.56\n", 5)
	if len(rows) != 1 {
		t.Errorf("rows = %v, want only the row with enough fields", rows)
	}
}

func TestPct(t *testing.T) {
	testCases := []struct {
		field     string
		want      float64
		expectErr bool
	}{
		{"29.47", 0.2947, false},
		{"-2.46", -0.0246, false},
		{"0.00", 0, false},
		{"-99.99", -0.9999, false},
		{"n/a", 0, true},
		{"", 0, true},
	}

	for _, tc := range testCases {
		got, err := pct(tc.field)
		if hasErr := err != nil; hasErr != tc.expectErr {
			t.Errorf("pct(%q) returned error: %v, want error: %v", tc.field, err, tc.expectErr)
			continue
		}
		if !tc.expectErr && math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("pct(%q) = %v, want %v", tc.field, got, tc.want)
		}
	}
}

func TestSum(t *testing.T) {
	fields := []string{"1927", "29.47", "-2.46", "-3.75", "3.12"}

	got, err := sum(fields, 1, 4)
	if err != nil {
		t.Fatalf("sum() returned error: %v", err)
	}
	// Mkt-RF + RF, as fractions.
	if math.Abs(got-0.3259) > 1e-12 {
		t.Errorf("sum(Mkt-RF, RF) = %v, want 0.3259", got)
	}

	if _, err := sum(fields, 1, 9); err == nil {
		t.Error("sum() out of range succeeded, want error")
	}
}
