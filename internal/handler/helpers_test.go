package handler

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/juanpmar/finko/finko-backend/internal/util"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := util.ParseDate(s)
	if err != nil {
		t.Fatalf("Bad test date %q: %v", s, err)
	}
	return d
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("Bad test amount %q: %v", s, err)
	}
	return d
}
