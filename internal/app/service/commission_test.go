package service

import (
	"testing"

	"github.com/linkmint/linkmint/internal/app/model"
	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func TestCommission_Percentage(t *testing.T) {
	pct := dec(t, "10")
	got := Commission(dec(t, "100.00"), CommissionRule{Percent: &pct})

	// Exact decimal result, not a float approximation.
	if got.String() != "10" {
		t.Fatalf("expected exactly 10, got %s", got.String())
	}
	if !got.Equal(dec(t, "10.00")) {
		t.Fatalf("expected 10.00, got %s", got.String())
	}
}

func TestCommission_PercentageRoundsToCents(t *testing.T) {
	pct := dec(t, "15")
	got := Commission(dec(t, "200.00"), CommissionRule{Percent: &pct})
	if !got.Equal(dec(t, "30.00")) {
		t.Fatalf("expected 30.00, got %s", got.String())
	}

	pct = dec(t, "33.33")
	got = Commission(dec(t, "0.10"), CommissionRule{Percent: &pct})
	if !got.Equal(dec(t, "0.03")) {
		t.Fatalf("expected 0.03, got %s", got.String())
	}
}

func TestCommission_FixedCut(t *testing.T) {
	fixed := dec(t, "7.50")
	got := Commission(dec(t, "199.99"), CommissionRule{Fixed: &fixed})
	if !got.Equal(fixed) {
		t.Fatalf("expected 7.50, got %s", got.String())
	}
}

func TestCommission_NoRule(t *testing.T) {
	got := Commission(dec(t, "100.00"), CommissionRule{})
	if !got.IsZero() {
		t.Fatalf("expected zero commission, got %s", got.String())
	}
}

func TestResolveCommissionRule_Precedence(t *testing.T) {
	linkPct := dec(t, "20")
	opPct := dec(t, "10")
	opFixed := dec(t, "5.00")

	link := &model.Link{CommissionPercent: &linkPct}
	op := &model.OfferPublisher{CommissionPercent: &opPct, CommissionFixed: &opFixed}

	rule, ok := ResolveCommissionRule(link, op)
	if !ok || rule.Percent == nil || !rule.Percent.Equal(linkPct) {
		t.Fatalf("expected link override to win, got %+v", rule)
	}

	rule, ok = ResolveCommissionRule(nil, op)
	if !ok || rule.Percent == nil || !rule.Percent.Equal(opPct) {
		t.Fatalf("expected offer-publisher percentage, got %+v", rule)
	}

	rule, ok = ResolveCommissionRule(nil, &model.OfferPublisher{CommissionFixed: &opFixed})
	if !ok || rule.Fixed == nil || !rule.Fixed.Equal(opFixed) {
		t.Fatalf("expected fixed cut fallback, got %+v", rule)
	}

	if _, ok = ResolveCommissionRule(nil, nil); ok {
		t.Fatal("expected no rule when nothing is configured")
	}

	if _, ok = ResolveCommissionRule(&model.Link{}, &model.OfferPublisher{}); ok {
		t.Fatal("expected no rule when rows carry no rates")
	}
}
