package service

import (
	"github.com/linkmint/linkmint/internal/app/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CommissionRule is the resolved rate applied to a conversion. Exactly one of
// Percent or Fixed is set; the zero value means no commission.
type CommissionRule struct {
	Percent *decimal.Decimal
	Fixed   *decimal.Decimal
}

// Commission computes the publisher cut for a payout amount. Pure function,
// exact decimal arithmetic, rounded to cents.
func Commission(amount decimal.Decimal, rule CommissionRule) decimal.Decimal {
	switch {
	case rule.Percent != nil:
		return amount.Mul(*rule.Percent).Div(hundred).Round(2)
	case rule.Fixed != nil:
		return *rule.Fixed
	default:
		return decimal.Zero
	}
}

// ResolveCommissionRule picks the rate for a conversion with a single
// precedence order shared by both attribution paths: link percentage override,
// then the offer-publisher percentage, then the offer-publisher fixed cut.
// ok is false when nothing is configured.
func ResolveCommissionRule(link *model.Link, rule *model.OfferPublisher) (CommissionRule, bool) {
	if link != nil && link.CommissionPercent != nil {
		return CommissionRule{Percent: link.CommissionPercent}, true
	}
	if rule != nil {
		if rule.CommissionPercent != nil {
			return CommissionRule{Percent: rule.CommissionPercent}, true
		}
		if rule.CommissionFixed != nil {
			return CommissionRule{Fixed: rule.CommissionFixed}, true
		}
	}
	return CommissionRule{}, false
}
