package sales

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vendaflow/backend/internal/domain/marketplace"
)

// minUnitPriceForCharge is the unit price at which the marketplace starts
// charging freight to the seller on non-flex shipments. Below it the seller
// pays nothing, above it the list cost (or base cost, see below) applies.
const minUnitPriceForCharge = 79.0

// Flat flex rates applied when the platform reports no base/list spread
const (
	flexRateBelowThreshold = 15.90
	flexRateAboveThreshold = 1.59
)

// fallbackLogisticTypes are the shipment types for which the platform's
// list cost is frequently reported as null/zero even though a real cost
// exists in base cost: agency drop-off, carrier drop-off, cross-docking
// (collection) and fulfillment.
var fallbackLogisticTypes = map[string]bool{
	"drop_off":      true,
	"xd_drop_off":   true,
	"cross_docking": true,
	"fulfillment":   true,
}

// normalizeLogisticType lower-cases the shipment logistic type and maps the
// localized display labels back to their wire values.
func normalizeLogisticType(logisticType string) string {
	switch t := strings.ToLower(strings.TrimSpace(logisticType)); t {
	case "agência", "agencia":
		return "xd_drop_off"
	case "coleta":
		return "cross_docking"
	case "full":
		return "fulfillment"
	case "flex":
		return "self_service"
	default:
		return t
	}
}

// ConvertLogisticTypeName maps wire logistic types to the display names used
// across the dashboard ("Agência", "FLEX", "Coleta").
func ConvertLogisticTypeName(logisticType string) string {
	switch logisticType {
	case "xd_drop_off":
		return "Agência"
	case "self_service":
		return "FLEX"
	case "cross_docking":
		return "Coleta"
	default:
		return logisticType
	}
}

// MapListingTypeToExposure classifies a Mercado Livre listing type into the
// exposure tier shown on the dashboard. gold_pro is Premium, everything else
// that is known defaults to Clássico.
func MapListingTypeToExposure(listingType string) string {
	if listingType == "" {
		return ""
	}
	normalized := strings.ToLower(listingType)
	if normalized == "gold_pro" {
		return "Premium"
	}
	return "Clássico"
}

func round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

func floatOrZero(v *float64) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v)
}

// ComputeFreight derives the freight outflow for one order from its
// shipping-freight sub-object. The second return value is false when the
// payload carries no usable cost and the order must be skipped for freight
// purposes (the stored value, if any, is left untouched).
//
// The charged cost prefers the platform's list cost; when list cost is
// absent or zero and the logistic type is one of the fallback set, base
// cost is used instead. The persisted value is the negative of the chosen
// cost: freight is recorded as an outflow.
func ComputeFreight(freight *marketplace.OrderFreight, unitPrice float64) (decimal.Decimal, bool) {
	if freight == nil {
		return decimal.Zero, false
	}
	if freight.ListCost == nil && freight.BaseCost == nil {
		return decimal.Zero, false
	}

	lt := normalizeLogisticType(freight.LogisticType)
	listCost := floatOrZero(freight.ListCost)
	baseCost := floatOrZero(freight.BaseCost)
	shipCost := floatOrZero(freight.ShipmentCost)
	unit := decimal.NewFromFloat(unitPrice)
	threshold := decimal.NewFromFloat(minUnitPriceForCharge)

	// FLEX shipments earn the seller a credit instead of a charge
	if lt == "self_service" {
		diff := baseCost.Sub(listCost)
		if round2(diff).IsZero() {
			if unit.LessThan(threshold) {
				return decimal.NewFromFloat(flexRateBelowThreshold), true
			}
			return decimal.NewFromFloat(flexRateAboveThreshold), true
		}
		return round2(diff), true
	}

	if fallbackLogisticTypes[lt] {
		effective := listCost
		if effective.IsZero() && !baseCost.IsZero() {
			effective = baseCost
		}
		charged := effective.Sub(shipCost)

		// Cross-docking is free below the threshold and keeps the charged
		// sign above it: a shipment cost exceeding the effective list cost
		// comes back as a credit.
		if lt == "cross_docking" {
			if unit.LessThan(threshold) {
				return decimal.Zero, true
			}
			return round2(charged.Neg()), true
		}

		if unit.GreaterThan(threshold) {
			return round2(charged.Abs().Neg()), true
		}
		return round2(charged.Neg()), true
	}

	// Unknown logistic types: free below the threshold, otherwise no rule
	// applies and the order is skipped rather than guessed at.
	if unit.LessThan(threshold) {
		return decimal.Zero, true
	}
	return decimal.Zero, false
}
