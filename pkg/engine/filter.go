package engine

import (
	"github.com/samber/lo"
)

// Constraints restrict which offers are eligible for ranking.
type Constraints struct {
	// AllowedSellerClasses is the set of acceptable seller classes. An offer
	// whose class is not in the set is excluded; an empty set excludes all.
	AllowedSellerClasses []SellerClass `json:"allowed_seller_classes"`
	// RequireShipsTo excludes offers that do not ship to the destination.
	RequireShipsTo bool `json:"require_ships_to"`
}

// AllClasses returns constraints admitting every seller class.
func AllClasses() []SellerClass {
	return []SellerClass{SellerClassPrivate, SellerClassProfessional, SellerClassPower}
}

func (c Constraints) allows(o Offer) bool {
	if !lo.Contains(c.AllowedSellerClasses, o.SellerClass) {
		return false
	}
	if c.RequireShipsTo && !o.ShipsToDestination {
		return false
	}
	return true
}

// Filter keeps the offers satisfying the constraints. The result is a new,
// order-preserving subset of the input; the input is never mutated. An empty
// result is a normal outcome, not an error.
func Filter(offers []Offer, c Constraints) []Offer {
	return lo.Filter(offers, func(o Offer, _ int) bool {
		return c.allows(o)
	})
}

// partition splits offers into eligible and excluded, both order-preserving.
func partition(offers []Offer, c Constraints) (eligible, excluded []Offer) {
	return lo.FilterReject(offers, func(o Offer, _ int) bool {
		return c.allows(o)
	})
}
