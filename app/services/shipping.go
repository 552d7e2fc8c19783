package services

import (
	"math"
	"strings"
)

var metroPrefixes = []string{"110", "400", "560", "600", "700", "380"}

const (
	metroRate    = 50
	standardRate = 80
	perExtraKg   = 20
)

// Quote prices delivery to pincode for a parcel of weightKg. Metro prefixes
// cost less; every started kilogram above the first adds a flat surcharge.
func Quote(pincode string, weightKg float64) float64 {
	cost := float64(standardRate)
	for _, p := range metroPrefixes {
		if strings.HasPrefix(strings.TrimSpace(pincode), p) {
			cost = metroRate
			break
		}
	}
	if weightKg > 1 {
		cost += math.Ceil(weightKg-1) * perExtraKg
	}
	return cost
}

// IsMetro reports whether pincode falls in a metro delivery zone.
func IsMetro(pincode string) bool {
	return Quote(pincode, 0) == metroRate
}
