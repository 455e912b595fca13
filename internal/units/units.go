// Package units converts feed volumes between ounces and milliliters.
// The application standardizes on an exact 30:1 ratio between the two
// units; it is a fixed constant, not a configuration knob.
package units

import (
	"strconv"

	"github.com/nurturefox/trackd/internal/model"
)

// MlPerOz is the exact conversion ratio used everywhere in the app.
const MlPerOz = 30.0

// OzToMl converts ounces to milliliters.
func OzToMl(oz float64) float64 { return oz * MlPerOz }

// MlToOz converts milliliters to ounces.
func MlToOz(ml float64) float64 { return ml / MlPerOz }

// ToOunces normalizes a feed detail to ounces.
func ToOunces(d model.FeedDetail) float64 {
	if d.Unit == model.UnitMilliliters {
		return MlToOz(d.Amount)
	}
	return d.Amount
}

// ToMilliliters normalizes a feed detail to milliliters.
func ToMilliliters(d model.FeedDetail) float64 {
	if d.Unit == model.UnitOunces {
		return OzToMl(d.Amount)
	}
	return d.Amount
}

// ParseAmount parses caregiver-entered volume text. Malformed or negative
// input recovers to zero; data entry must never fail hard on bad text.
func ParseAmount(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
