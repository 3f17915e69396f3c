package utils

import "math"

// RoundMoney rounds an amount to two decimal places.
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ToMinorUnits converts a major-unit amount (rupees) into minor units (paise),
// the representation every payment gateway expects.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts gateway minor units back into a major-unit amount.
func FromMinorUnits(minor int64) float64 {
	return RoundMoney(float64(minor) / 100)
}
