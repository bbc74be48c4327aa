package cache

import "strings"

const prefix = "pricing:"

// KeyAutomaticDiscounts returns the per-shop key holding automatic discounts.
func KeyAutomaticDiscounts(shopID string) string {
	return prefix + shopID + ":discounts:automatic"
}

// KeyTaxZones returns the key holding a shop's tax zones for one country.
func KeyTaxZones(shopID, country string) string {
	return prefix + shopID + ":tax_zones:" + strings.ToUpper(country)
}

// KeyTaxZonesPattern matches every country key of a shop.
func KeyTaxZonesPattern(shopID string) string {
	return prefix + shopID + ":tax_zones:*"
}

// KeyWarmLock returns the lock key guarding a shop's cache warm-up.
func KeyWarmLock(shopID string) string {
	return prefix + shopID + ":warm:lock"
}
