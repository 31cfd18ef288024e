// services/eligibility.go
package services

// MinOrdersForUGC is the paid-order count at which a customer becomes
// eligible for a UGC invitation. Fixed for all shops.
const MinOrdersForUGC = 3

// IsEligibleForUGC reports whether a customer with ordersCount paid orders
// qualifies for a UGC invitation. Monotonic: once true it stays true.
func IsEligibleForUGC(ordersCount int) bool {
	return ordersCount >= MinOrdersForUGC
}
