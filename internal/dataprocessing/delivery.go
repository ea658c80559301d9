package dataprocessing

import "math"

// Delivery speed buckets
const (
	DeliveryFast    = "1-3 days"
	DeliveryNormal  = "4-7 days"
	DeliverySlow    = "8+ days"
	DeliveryUnknown = "Unknown"
)

// DeliverySpeedBuckets lists the known buckets from fastest to slowest
var DeliverySpeedBuckets = []string{DeliveryFast, DeliveryNormal, DeliverySlow}

// CategorizeDeliverySpeed buckets a delivery duration in days
func CategorizeDeliverySpeed(days float64) string {
	switch {
	case math.IsNaN(days) || math.IsInf(days, 0):
		return DeliveryUnknown
	case days <= 3:
		return DeliveryFast
	case days <= 7:
		return DeliveryNormal
	default:
		return DeliverySlow
	}
}

// DeliverySpeedOf buckets an optional whole-day duration; nil is Unknown
func DeliverySpeedOf(days *int) string {
	if days == nil {
		return DeliveryUnknown
	}
	return CategorizeDeliverySpeed(float64(*days))
}
