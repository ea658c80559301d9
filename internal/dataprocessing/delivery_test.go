package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorizeDeliverySpeed(t *testing.T) {
	tests := []struct {
		days float64
		want string
	}{
		{0, DeliveryFast},
		{2, DeliveryFast},
		{3, DeliveryFast},
		{3.5, DeliveryNormal},
		{7.5, DeliverySlow},
		{5, DeliveryNormal},
		{7, DeliveryNormal},
		{8, DeliverySlow},
		{10, DeliverySlow},
		{math.NaN(), DeliveryUnknown},
		{math.Inf(1), DeliveryUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CategorizeDeliverySpeed(tt.days), "days=%v", tt.days)
	}
}

func TestDeliverySpeedOf(t *testing.T) {
	assert.Equal(t, DeliveryUnknown, DeliverySpeedOf(nil))
	assert.Equal(t, DeliveryNormal, DeliverySpeedOf(intPtr(4)))
}
