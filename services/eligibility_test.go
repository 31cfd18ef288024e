package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEligibleForUGC(t *testing.T) {
	assert.False(t, IsEligibleForUGC(0))
	assert.False(t, IsEligibleForUGC(1))
	assert.False(t, IsEligibleForUGC(2))
	assert.True(t, IsEligibleForUGC(3))
	assert.True(t, IsEligibleForUGC(4))
	assert.True(t, IsEligibleForUGC(1000))
}

func TestIsEligibleForUGC_Monotonic(t *testing.T) {
	eligible := false
	for n := 0; n <= 50; n++ {
		if IsEligibleForUGC(n) {
			eligible = true
		} else if eligible {
			t.Fatalf("eligibility regressed at %d orders", n)
		}
	}
	assert.True(t, eligible)
}
