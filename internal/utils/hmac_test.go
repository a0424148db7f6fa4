package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLiabilityHMACRoundTrip(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	sig := LiabilityHMAC(10000, 12.5, "monthly", start, "secret")

	assert.True(t, VerifyLiabilityHMAC(sig, 10000, 12.5, "monthly", start, "secret"))
	assert.False(t, VerifyLiabilityHMAC(sig, 10001, 12.5, "monthly", start, "secret"))
	assert.False(t, VerifyLiabilityHMAC(sig, 10000, 12.5, "monthly", start, "other-secret"))
}
