package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// LiabilityHMAC signs the immutable liability terms so tampering with a
// stored record is detectable on read.
func LiabilityHMAC(principal, rate float64, frequency string, startDate time.Time, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%.2f|%.6f|%s|%s", principal, rate, frequency, startDate.Format("2006-01-02"))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyLiabilityHMAC reports whether a stored signature matches the terms.
func VerifyLiabilityHMAC(signature string, principal, rate float64, frequency string, startDate time.Time, secret string) bool {
	expected := LiabilityHMAC(principal, rate, frequency, startDate, secret)
	return hmac.Equal([]byte(signature), []byte(expected))
}
