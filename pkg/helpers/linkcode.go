package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"time"
)

// Device pairing codes are derived, not stored: any replica holding the
// secret reproduces the same code for the same user inside the same
// 60-second window, so a second device can display or verify it without any
// server-side session state.

const (
	linkCodeWindow  = 60 * time.Second
	linkCodeLength  = 6
	linkCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// LinkCode is a short pairing code valid until ExpiresAt (the end of the
// window it was derived from).
type LinkCode struct {
	Code      string
	ExpiresAt time.Time
}

// DeriveLinkCode computes the pairing code for userID at the given wall-clock
// time: HMAC-SHA256(secret, "<userID>:<window>"), first 6 digest bytes mapped
// onto the 36-symbol charset.
//
// The byte%36 mapping is slightly biased (256 is not a multiple of 36); it is
// kept as-is because deployed pairing clients derive the identical code.
func DeriveLinkCode(secret string, userID string, now time.Time) LinkCode {
	window := now.Unix() / int64(linkCodeWindow/time.Second)

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s:%d", userID, window)
	digest := mac.Sum(nil)

	code := make([]byte, linkCodeLength)
	for i := 0; i < linkCodeLength; i++ {
		code[i] = linkCodeCharset[int(digest[i])%len(linkCodeCharset)]
	}

	expires := time.Unix((window+1)*int64(linkCodeWindow/time.Second), 0).UTC()
	return LinkCode{Code: string(code), ExpiresAt: expires}
}
