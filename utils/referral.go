package utils

import (
	"fmt"
	"strings"
)

// ReferralKind classifies a referral code by its prefix
type ReferralKind string

const (
	AmbassadorReferral ReferralKind = "ambassador"
	VendorReferral     ReferralKind = "vendor"
	UnknownReferral    ReferralKind = "unknown"

	AmbassadorPrefix = "AMB-"
	VendorPrefix     = "VEN-"
)

// FormatReferralCode builds a referral code from a prefix and an allocated
// sequence number. Example: AMB-000042, VEN-000007.
func FormatReferralCode(prefix string, seq int64) string {
	return fmt.Sprintf("%s%06d", prefix, seq)
}

// ClassifyReferralCode determines the referrer kind from the code prefix.
// Unknown prefixes are not an error; the bonus engine ignores them.
func ClassifyReferralCode(code string) ReferralKind {
	code = strings.TrimSpace(strings.ToUpper(code))
	switch {
	case strings.HasPrefix(code, AmbassadorPrefix):
		return AmbassadorReferral
	case strings.HasPrefix(code, VendorPrefix):
		return VendorReferral
	default:
		return UnknownReferral
	}
}

// NormalizeReferralCode trims whitespace and uppercases a raw code from a
// request body. Returns "" for blank input.
func NormalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
