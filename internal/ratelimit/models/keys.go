package models

import "strings"

const keyPrefix = "todolists:ratelimit"

// SanitizeKeySegment escapes the key delimiter so a client-supplied value
// cannot spill into an adjacent key segment. IPv6 addresses contain ':' and
// are stored with '_' instead.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// NewIPKey returns the bucket key for a client IP.
func NewIPKey(ip string) string {
	if ip == "" {
		ip = "unknown"
	}
	return keyPrefix + ":ip:" + SanitizeKeySegment(ip)
}
