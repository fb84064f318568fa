package crown

import "strings"

// Identity names a caller, the administrator, or the holder.
type Identity string

// NullIdentity is the holder before any claim and after relinquishment.
const NullIdentity Identity = "0x0000000000000000000000000000000000000000"

// sentinelPrefix marks engine-owned identities.
const sentinelPrefix = "crown:"

// SentinelFor returns the engine-owned identity that holds the crown after a
// revoke. No caller may use it.
func SentinelFor(engineID string) Identity {
	return Identity(sentinelPrefix + strings.TrimSpace(engineID))
}

// NormalizeIdentity trims surrounding whitespace from operator input such as
// configuration. Callers are never normalized: identities compare exactly.
func NormalizeIdentity(value string) Identity {
	return Identity(strings.TrimSpace(value))
}

// IsNull reports whether id is empty or the null identity.
func (id Identity) IsNull() bool {
	return id == "" || id == NullIdentity
}

// IsSentinel reports whether id has the shape of an engine sentinel. Only the
// exact sentinel of an engine is reserved for that engine.
func (id Identity) IsSentinel() bool {
	return strings.HasPrefix(string(id), sentinelPrefix)
}

func (id Identity) String() string {
	return string(id)
}
