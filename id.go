package stepwise

import "github.com/google/uuid"

// IDGenerator produces unique identifiers for runs, responses and approvals.
type IDGenerator func() string

// NewID returns a random UUID string.
func NewID() string {
	return uuid.NewString()
}

// PrefixedIDs returns a generator that prepends prefix to every ID.
func PrefixedIDs(prefix string) IDGenerator {
	return func() string {
		return prefix + "-" + uuid.NewString()
	}
}
