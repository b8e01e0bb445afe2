package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache defines the interface for caching operations.
// Entries carry their own freshness deadline and stay readable as stale
// for a retention window after it, so callers can serve stale data when the source fails.
type Cache interface {
	// Get retrieves a value from the cache.
	// found is false when the key is absent; isFresh is false once the entry's ttl has passed.
	Get(ctx context.Context, key string) (value interface{}, isFresh bool, found bool)

	// Set adds a value to the cache, fresh for ttl.
	// If ttl is 0 or negative, DefaultExpiration is used.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)

	// Delete removes a key from the cache
	Delete(ctx context.Context, key string)

	// DeleteByPrefix removes all keys with the given prefix
	DeleteByPrefix(ctx context.Context, prefix string)

	// Flush removes all items from the cache
	Flush(ctx context.Context)
}

// Predefined cache key prefixes for the Billing API reads
const (
	PrefixSubscription = "subscription:v1"
	PrefixPlans        = "plans:v1"
	PrefixTaxQuote     = "tax:v1"
	PrefixChangeLimits = "limits:v1"
)

// OrganizationPrefixes lists the prefixes holding organization scoped entries
var OrganizationPrefixes = []string{
	PrefixSubscription,
	PrefixChangeLimits,
}

// GenerateKey creates a cache key from a prefix and a set of parameters
// It joins all parameters with a colon and appends them to the prefix
func GenerateKey(prefix string, params ...interface{}) string {
	parts := make([]string, len(params)+1)
	parts[0] = prefix

	for i, param := range params {
		parts[i+1] = fmt.Sprintf("%v", param)
	}

	return strings.Join(parts, ":")
}

// keyPrefix returns the leading "name:version" part of a key, used as a metrics label
func keyPrefix(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 2 {
		return key
	}
	return parts[0] + ":" + parts[1]
}

// Encoded is a JSON encoded value handed out by backends that serialize,
// such as RedisCache. GetOrLoad decodes it into the requested type.
type Encoded []byte

// entry is the stored envelope
type entry struct {
	Value     interface{} `json:"value"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (e entry) fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// OrganizationKey builds an organization scoped key, always ending in a name part
// so prefix invalidation for org_1 never touches org_10.
func OrganizationKey(prefix, organizationID, name string) string {
	return GenerateKey(prefix, organizationID, name)
}

// InvalidateOrganization drops every organization scoped entry after a mutation
func InvalidateOrganization(ctx context.Context, c Cache, organizationID string) {
	if c == nil || organizationID == "" {
		return
	}
	for _, prefix := range OrganizationPrefixes {
		c.DeleteByPrefix(ctx, GenerateKey(prefix, organizationID)+":")
	}
}
