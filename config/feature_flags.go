package config

import (
	"sort"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// FeatureFlags manages on/off toggles for optional infrastructure. Turning a
// feature off never changes an economic result: every flagged component has
// a correct fallback (recompute instead of cache, repository guard instead of
// lock, no reminders).
type FeatureFlags struct {
	mu       sync.RWMutex
	features map[string]*Feature
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool
}

// Predefined feature flag names.
const (
	FeatureEarningsCache     = "earnings.cache"            // Cache mentor earnings summaries
	FeatureIssuanceLock      = "certificate.issuance_lock" // Distributed lock around issuance
	FeatureInstallmentRemind = "installments.reminders"    // Worker publishes due reminders
	FeatureRedisEventRelay   = "events.redis_relay"        // Relay domain events between processes
)

// LoadFeatureFlags registers the defaults and applies FEATURE_* overrides
// found in v. v may be nil.
func LoadFeatureFlags(v *viper.Viper) *FeatureFlags {
	ff := &FeatureFlags{features: make(map[string]*Feature)}
	ff.initializeDefaults()
	if v != nil {
		ff.loadFrom(v)
	}
	return ff
}

func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureEarningsCache] = &Feature{
		Name:        FeatureEarningsCache,
		Description: "Serve mentor earnings from Redis, invalidated on distribution events",
		Enabled:     true,
	}
	ff.features[FeatureIssuanceLock] = &Feature{
		Name:        FeatureIssuanceLock,
		Description: "Take a Redis lock before evaluating a certificate issuance",
		Enabled:     true,
	}
	ff.features[FeatureInstallmentRemind] = &Feature{
		Name:        FeatureInstallmentRemind,
		Description: "Publish installment_due events for upcoming installments",
		Enabled:     true,
	}
	ff.features[FeatureRedisEventRelay] = &Feature{
		Name:        FeatureRedisEventRelay,
		Description: "Relay domain events over Redis pub/sub so the worker and API share invalidations",
		Enabled:     true,
	}
}

// loadFrom applies overrides. Format: FEATURE_<NAME>=true|false
// Example: FEATURE_EARNINGS_CACHE=false
func (ff *FeatureFlags) loadFrom(v *viper.Viper) {
	for name, feature := range ff.features {
		key := featureNameToEnvKey(name)
		if v.IsSet(key) {
			feature.Enabled = v.GetBool(key)
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "earnings.cache" -> "FEATURE_EARNINGS_CACHE"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled reports whether a feature is on. Unknown features are off.
func (ff *FeatureFlags) IsEnabled(featureName string) bool {
	if ff == nil {
		return false
	}
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, ok := ff.features[featureName]
	return ok && feature.Enabled
}

// SetEnabled toggles a feature at runtime.
func (ff *FeatureFlags) SetEnabled(featureName string, enabled bool) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}
	feature.Enabled = enabled
	return nil
}

// GetAllFeatures returns copies of all features sorted by name.
func (ff *FeatureFlags) GetAllFeatures() []Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make([]Feature, 0, len(ff.features))
	for _, f := range ff.features {
		result = append(result, *f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// --- Errors ---

var ErrFeatureNotFound = &FeatureFlagError{Message: "feature not found"}

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
