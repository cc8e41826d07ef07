package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles and A/B testing.
// Supports gradual rollout, per-party targeting, and location-based
// experiments.
type FeatureFlags struct {
	mu sync.RWMutex

	// Core features
	features map[string]*Feature

	// Override rules (for testing/debugging)
	partyOverrides map[string]map[string]bool // partyID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Parties are assigned based on hash of their ID
	RolloutPercent int

	// Location targeting (e.g., "Almaty", "Astana")
	// Empty means all locations
	TargetLocations []string

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time

	// A/B test variant (for experiments)
	Variants []string
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	PartyID  string // party (seeker/candidate) identifier
	Location string // party location (e.g., "Almaty")
	IsAdmin  bool   // Is admin user
}

// Predefined feature flag names.
const (
	// === Matching Features ===
	FeatureMatchingRemoteBackend = "matching.remote_backend" // score via remote RPC backend
	FeatureMatchingResultCache   = "matching.result_cache"   // cache ranked match lists
	FeatureMatchingExperienceGap = "matching.experience_gap" // flag large experience gaps

	// === Session Features ===
	FeatureSessionEvents      = "session.events"       // publish session lifecycle events
	FeatureSessionAutoRestart = "session.auto_restart" // re-rank when a deck runs out

	// === Mentorship Features ===
	FeatureMentorshipPendingCounts = "mentorship.pending_counts" // cached pending counters

	// === Experimental Features ===
	FeatureExperimentalRankingV2 = "experimental.ranking_v2" // alternate scoring weights
	FeatureExperimentalAnalytics = "experimental.analytics"  // advanced analytics
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:       make(map[string]*Feature),
		partyOverrides: make(map[string]map[string]bool),
	}

	// Initialize all features with defaults
	ff.initializeDefaults()

	// Load overrides from environment
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	// Matching features - core path, enabled by default
	ff.features[FeatureMatchingRemoteBackend] = &Feature{
		Name:           FeatureMatchingRemoteBackend,
		Description:    "Score and rank candidates via the remote match backend",
		Enabled:        false,
		RolloutPercent: 0,
	}

	ff.features[FeatureMatchingResultCache] = &Feature{
		Name:           FeatureMatchingResultCache,
		Description:    "Cache ranked match lists in Redis",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureMatchingExperienceGap] = &Feature{
		Name:           FeatureMatchingExperienceGap,
		Description:    "Mark results where the experience gap is too wide",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Session features
	ff.features[FeatureSessionEvents] = &Feature{
		Name:           FeatureSessionEvents,
		Description:    "Publish session started/exhausted events",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureSessionAutoRestart] = &Feature{
		Name:           FeatureSessionAutoRestart,
		Description:    "Start a fresh ranked session when the current one is exhausted",
		Enabled:        false,
		RolloutPercent: 0,
	}

	// Mentorship features
	ff.features[FeatureMentorshipPendingCounts] = &Feature{
		Name:           FeatureMentorshipPendingCounts,
		Description:    "Serve pending request counts from cache",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Experimental features - disabled by default
	ff.features[FeatureExperimentalRankingV2] = &Feature{
		Name:           FeatureExperimentalRankingV2,
		Description:    "Alternate scoring weight experiment",
		Enabled:        false,
		RolloutPercent: 0,
		Variants:       []string{"control", "skills_heavy", "roles_heavy"},
	}

	ff.features[FeatureExperimentalAnalytics] = &Feature{
		Name:           FeatureExperimentalAnalytics,
		Description:    "Advanced matching analytics",
		Enabled:        false,
		RolloutPercent: 0,
	}
}

// loadFromEnvironment applies env var overrides to the defaults.
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
				continue
			}

			// Try parsing as percentage
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "matching.result_cache" -> "FEATURE_MATCHING_RESULT_CACHE"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check party overrides first
	if ctx != nil && ctx.PartyID != "" {
		if overrides, ok := ff.partyOverrides[ctx.PartyID]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	// Admin users get all features
	if ctx != nil && ctx.IsAdmin {
		return true
	}

	// Check if feature is enabled at all
	if !feature.Enabled {
		return false
	}

	// Check time-based activation
	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	// Check location targeting
	if len(feature.TargetLocations) > 0 && ctx != nil && ctx.Location != "" {
		locationMatch := false
		for _, l := range feature.TargetLocations {
			if l == ctx.Location {
				locationMatch = true
				break
			}
		}
		if !locationMatch {
			return false
		}
	}

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.PartyID != "" {
		return ff.isInRollout(ctx.PartyID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a party is in the rollout percentage.
// Uses consistent hashing so parties stay in their bucket.
func (ff *FeatureFlags) isInRollout(partyID, featureName string, percent int) bool {
	// Create a consistent hash for this party+feature combination
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(partyID))
	hash := h.Sum32()

	// Map to 0-99 range
	bucket := int(hash % 100)

	return bucket < percent
}

// GetVariant returns the A/B test variant for a party.
// Returns empty string if no variants defined or feature disabled.
func (ff *FeatureFlags) GetVariant(featureName string, ctx *FeatureContext) string {
	ff.mu.RLock()
	feature, ok := ff.features[featureName]
	ff.mu.RUnlock()

	if !ok || !ff.IsEnabled(featureName, ctx) {
		return ""
	}

	if len(feature.Variants) == 0 || ctx == nil {
		return ""
	}

	// Use consistent hashing to assign variant
	h := fnv.New32a()
	h.Write([]byte(featureName + "_variant"))
	h.Write([]byte(ctx.PartyID))
	hash := h.Sum32()

	variantIndex := int(hash % uint32(len(feature.Variants)))
	return feature.Variants[variantIndex]
}

// SetPartyOverride sets a feature override for a specific party.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetPartyOverride(partyID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.partyOverrides[partyID]; !ok {
		ff.partyOverrides[partyID] = make(map[string]bool)
	}
	ff.partyOverrides[partyID][featureName] = enabled
}

// ClearPartyOverrides removes all overrides for a party.
func (ff *FeatureFlags) ClearPartyOverrides(partyID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.partyOverrides, partyID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		// Return a copy
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
