// Package cache stores intermediate pipeline results: planned documents
// keyed by image and planning options, and rendered artifacts keyed by plan
// and render options.
//
// Three backends are provided: [FileCache] for the CLI, [RedisCache] for the
// HTTP server and [NullCache] when caching is disabled. Keys come from a
// [Keyer] so that callers never build key strings by hand.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry kind.
const (
	TTLPlan     = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// PlanKeyOpts holds every option that changes a planned anchor order.
type PlanKeyOpts struct {
	Chords     int     `json:"chords"`
	Opacity    float64 `json:"opacity"`
	Anchors    int     `json:"anchors"`
	Gap        int     `json:"gap"`
	Radius     float64 `json:"radius"`
	Penalty    float64 `json:"penalty"`
	Start      int     `json:"start"`
	Shape      string  `json:"shape"`
	Strategy   string  `json:"strategy"`
	TargetLoss float64 `json:"target_loss"`
	LossWait   int     `json:"loss_wait"`
	Rasterizer string  `json:"rasterizer"`
	MaxSize    int     `json:"max_size"`
}

// ArtifactKeyOpts holds every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	StrokeWidth float64 `json:"stroke_width"`
	Background  bool    `json:"background"`
}

// Keyer builds cache keys.
type Keyer interface {
	// PlanKey returns the key of a plan for the image with the given hash.
	PlanKey(imageHash string, opts PlanKeyOpts) string

	// ArtifactKey returns the key of an artifact rendered from the plan with
	// the given hash.
	ArtifactKey(planHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PlanKey implements Keyer.
func (DefaultKeyer) PlanKey(imageHash string, opts PlanKeyOpts) string {
	return hashKey("plan", imageHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", planHash, opts)
}
