package usecase

import (
	"math/rand"
	"sync"
)

// SubScores bundles the five sub-scores the scout tier has to invent
// when no catalog data backs them.
type SubScores struct {
	Packaging     float64
	Carbon        float64
	Ingredient    float64
	Certification float64
	Health        float64
}

// SubScoreEstimator produces sub-scores for lower-confidence tiers.
// Pluggable so tests can swap the randomized implementation for a
// deterministic stub.
type SubScoreEstimator interface {
	Estimate(productName string) SubScores
}

// scoreBand is a half-open [lo, hi) range a randomized score is drawn from
type scoreBand struct {
	lo, hi float64
}

func (b scoreBand) draw(rng *rand.Rand) float64 {
	return b.lo + rng.Float64()*(b.hi-b.lo)
}

// Bands for scout-tier sub-scores. Deliberately mid-range: the scout
// tier knows the product identity but nothing about its supply chain.
var (
	packagingBand     = scoreBand{40, 70}
	carbonBand        = scoreBand{40, 70}
	ingredientBand    = scoreBand{45, 75}
	certificationBand = scoreBand{35, 65}
	healthBand        = scoreBand{40, 70}
)

// BandEstimator draws each sub-score uniformly from its documented band.
// rand.Rand is not safe for concurrent use, so draws are serialized.
type BandEstimator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewBandEstimator creates an estimator from the given random source
func NewBandEstimator(rng *rand.Rand) *BandEstimator {
	return &BandEstimator{rng: rng}
}

// Estimate draws a fresh set of sub-scores
func (e *BandEstimator) Estimate(productName string) SubScores {
	e.mu.Lock()
	defer e.mu.Unlock()

	return SubScores{
		Packaging:     packagingBand.draw(e.rng),
		Carbon:        carbonBand.draw(e.rng),
		Ingredient:    ingredientBand.draw(e.rng),
		Certification: certificationBand.draw(e.rng),
		Health:        healthBand.draw(e.rng),
	}
}

// FixedEstimator always returns the same sub-scores. Used in tests and
// anywhere deterministic output matters more than variety.
type FixedEstimator struct {
	Scores SubScores
}

// Estimate returns the fixed sub-scores
func (e FixedEstimator) Estimate(productName string) SubScores {
	return e.Scores
}
