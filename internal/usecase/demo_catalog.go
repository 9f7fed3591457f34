package usecase

import (
	"log"
	"math/rand"
	"sync"

	"github.com/ecolens/backend/internal/domain"
)

// demoProducts is the fixed terminal safety net: fully populated,
// plausible records returned when every live tier has failed.
var demoProducts = []domain.CanonicalProduct{
	{
		ProductName:        "Oat Drink Original",
		Brand:              "Havredal",
		Category:           "plant-based-beverages",
		EcoScore:           82,
		PackagingScore:     75,
		CarbonScore:        85,
		IngredientScore:    80,
		CertificationScore: 65,
		HealthScore:        75,
		Recyclable:         true,
		CO2Impact:          0.4,
		Certifications:     []string{"organic", "eu-organic"},
		EcoDescription:     "Oat drink in a recyclable carton. Oat cultivation has a low land and water footprint compared to dairy.",
		Alternatives: []domain.Alternative{
			{ProductName: "Tap water", Reasoning: "Lowest possible footprint for hydration."},
		},
	},
	{
		ProductName:        "Dark Chocolate 70%",
		Brand:              "Cacaoverde",
		Category:           "chocolates",
		EcoScore:           58,
		PackagingScore:     60,
		CarbonScore:        45,
		IngredientScore:    70,
		CertificationScore: 75,
		HealthScore:        40,
		Recyclable:         true,
		CO2Impact:          1.9,
		Certifications:     []string{"fair-trade", "rainforest-alliance"},
		EcoDescription:     "Fair-trade certified dark chocolate in paper wrap. Cocoa farming carries a notable carbon and land-use cost.",
		Alternatives: []domain.Alternative{
			{ProductName: "Locally roasted nuts", Reasoning: "Similar snack profile with a smaller transport footprint."},
			{ProductName: "Seasonal dried fruit", Reasoning: "No cocoa supply chain involved."},
		},
	},
	{
		ProductName:        "Bamboo Toothbrush",
		Brand:              "GreenRoot",
		Category:           "oral-care",
		EcoScore:           88,
		PackagingScore:     85,
		CarbonScore:        80,
		IngredientScore:    75,
		CertificationScore: 60,
		HealthScore:        55,
		Recyclable:         true,
		CO2Impact:          domain.CO2Unknown,
		Certifications:     []string{"fsc", "plastic-free"},
		EcoDescription:     "Compostable bamboo handle and cardboard packaging replace single-use plastic.",
		Alternatives: []domain.Alternative{
			{ProductName: "Replaceable-head toothbrush", Reasoning: "Even less material per year of use."},
		},
	},
	{
		ProductName:        "Sparkling Water Lemon",
		Brand:              "Quellfrisch",
		Category:           "waters",
		EcoScore:           70,
		PackagingScore:     78,
		CarbonScore:        72,
		IngredientScore:    68,
		CertificationScore: 50,
		HealthScore:        85,
		Recyclable:         true,
		CO2Impact:          0.2,
		Certifications:     []string{"deposit-return"},
		EcoDescription:     "Flavored sparkling water in a returnable glass bottle with a deposit scheme.",
		Alternatives: []domain.Alternative{
			{ProductName: "Home-carbonated tap water", Reasoning: "Cuts bottle transport entirely."},
		},
	},
	{
		ProductName:        "Instant Noodles Chicken",
		Brand:              "QuickBowl",
		Category:           "instant-noodles",
		EcoScore:           34,
		PackagingScore:     25,
		CarbonScore:        40,
		IngredientScore:    35,
		CertificationScore: 30,
		HealthScore:        20,
		Recyclable:         false,
		CO2Impact:          0.9,
		Certifications:     []string{},
		EcoDescription:     "Palm-oil based noodles in non-recyclable multilayer plastic with a styrofoam cup.",
		Alternatives: []domain.Alternative{
			{ProductName: "Dry pasta with pantry sauce", Reasoning: "Cardboard packaging and no palm oil."},
			{ProductName: "Bulk rice noodles", Reasoning: "Minimal packaging per portion."},
		},
	},
}

// demoConfidence marks demo records as non-authoritative filler
const demoConfidence = 0.3

// DemoCatalog is the unconditional backstop of the resolution pipeline:
// it never fails and performs no I/O.
type DemoCatalog struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDemoCatalog creates a demo catalog drawing from the given random
// source.
func NewDemoCatalog(rng *rand.Rand) *DemoCatalog {
	return &DemoCatalog{rng: rng}
}

// Generate picks one canned record uniformly at random. hint is the
// original query, used only for logging.
func (d *DemoCatalog) Generate(hint string) *domain.CanonicalProduct {
	d.mu.Lock()
	idx := d.rng.Intn(len(demoProducts))
	d.mu.Unlock()

	log.Printf("[DEMO] Serving canned record %q for %q", demoProducts[idx].ProductName, hint)

	product := demoProducts[idx]
	product.Certifications = append([]string{}, demoProducts[idx].Certifications...)
	product.Alternatives = append([]domain.Alternative{}, demoProducts[idx].Alternatives...)
	product.Source = domain.SourceDemo
	product.Confidence = demoConfidence
	return &product
}
