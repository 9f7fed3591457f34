package domain

// AIAnalysis is the structured payload the generative model is prompted to
// return. EcoScore is a pointer because the model may omit it; the
// orchestrator substitutes a default rather than trusting a zero value.
type AIAnalysis struct {
	ProductName  string        `json:"product_name"`
	Brand        string        `json:"brand"`
	Category     string        `json:"category"`
	EcoScore     *float64      `json:"eco_score"`
	Confidence   float64       `json:"confidence"`
	Reasoning    string        `json:"reasoning"`
	Alternatives []Alternative `json:"alternatives"`
}

// GenerateOptions tune a single generation call. Fast selects the
// low-latency model variant used for near-real-time overlays.
type GenerateOptions struct {
	Temperature     float32
	MaxOutputTokens int32
	Fast            bool
}
