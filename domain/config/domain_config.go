package config

// DomainConfig holds configurable business rules and constraints
type DomainConfig struct {
	// Similarity search tuning
	SimilarityThreshold float64
	DefaultSearchLimit  int
	MaxSearchLimit      int

	// Node constraints
	MaxTagsPerNode int

	// Link constraints
	AllowSelfLinks      bool
	AllowReverseLinks   bool
	MaxLinksPerNode     int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		SimilarityThreshold: 0.7,
		DefaultSearchLimit:  20,
		MaxSearchLimit:      200,
		MaxTagsPerNode:      50,
		AllowSelfLinks:      false,
		// A→B and B→A under different link types are distinct relations;
		// only the exact (source, target, type) triple is unique.
		AllowReverseLinks: true,
		MaxLinksPerNode:   1000,
	}
}
