package risk

// Radius is one ring of the proximity model
type Radius struct {
	Km     float64
	Weight float64
}

// Weights are the aggregation weights of the five components
type Weights struct {
	Category  float64
	Proximity float64
	Recency   float64
	Financial float64
	Volume    float64
}

// Config holds every tunable the engine reads. Treat a Config as immutable
// once handed to NewEngine.
type Config struct {
	CategoryWeights map[Category]float64
	DefaultCategory float64

	Radii             []Radius
	ProximitySaturate float64

	RecencyDecayDays float64

	MaxLossINR float64

	VolumeWindowDays int
	VolumeSaturate   float64

	Weights Weights

	NeighborRadiusKm float64
}

// DefaultConfig returns the production scoring constants
func DefaultConfig() Config {
	return Config{
		CategoryWeights: map[Category]float64{
			CategoryDatingRomance:       0.90,
			CategoryHarassmentExtortion: 0.90,
			CategoryInvestmentCrypto:    0.85,
			CategoryPaymentFraud:        0.85,
			CategoryCatfishing:          0.85,
			CategoryPhishing:            0.80,
			CategoryBusinessEmail:       0.80,
			CategoryLoanAdvanceFee:      0.80,
			CategoryTechSupport:         0.75,
			CategoryLotteryPrize:        0.75,
			CategoryOnlineShopping:      0.70,
			CategoryEmployment:          0.70,
			CategoryRentalRealEstate:    0.65,
			CategorySocialMedia:         0.60,
			CategoryCurrencyExchange:    0.60,
			CategoryFakeProducts:        0.50,
			CategoryAccommodation:       0.45,
			CategoryTouristTrap:         0.40,
			CategoryTransportation:      0.40,
			CategoryOvercharging:        0.35,
			CategoryOther:               0.40,
		},
		DefaultCategory: 0.40,

		Radii: []Radius{
			{Km: 0.2, Weight: 0.5},
			{Km: 1.0, Weight: 0.3},
			{Km: 5.0, Weight: 0.2},
		},
		ProximitySaturate: 10,

		RecencyDecayDays: 30,

		MaxLossINR: 1_000_000,

		VolumeWindowDays: 90,
		VolumeSaturate:   3,

		Weights: Weights{
			Category:  0.20,
			Proximity: 0.30,
			Recency:   0.20,
			Financial: 0.15,
			Volume:    0.15,
		},

		NeighborRadiusKm: 5,
	}
}
