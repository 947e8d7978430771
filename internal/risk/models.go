package risk

import (
	"time"

	"github.com/richxcame/scamwatch/internal/geo"
)

// Category is the scam/fraud type of a report
type Category string

const (
	CategoryDatingRomance       Category = "dating-romance"
	CategoryHarassmentExtortion Category = "harassment-extortion"
	CategoryInvestmentCrypto    Category = "investment-crypto"
	CategoryPaymentFraud        Category = "payment-fraud"
	CategoryCatfishing          Category = "catfishing"
	CategoryPhishing            Category = "phishing"
	CategoryBusinessEmail       Category = "business-email"
	CategoryLoanAdvanceFee      Category = "loan-advance-fee"
	CategoryTechSupport         Category = "tech-support"
	CategoryLotteryPrize        Category = "lottery-prize"
	CategoryOnlineShopping      Category = "online-shopping"
	CategoryEmployment          Category = "employment"
	CategoryRentalRealEstate    Category = "rental-real-estate"
	CategorySocialMedia         Category = "social-media"
	CategoryCurrencyExchange    Category = "currency-exchange"
	CategoryFakeProducts        Category = "fake-products"
	CategoryAccommodation       Category = "accommodation"
	CategoryTouristTrap         Category = "tourist-trap"
	CategoryTransportation      Category = "transportation"
	CategoryOvercharging        Category = "overcharging"
	CategoryOther               Category = "other"
)

// Incident is a submitted report as seen by the scoring engine
type Incident struct {
	ID            string       `json:"id"`
	Category      Category     `json:"category"`
	Location      geo.Location `json:"location"`
	CreatedAt     time.Time    `json:"created_at"`
	LossAmountINR *float64     `json:"loss_amount_inr,omitempty"`
	VenueName     string       `json:"venue_name,omitempty"`
	City          string       `json:"city,omitempty"`
	Address       string       `json:"address,omitempty"`
	Description   string       `json:"description,omitempty"`
	EvidenceIDs   []string     `json:"evidence_ids,omitempty"`
}

// Components holds the five normalised sub-scores, each in [0,1]
type Components struct {
	Category  float64 `json:"category"`
	Proximity float64 `json:"proximity"`
	Recency   float64 `json:"recency"`
	Financial float64 `json:"financial"`
	Volume    float64 `json:"volume"`
}

// RiskScore is the derived risk view of one incident
type RiskScore struct {
	Score      int        `json:"score"`
	Components Components `json:"components"`
	Level      Level      `json:"level"`
	Insights   []string   `json:"insights"`
}
