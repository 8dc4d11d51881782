package domain

import "time"

// RawOffer is an unreconciled listing scraped from one marketplace.
type RawOffer struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Shipping    float64 `json:"shipping"`
	Link        string  `json:"link"`
	Image       string  `json:"image,omitempty"`
	Marketplace string  `json:"marketplace"`
	SellerName  string  `json:"sellerName,omitempty"`
	Condition   string  `json:"condition,omitempty"`
	Location    string  `json:"location,omitempty"`
}

// OfferGroup clusters offers that share a content hash. Members[0] is the
// representative.
type OfferGroup struct {
	Hash    string
	Members []RawOffer
}

func (g OfferGroup) Representative() RawOffer { return g.Members[0] }

// Suggestion proposes a new catalog entry for an offer that matched well but
// names a product the catalog does not track yet.
type Suggestion struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type MatchAnalysis struct {
	Score          int         `json:"score"`
	Reasoning      string      `json:"reasoning"`
	NormalizedName string      `json:"normalizedName"`
	City           string      `json:"city,omitempty"`
	State          string      `json:"state,omitempty"`
	Suggestion     *Suggestion `json:"suggestion,omitempty"`

	// Degraded marks the zero-score stand-in produced when the oracle gave
	// up. It is never cached or persisted.
	Degraded bool `json:"-"`
}

// Accepted pairs one group member with its group's analysis.
type Accepted struct {
	Offer     RawOffer
	Analysis  MatchAnalysis
	GroupHash string
}

type SearchResult struct {
	ID             string      `json:"id"`
	JobID          string      `json:"jobId"`
	ProductID      string      `json:"productId"`
	Title          string      `json:"title"`
	Price          float64     `json:"price"`
	Shipping       float64     `json:"shipping"`
	Link           string      `json:"link"`
	Image          string      `json:"image,omitempty"`
	Marketplace    string      `json:"marketplace"`
	SellerName     string      `json:"sellerName,omitempty"`
	Condition      string      `json:"condition,omitempty"`
	Location       string      `json:"location,omitempty"`
	MatchScore     int         `json:"matchScore"`
	Reasoning      string      `json:"reasoning"`
	NormalizedName string      `json:"normalizedName"`
	City           string      `json:"city,omitempty"`
	State          string      `json:"state,omitempty"`
	GroupHash      string      `json:"groupHash"`
	Suggestion     *Suggestion `json:"suggestion,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}
