package store

import "time"

// Trip is a bookable travel product.
type Trip struct {
	ID                  string
	Slug                string
	Title               string
	Summary             string
	Description         string
	Destination         string
	DurationDays        int
	BasePriceCents      int64
	ChildPriceCents     *int64
	CardImageURL        string
	HeroImageURL        string
	Position            int
	Active              bool
	QuickAddEligible    bool
	RecommendedTripIDs  []string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TripOption is a selectable variant of a trip with its own pricing.
type TripOption struct {
	ID              string
	TripID          string
	Label           string
	PriceCents      *int64
	ChildPriceCents *int64
	Position        int
	Active          bool
}

// TripExtra is an optional paid add-on offered with a trip.
type TripExtra struct {
	ID         string
	TripID     string
	Name       string
	PriceCents int64
	Position   int
	Active     bool
}

// RewardPhase is a spend threshold that unlocks discounted trips.
type RewardPhase struct {
	ID              string
	Slug            string
	Name            string
	Headline        string
	Description     string
	Position        int
	ThresholdCents  int64
	DiscountPercent int
	Currency        string
	Active          bool
}

// RewardPhaseTrip links a phase to a trip eligible for its discount.
type RewardPhaseTrip struct {
	PhaseID  string
	TripID   string
	Position int
}

// Cart is an anonymous booking list identified by a cookie token.
type Cart struct {
	ID           string
	Token        string
	ContactName  *string
	ContactEmail *string
	ContactPhone *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CartEntry snapshots trip pricing at the moment it was added.
type CartEntry struct {
	ID                  string
	CartID              string
	TripID              string
	TripSlug            string
	TripTitle           string
	TravelDate          time.Time
	Adults              int
	Children            int
	Infants             int
	BasePriceCents      int64
	ChildBasePriceCents *int64
	OptionJSON          []byte
	ExtrasJSON          []byte
	AppliedPhaseID      *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Review is a customer trip review.
type Review struct {
	ID         string
	TripID     string
	Author     string
	Rating     int
	Title      string
	Body       string
	Published  bool
	CreatedAt  time.Time
}

// SEOEntry maps a legacy or marketing path to metadata and an optional redirect.
type SEOEntry struct {
	ID          string
	Path        string
	Title       string
	Description string
	RedirectTo  *string
	StatusCode  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StaffUser is an administrative account for the dashboard.
type StaffUser struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	Active       bool
	CreatedAt    time.Time
}

// DomainEvent is an outbox row recording a domain occurrence.
type DomainEvent struct {
	ID        string
	Topic     string
	Payload   []byte
	CreatedAt time.Time
}
