package pricing

import (
	"strings"

	"vedaBack/internal/models"
)

// Tier labels returned by Classify for display purposes.
const (
	LabelTier1 = "big_city"
	LabelTier2 = "large_city"
	LabelTier3 = "standard"
)

// Config holds the static tier tables and per-tier costs in credits.
type Config struct {
	Tier1Cities   []string `yaml:"tier1_cities"`
	Tier2Cities   []string `yaml:"tier2_cities"`
	Tier2Counties []string `yaml:"tier2_counties"`
	Tier1Cost     int      `yaml:"tier1_cost"`
	Tier2Cost     int      `yaml:"tier2_cost"`
	Tier3Cost     int      `yaml:"tier3_cost"`
}

// Classification describes the pricing bucket a request falls into.
type Classification struct {
	Tier  int    `json:"tier"`
	Cost  int    `json:"cost"`
	Label string `json:"label"`
}

// Resolver maps a request's geography to a credit cost. It is pure: no
// state beyond the tables built at construction, no I/O.
type Resolver struct {
	cfg           Config
	tier1Cities   map[string]struct{}
	tier2Cities   map[string]struct{}
	tier2Counties map[string]struct{}
}

// NewResolver builds lookup tables from cfg.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{
		cfg:           cfg,
		tier1Cities:   normalizeSet(cfg.Tier1Cities),
		tier2Cities:   normalizeSet(cfg.Tier2Cities),
		tier2Counties: normalizeSet(cfg.Tier2Counties),
	}
}

// ResolveCost returns the credit cost of contacting the given request.
// An admin override greater than zero wins over geography.
func (r *Resolver) ResolveCost(req models.Request) int {
	return r.Classify(req).Cost
}

// Classify returns the tier, cost and label for the request. Tier 1
// membership of either endpoint is evaluated before Tier 2; unmatched or
// empty geography falls through to Tier 3.
func (r *Resolver) Classify(req models.Request) Classification {
	if req.AdminCreditCost != nil && *req.AdminCreditCost > 0 {
		return Classification{Tier: 0, Cost: *req.AdminCreditCost, Label: "admin_override"}
	}

	fromCity := normalize(req.FromCity)
	toCity := normalize(req.ToCity)

	if r.inSet(r.tier1Cities, fromCity) || r.inSet(r.tier1Cities, toCity) {
		return Classification{Tier: 1, Cost: r.cfg.Tier1Cost, Label: LabelTier1}
	}

	fromCounty := normalize(req.FromCounty)
	toCounty := normalize(req.ToCounty)

	if r.inSet(r.tier2Cities, fromCity) || r.inSet(r.tier2Cities, toCity) ||
		r.inSet(r.tier2Counties, fromCounty) || r.inSet(r.tier2Counties, toCounty) {
		return Classification{Tier: 2, Cost: r.cfg.Tier2Cost, Label: LabelTier2}
	}

	return Classification{Tier: 3, Cost: r.cfg.Tier3Cost, Label: LabelTier3}
}

func (r *Resolver) inSet(set map[string]struct{}, name string) bool {
	if name == "" {
		return false
	}
	_, ok := set[name]
	return ok
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func normalizeSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if v := normalize(n); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
