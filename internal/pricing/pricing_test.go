package pricing

import (
	"testing"

	"vedaBack/internal/models"
)

func testConfig() Config {
	return Config{
		Tier1Cities:   []string{"Almaty", "Astana", "Shymkent"},
		Tier2Cities:   []string{"Karaganda", "Aktobe", "Pavlodar"},
		Tier2Counties: []string{"Almaty Region", "Karaganda Region"},
		Tier1Cost:     80,
		Tier2Cost:     50,
		Tier3Cost:     30,
	}
}

func TestClassify(t *testing.T) {
	r := NewResolver(testConfig())
	seven := 7

	cases := []struct {
		name     string
		req      models.Request
		wantTier int
		wantCost int
	}{
		{"tier1 origin", models.Request{FromCity: "Almaty", ToCity: "Kaskelen"}, 1, 80},
		{"tier1 destination", models.Request{FromCity: "Kaskelen", ToCity: "Astana"}, 1, 80},
		{"tier1 beats tier2", models.Request{FromCity: "Almaty", ToCity: "Karaganda"}, 1, 80},
		{"tier2 city", models.Request{FromCity: "Aktobe", ToCity: "Kandyagash"}, 2, 50},
		{"tier2 county", models.Request{FromCity: "Esik", FromCounty: "Almaty Region", ToCity: "Kegen"}, 2, 50},
		{"tier3 fallback", models.Request{FromCity: "Zhezkazgan", ToCity: "Balkhash"}, 3, 30},
		{"empty geography", models.Request{}, 3, 30},
		{"whitespace trimmed", models.Request{FromCity: "  Almaty  ", ToCity: "Kegen"}, 1, 80},
		{"case insensitive", models.Request{FromCity: "aSTANA", ToCity: ""}, 1, 80},
		{"admin override wins", models.Request{AdminCreditCost: &seven, FromCity: "Almaty"}, 0, 7},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := r.Classify(tc.req)
			if got.Tier != tc.wantTier || got.Cost != tc.wantCost {
				t.Fatalf("expected tier %d cost %d, got tier %d cost %d", tc.wantTier, tc.wantCost, got.Tier, got.Cost)
			}
			if cost := r.ResolveCost(tc.req); cost != tc.wantCost {
				t.Fatalf("ResolveCost mismatch: expected %d got %d", tc.wantCost, cost)
			}
		})
	}
}

func TestAdminOverrideZeroIgnored(t *testing.T) {
	r := NewResolver(testConfig())
	zero := 0
	got := r.Classify(models.Request{AdminCreditCost: &zero, FromCity: "Almaty", ToCity: "Kegen"})
	if got.Tier != 1 || got.Cost != 80 {
		t.Fatalf("zero override should fall through to tiers, got %+v", got)
	}
}
