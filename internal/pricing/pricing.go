package pricing

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/utsavhq/utsav-backend/pkg/enums"
)

// Fallback classification thresholds, used when no tier configuration is
// available. An inquiry qualifies for a tier when either its budget or its
// guest count clears the bar.
const (
	eliteBudgetThreshold   = 1_000_000
	eliteGuestThreshold    = 500
	premiumBudgetThreshold = 300_000
	premiumGuestThreshold  = 200

	standardLeadPrice int64 = 50
	premiumLeadPrice  int64 = 100
	eliteLeadPrice    int64 = 150
)

// HighValueTag marks elite leads on the marketplace.
const HighValueTag = "High Value"

// defaultTierCredits is the per-tier cost when a configured entry cannot be
// resolved to a usable number.
const defaultTierCredits = 10

// DefaultCreditCosts is the fallback when no lead_costs setting row exists.
var DefaultCreditCosts = CreditCosts{Standard: 10, Premium: 25, Elite: 50}

// Tier is one entry of the stored pricing configuration. The legacy stored
// form is a bare number meaning credits; the structured form may also carry a
// lead price and the classification thresholds for that tier.
type Tier struct {
	Credits   int    `json:"credits"`
	Amount    int64  `json:"amount,omitempty"`
	MinBudget int64  `json:"minBudget,omitempty"`
	MinGuests int    `json:"minGuests,omitempty"`
	Label     string `json:"label,omitempty"`
}

// UnmarshalJSON accepts both the legacy raw-number form and the structured
// object form. An entry that is neither decodes to a zero tier rather than
// failing the whole configuration; resolution substitutes the default cost.
func (t *Tier) UnmarshalJSON(raw []byte) error {
	var credits int
	if err := json.Unmarshal(raw, &credits); err == nil {
		*t = Tier{Credits: credits}
		return nil
	}
	type tierAlias Tier
	var decoded tierAlias
	if err := json.Unmarshal(raw, &decoded); err != nil {
		*t = Tier{}
		return nil
	}
	*t = Tier(decoded)
	return nil
}

// TierConfig maps a lowercase tier name ("standard", "premium", "elite") to
// its configured entry.
type TierConfig map[string]Tier

// Validate rejects tiers with negative fields. Missing fields are allowed;
// resolution fills them with defaults.
func (cfg TierConfig) Validate() error {
	if len(cfg) == 0 {
		return fmt.Errorf("tier configuration must not be empty")
	}
	for name, tier := range cfg {
		if tier.Credits < 0 || tier.Amount < 0 || tier.MinBudget < 0 || tier.MinGuests < 0 {
			return fmt.Errorf("tier %q has negative fields: %+v", name, tier)
		}
	}
	return nil
}

// CreditCosts resolves the flat per-tier credit costs from the configuration.
func (cfg TierConfig) CreditCosts() CreditCosts {
	return CreditCosts{
		Standard: ResolveLeadCost(enums.LeadCategoryStandard, cfg),
		Premium:  ResolveLeadCost(enums.LeadCategoryPremium, cfg),
		Elite:    ResolveLeadCost(enums.LeadCategoryElite, cfg),
	}
}

// ParseTierConfig decodes a stored lead_costs value. Empty or malformed
// payloads yield nil; callers treat nil as "no configuration".
func ParseTierConfig(raw json.RawMessage) TierConfig {
	if len(raw) == 0 {
		return nil
	}
	var cfg TierConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil
	}
	if len(cfg) == 0 {
		return nil
	}
	return cfg
}

// ResolveLeadCost returns the credit cost for the category. A missing
// category falls back to the standard tier; an entry without a usable credit
// count costs the default. Without any configuration the hardcoded defaults
// apply.
func ResolveLeadCost(category enums.LeadCategory, cfg TierConfig) int {
	if len(cfg) == 0 {
		return DefaultCreditCosts.ForCategory(category)
	}
	tier, ok := cfg[strings.ToLower(string(category))]
	if !ok {
		tier, ok = cfg["standard"]
	}
	if !ok || tier.Credits <= 0 {
		return defaultTierCredits
	}
	return tier.Credits
}

// CreditCosts is the flat per-tier credit price view used by admin reads and
// marketplace cost display.
type CreditCosts struct {
	Standard int `json:"standard"`
	Premium  int `json:"premium"`
	Elite    int `json:"elite"`
}

// ForCategory returns the credit cost for the given tier. Unknown categories
// fall back to the standard cost.
func (c CreditCosts) ForCategory(category enums.LeadCategory) int {
	switch category {
	case enums.LeadCategoryPremium:
		return c.Premium
	case enums.LeadCategoryElite:
		return c.Elite
	case enums.LeadCategoryStandard:
		return c.Standard
	default:
		return c.Standard
	}
}

// ParseCreditCosts decodes a lead_costs setting value into the flat cost
// view, falling back to the defaults when the payload is empty or malformed.
func ParseCreditCosts(raw json.RawMessage) CreditCosts {
	cfg := ParseTierConfig(raw)
	if cfg == nil {
		return DefaultCreditCosts
	}
	return cfg.CreditCosts()
}

// Classification is the tier assignment produced at inquiry intake.
type Classification struct {
	Category enums.LeadCategory
	Price    int64
	Tags     []string
}

// Classify assigns a tier from budget and guest count. Configured tiers that
// carry thresholds are tried first, highest minimum budget wins; without a
// usable configuration the fixed thresholds apply. The same inputs always
// produce the same result.
func Classify(budget int64, guestCount int, cfg TierConfig) Classification {
	if c, ok := classifyFromConfig(budget, guestCount, cfg); ok {
		return c
	}
	switch {
	case budget >= eliteBudgetThreshold || guestCount >= eliteGuestThreshold:
		return Classification{
			Category: enums.LeadCategoryElite,
			Price:    eliteLeadPrice,
			Tags:     []string{HighValueTag},
		}
	case budget >= premiumBudgetThreshold || guestCount >= premiumGuestThreshold:
		return Classification{
			Category: enums.LeadCategoryPremium,
			Price:    premiumLeadPrice,
		}
	default:
		return Classification{
			Category: enums.LeadCategoryStandard,
			Price:    standardLeadPrice,
		}
	}
}

func classifyFromConfig(budget int64, guestCount int, cfg TierConfig) (Classification, bool) {
	type rankedTier struct {
		name string
		tier Tier
	}
	ranked := make([]rankedTier, 0, len(cfg))
	for name, tier := range cfg {
		// Legacy credit-only entries carry no thresholds to classify on.
		if tier.MinBudget <= 0 && tier.MinGuests <= 0 {
			continue
		}
		ranked = append(ranked, rankedTier{name: strings.ToLower(name), tier: tier})
	}
	if len(ranked) == 0 {
		return Classification{}, false
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].tier.MinBudget != ranked[j].tier.MinBudget {
			return ranked[i].tier.MinBudget > ranked[j].tier.MinBudget
		}
		if ranked[i].tier.MinGuests != ranked[j].tier.MinGuests {
			return ranked[i].tier.MinGuests > ranked[j].tier.MinGuests
		}
		return ranked[i].name < ranked[j].name
	})
	for _, candidate := range ranked {
		if budget < candidate.tier.MinBudget || guestCount < candidate.tier.MinGuests {
			continue
		}
		classification := Classification{
			Category: enums.LeadCategory(candidate.name),
			Price:    candidate.tier.Amount,
		}
		if classification.Price <= 0 {
			classification.Price = fallbackLeadPrice(classification.Category)
		}
		if candidate.tier.Label != "" {
			classification.Tags = []string{candidate.tier.Label}
		}
		return classification, true
	}
	return Classification{}, false
}

func fallbackLeadPrice(category enums.LeadCategory) int64 {
	switch category {
	case enums.LeadCategoryElite:
		return eliteLeadPrice
	case enums.LeadCategoryPremium:
		return premiumLeadPrice
	default:
		return standardLeadPrice
	}
}
