package plans

import (
	"embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var catalogFS embed.FS

var ErrUnknownPlan = errors.New("unknown plan")

// Catalog resolves plan tokens to prices and durations. Loaded once at
// startup from the embedded yaml; read-only afterwards.
type Catalog struct {
	ordered []*Plan
	byToken map[string]*Plan
}

func NewCatalog() (*Catalog, error) {
	data, err := catalogFS.ReadFile("plans.yaml")
	if err != nil {
		return nil, fmt.Errorf("read plan catalog: %w", err)
	}

	var parsed struct {
		Plans []*Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse plan catalog: %w", err)
	}
	if len(parsed.Plans) == 0 {
		return nil, errors.New("plan catalog is empty")
	}

	c := &Catalog{
		ordered: parsed.Plans,
		byToken: make(map[string]*Plan, len(parsed.Plans)),
	}
	for _, p := range parsed.Plans {
		if p.Token == "" || p.AmountKES <= 0 || p.DurationDays <= 0 {
			return nil, fmt.Errorf("invalid plan entry %q", p.Token)
		}
		c.byToken[p.Token] = p
	}

	return c, nil
}

// Resolve looks a plan up by its token.
func (c *Catalog) Resolve(token string) (*Plan, error) {
	plan, ok := c.byToken[token]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlan, token)
	}
	return plan, nil
}

// ByAmount finds the plan with the given price. Used at reconciliation time
// to recover the plan duration from the paid amount, since the payment
// callback carries no plan token.
func (c *Catalog) ByAmount(amountKES int64) (*Plan, bool) {
	for _, p := range c.ordered {
		if p.AmountKES == amountKES {
			return p, true
		}
	}
	return nil, false
}

// List returns plans in catalog order for keyboard rendering.
func (c *Catalog) List() []*Plan {
	return c.ordered
}
