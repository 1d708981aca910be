package plans

import "time"

// Plan is a fixed subscription offer. The catalog is static; there is no
// tariff administration.
type Plan struct {
	Token        string `yaml:"token"`
	Name         string `yaml:"name"`
	AmountKES    int64  `yaml:"amount_kes"`
	DurationDays int    `yaml:"duration_days"`
}

func (p *Plan) Duration() time.Duration {
	return time.Duration(p.DurationDays) * 24 * time.Hour
}
