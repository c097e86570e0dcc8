package analysis

import "fmt"

// Smurfing threshold rules
const (
	SmurfingRuleAbsolute = "absolute"
	SmurfingRuleStdDev   = "stddev"
)

// Config is the recognized tuning surface of the analysis pipeline. Every
// option's effect is documented on its field; there are no hidden defaults
// beyond DefaultConfig.
type Config struct {
	// MinCycleLength is the smallest cycle (in nodes) that counts as
	// circular routing. Cycles shorter than this are ignored.
	MinCycleLength int `koanf:"min_cycle_length" validate:"gte=2"`

	// MaxCycleLength bounds cycle enumeration; longer loops are still
	// caught by the participation pass but never materialized.
	MaxCycleLength int `koanf:"max_cycle_length" validate:"gte=2"`

	// MaxCycleInstances caps how many concrete cycle instances are kept
	// for ring pattern-typing. Participation marking ignores the cap.
	MaxCycleInstances int `koanf:"max_cycle_instances" validate:"gte=1"`

	// MinLayeringHops is the minimum path length (in edges) for a
	// forwarding chain to count as layering.
	MinLayeringHops int `koanf:"min_layering_hops" validate:"gte=1"`

	// LayeringDepthCap caps depth exploration per traversal root.
	LayeringDepthCap int `koanf:"layering_depth_cap" validate:"gte=1"`

	// SmurfingRule selects "absolute" (fixed degree threshold) or "stddev"
	// (mean + k*stddev of the dataset's degree distribution).
	SmurfingRule string `koanf:"smurfing_rule" validate:"oneof=absolute stddev"`

	// SmurfingThreshold is the distinct-counterparty degree at or above
	// which an account is flagged under the absolute rule.
	SmurfingThreshold int `koanf:"smurfing_threshold" validate:"gte=2"`

	// SmurfingStdDevK is the k in mean + k*stddev for the stddev rule.
	SmurfingStdDevK float64 `koanf:"smurfing_stddev_k" validate:"gt=0"`

	// MalformedRowTolerance is the maximum malformed-row ratio before the
	// whole run fails with a data format error.
	MalformedRowTolerance float64 `koanf:"malformed_row_tolerance" validate:"gte=0,lte=1"`

	// MinReportScore is the lowest suspicion score that appears in the
	// suspicious-accounts list. Accounts below it stay in the graph
	// projection only.
	MinReportScore int `koanf:"min_report_score" validate:"gte=1,lte=100"`

	// VolumePercentile is the nearest-rank percentile (0-100] used for the
	// frequency and amount scoring factors.
	VolumePercentile float64 `koanf:"volume_percentile" validate:"gt=0,lte=100"`

	// FilterFalsePositives enables merchant/payroll suppression of
	// accounts with no structural evidence.
	FilterFalsePositives bool `koanf:"filter_false_positives"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MinCycleLength:        2,
		MaxCycleLength:        5,
		MaxCycleInstances:     256,
		MinLayeringHops:       3,
		LayeringDepthCap:      8,
		SmurfingRule:          SmurfingRuleAbsolute,
		SmurfingThreshold:     10,
		SmurfingStdDevK:       3,
		MalformedRowTolerance: 0.05,
		MinReportScore:        1,
		VolumePercentile:      95,
		FilterFalsePositives:  false,
	}
}

// Fingerprint renders every option into a stable string. The result cache
// keys on it so that a config change never serves stale results.
func (c Config) Fingerprint() string {
	return fmt.Sprintf("v1|cyc=%d-%d/%d|lay=%d/%d|smurf=%s:%d:%g|tol=%g|min=%d|pct=%g|fp=%t",
		c.MinCycleLength, c.MaxCycleLength, c.MaxCycleInstances,
		c.MinLayeringHops, c.LayeringDepthCap,
		c.SmurfingRule, c.SmurfingThreshold, c.SmurfingStdDevK,
		c.MalformedRowTolerance, c.MinReportScore, c.VolumePercentile,
		c.FilterFalsePositives)
}
