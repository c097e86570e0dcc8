package analysis

// Pattern labels attached to accounts and rings.
const (
	PatternCycle        = "cycle"
	PatternLayering     = "layering"
	PatternFanIn        = "fan_in"
	PatternFanOut       = "fan_out"
	PatternShellNetwork = "shell_network"
)

// RiskTier buckets a suspicion score into a fixed step function.
type RiskTier string

const (
	TierLow      RiskTier = "low"
	TierMedium   RiskTier = "medium"
	TierHigh     RiskTier = "high"
	TierCritical RiskTier = "critical"
)

// TierForScore maps a 0-100 score onto its tier. Boundaries are inclusive:
// [0,30] low, [31,60] medium, [61,80] high, [81,100] critical.
func TierForScore(score int) RiskTier {
	switch {
	case score <= 30:
		return TierLow
	case score <= 60:
		return TierMedium
	case score <= 80:
		return TierHigh
	default:
		return TierCritical
	}
}

// Summary holds the run-level counts surfaced to the caller.
type Summary struct {
	TotalAccountsAnalyzed     int     `json:"total_accounts_analyzed"`
	SuspiciousAccountsFlagged int     `json:"suspicious_accounts_flagged"`
	FraudRingsDetected        int     `json:"fraud_rings_detected"`
	RowsDropped               int     `json:"rows_dropped"`
	ProcessingTimeSeconds     float64 `json:"processing_time_seconds"`
}

// SuspiciousAccount is the ranked view over an account whose score reached
// the reporting threshold.
type SuspiciousAccount struct {
	AccountID        string   `json:"account_id"`
	SuspicionScore   int      `json:"suspicion_score"`
	RiskTier         RiskTier `json:"risk_tier"`
	DetectedPatterns []string `json:"detected_patterns"`
	RingID           string   `json:"ring_id,omitempty"`
}

// FraudRing is a strongly-connected cluster of at least two accounts.
type FraudRing struct {
	RingID         string   `json:"ring_id"`
	MemberAccounts []string `json:"member_accounts"`
	PatternType    string   `json:"pattern_type"`
	RiskScore      float64  `json:"risk_score"`
}

// BreakdownEntry is one contributing factor in an account's score.
type BreakdownEntry struct {
	Factor      string `json:"factor"`
	Score       int    `json:"score"`
	Description string `json:"description"`
}

// TransactionSummary is the per-account activity digest in an explanation.
// Everything below the counterparty count is advisory context for analysts;
// none of it contributes to the suspicion score.
type TransactionSummary struct {
	TotalSent            float64 `json:"total_sent"`
	TotalReceived        float64 `json:"total_received"`
	TransactionCount     int     `json:"transaction_count"`
	UniqueCounterparties int     `json:"unique_counterparties"`
	VelocityPerDay       float64 `json:"velocity_per_day"`

	// Temporal metrics over the account's timestamped transfers.
	BurstScore       float64 `json:"burst_score"`
	AvgIntervalHours float64 `json:"avg_interval_hours"`

	// Behavioral metrics relative to the dataset and the graph.
	VolumeAnomaly         float64 `json:"volume_anomaly"`
	CounterpartyDiversity float64 `json:"counterparty_diversity"`
	CircularFlowRatio     float64 `json:"circular_flow_ratio"`
}

// Explanation justifies one account's score. The breakdown covers exactly
// the factors that contributed non-zero points and sums to the score.
type Explanation struct {
	AccountID          string             `json:"account_id"`
	SuspicionScore     int                `json:"suspicion_score"`
	RiskBreakdown      []BreakdownEntry   `json:"risk_breakdown"`
	DetectedPatterns   []string           `json:"detected_patterns"`
	TransactionSummary TransactionSummary `json:"transaction_summary"`
	WhyFlagged         string             `json:"why_flagged"`
	RingID             string             `json:"ring_id,omitempty"`
}

// GraphNode is the rendering-oriented projection of one account. Every
// analyzed account appears here, flagged or not.
type GraphNode struct {
	ID               string   `json:"id"`
	Suspicious       bool     `json:"suspicious"`
	Score            int      `json:"score"`
	TotalSent        float64  `json:"total_sent"`
	TotalReceived    float64  `json:"total_received"`
	TransactionCount int      `json:"transaction_count"`
	Patterns         []string `json:"patterns"`
}

// GraphEdge is one aggregated transfer relation.
type GraphEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// GraphProjection is the node/edge view handed to the presentation layer.
type GraphProjection struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Result is the terminal aggregate of one analysis run. Immutable once
// returned. Aside from ProcessingTimeSeconds it is fully deterministic for
// identical input and configuration.
type Result struct {
	Summary            Summary                 `json:"summary"`
	SuspiciousAccounts []SuspiciousAccount     `json:"suspicious_accounts"`
	FraudRings         []FraudRing             `json:"fraud_rings"`
	Explanations       map[string]*Explanation `json:"explanations"`
	Graph              GraphProjection         `json:"graph"`
}
