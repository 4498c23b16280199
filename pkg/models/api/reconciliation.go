package api

import "time"

type ReconciliationRow struct {
	Month            string `json:"month,omitempty"`
	Invoice          string `json:"invoice"`
	PaymentReference string `json:"payment_reference"`
	SettlementDate   string `json:"settlement_date"`
	TotalSubmitted   string `json:"total_submitted"`
	TotalReceived    string `json:"total_received"`
	Difference       string `json:"difference"`
	Status           string `json:"status,omitempty"`
	Highlight        string `json:"highlight,omitempty"`
}

type Summary struct {
	TotalSubmitted  string  `json:"total_submitted"`
	TotalReceived   string  `json:"total_received"`
	TotalDifference string  `json:"total_difference"`
	MatchedCount    int     `json:"matched_count"`
	TotalCount      int     `json:"total_count"`
	MatchRate       float64 `json:"match_rate"`
}

type CoercionDefault struct {
	Dataset string `json:"dataset"`
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Value   string `json:"value"`
	Kind    string `json:"kind"`
}

type Report struct {
	RunID       string              `json:"run_id"`
	Policy      string              `json:"policy"`
	Currency    string              `json:"currency,omitempty"`
	GeneratedAt time.Time           `json:"generated_at"`
	Columns     []string            `json:"columns"`
	Cells       [][]string          `json:"cells"`
	Rows        []ReconciliationRow `json:"rows"`
	Summary     *Summary            `json:"summary,omitempty"`
	Coercions   []CoercionDefault   `json:"coercions"`
}

type Policy struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	SubmissionColumns []string `json:"submission_columns"`
	RemittanceColumns []string `json:"remittance_columns"`
	OutputColumns     []string `json:"output_columns"`
	ComputesStatus    bool     `json:"computes_status"`
}

type Error struct {
	Error   string   `json:"error"`
	Dataset string   `json:"dataset,omitempty"`
	Missing []string `json:"missing,omitempty"`
}
