package model

import "time"

// LogEntry is one observed exchange as stored by the query log
type LogEntry struct {
	ID            uint      `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Method        string    `json:"method"`
	URL           string    `json:"url"`
	Host          string    `json:"host"`
	StatusCode    *int      `json:"status_code"`
	ContentType   string    `json:"content_type"`
	IsBlocked     bool      `json:"is_blocked"`
	BlockReason   string    `json:"block_reason"`
	EffectiveTLDP string    `json:"effective_tldp,omitempty"`
}
