package model

// AlertSeverity ranks how urgently a supervisor should react.
type AlertSeverity string

const (
	SeverityLow    AlertSeverity = "low"
	SeverityMedium AlertSeverity = "medium"
	SeverityHigh   AlertSeverity = "high"
)

// Alert event types produced by the rule engine.
const (
	AlertNPSDetractor      = "nps_detractor"
	AlertCSATDetractor     = "csat_detractor"
	AlertComplaintDetected = "complaint_detected"
)

// AlertEvent is produced per response evaluation. It is ephemeral:
// the engine never persists it, dispatching is the caller's job.
type AlertEvent struct {
	Type     string        `json:"type"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`

	ResponseID string `json:"responseId,omitempty"`
	CallerID   string `json:"callerId,omitempty"`
	AgentID    string `json:"agentId,omitempty"`
	TenantID   string `json:"tenantId,omitempty"`
}
