package model

import "time"

// CallerEligibility is the per-caller ledger row tracking how often a
// caller has been surveyed. Keyed by (callerId, tenantId). SurveyCount
// only ever increases and blacklisted rows are never reset automatically.
type CallerEligibility struct {
	CallerID        string     `json:"callerId" bson:"callerId"`
	TenantID        string     `json:"tenantId" bson:"tenantId"`
	LastSurveyed    *time.Time `json:"lastSurveyed,omitempty" bson:"lastSurveyed,omitempty"`
	SurveyCount     int        `json:"surveyCount" bson:"surveyCount"`
	IsBlacklisted   bool       `json:"isBlacklisted" bson:"isBlacklisted"`
	BlacklistReason string     `json:"blacklistReason,omitempty" bson:"blacklistReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updatedAt"`
}
