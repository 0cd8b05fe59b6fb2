package app

import (
	"callpulse/internal/cache"
	"callpulse/internal/repository"
)

// App bundles the storage layer handed to the service constructors.
type App struct {
	TemplateRepo    repository.TemplateRepo
	InstanceRepo    repository.InstanceRepo
	ResponseRepo    repository.ResponseRepo
	EligibilityRepo repository.EligibilityRepo
	WebhookRepo     repository.WebhookEventRepo
	AnalyticsCache  cache.AnalyticsCache
}
