package driving

import "github.com/creativedestruction/searchdash/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment overrides applied.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetQueryMode updates the default query mode.
	SetQueryMode(mode domain.QueryMode) error

	// SetIndexPolicy updates the startup index policy.
	SetIndexPolicy(policy domain.IndexPolicy) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
