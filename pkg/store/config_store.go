package store

import (
	"encoding/json"

	"fyne.io/fyne/v2"
	log "github.com/sirupsen/logrus"

	"github.com/meetwatch/meetwatch/pkg/models"
)

// Preference keys. String-set and slice values are persisted as JSON
// blobs, everything else uses the native preference types.
const (
	keyLeadMinutes  = "alert_lead_minutes"
	keyEnabledIDs   = "enabled_calendar_ids"
	keyAutoStart    = "auto_start"
	keyICalSources  = "ical_sources"
	keySyncInterval = "sync_interval_minutes"
	keyHoldSeconds  = "hold_time_seconds"

	keyCalDAVEndpoint = "caldav_endpoint"
	keyCalDAVUsername = "caldav_username"
	keyCalDAVPassword = "caldav_password"
)

// ConfigStore handles configuration persistence using Fyne preferences.
// Writes are synchronous and durable across restarts.
type ConfigStore struct {
	prefs fyne.Preferences
}

// NewConfigStore creates a new ConfigStore instance
func NewConfigStore(app fyne.App) *ConfigStore {
	return &ConfigStore{prefs: app.Preferences()}
}

// Load reads the full configuration from preferences. Callers re-read
// on every evaluation rather than caching, so live edits take effect
// on the next tick.
func (cs *ConfigStore) Load() *models.Config {
	config := &models.Config{
		AlertLeadMinutes:    cs.prefs.IntWithFallback(keyLeadMinutes, models.DefaultLeadMinutes),
		AutoStart:           cs.prefs.BoolWithFallback(keyAutoStart, false),
		SyncIntervalMinutes: cs.prefs.IntWithFallback(keySyncInterval, models.DefaultSyncInterval),
		HoldTimeSeconds:     cs.prefs.IntWithFallback(keyHoldSeconds, models.DefaultHoldSeconds),
		EnabledCalendarIDs:  cs.loadStringSlice(keyEnabledIDs),
		CalDAV: models.CalDAVAccount{
			Endpoint: cs.prefs.String(keyCalDAVEndpoint),
			Username: cs.prefs.String(keyCalDAVUsername),
			Password: cs.prefs.String(keyCalDAVPassword),
		},
	}

	config.ICalSources = []models.ICalSource{}
	if raw := cs.prefs.String(keyICalSources); raw != "" {
		if err := json.Unmarshal([]byte(raw), &config.ICalSources); err != nil {
			log.WithError(err).Warn("Discarding unreadable ical_sources preference")
			config.ICalSources = []models.ICalSource{}
		}
	}

	return config
}

// Save persists the full configuration to preferences.
func (cs *ConfigStore) Save(config *models.Config) {
	cs.prefs.SetInt(keyLeadMinutes, config.LeadMinutes())
	cs.prefs.SetBool(keyAutoStart, config.AutoStart)
	cs.prefs.SetInt(keySyncInterval, config.SyncInterval())
	cs.prefs.SetInt(keyHoldSeconds, config.HoldSeconds())

	cs.saveStringSlice(keyEnabledIDs, config.EnabledCalendarIDs)

	if raw, err := json.Marshal(config.ICalSources); err == nil {
		cs.prefs.SetString(keyICalSources, string(raw))
	}

	cs.prefs.SetString(keyCalDAVEndpoint, config.CalDAV.Endpoint)
	cs.prefs.SetString(keyCalDAVUsername, config.CalDAV.Username)
	cs.prefs.SetString(keyCalDAVPassword, config.CalDAV.Password)
}

func (cs *ConfigStore) loadStringSlice(key string) []string {
	raw := cs.prefs.String(key)
	if raw == "" {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		log.WithError(err).WithField("key", key).Warn("Discarding unreadable preference")
		return []string{}
	}
	return values
}

func (cs *ConfigStore) saveStringSlice(key string, values []string) {
	if values == nil {
		values = []string{}
	}
	if raw, err := json.Marshal(values); err == nil {
		cs.prefs.SetString(key, string(raw))
	}
}
