package models

const (
	// MinLeadMinutes and MaxLeadMinutes bound the alert lead time.
	// The settings form clamps at the edit surface; LeadMinutes clamps
	// again on read so a hand-edited preference cannot escape the range.
	MinLeadMinutes = 1
	MaxLeadMinutes = 30

	DefaultLeadMinutes  = 5
	DefaultSyncInterval = 5 // minutes
	DefaultHoldSeconds  = 3
)

// Config holds application configuration
type Config struct {
	AlertLeadMinutes    int            `json:"alert_lead_minutes"`
	EnabledCalendarIDs  []string       `json:"enabled_calendar_ids"`
	AutoStart           bool           `json:"auto_start"`
	ICalSources         []ICalSource   `json:"ical_sources"`
	CalDAV              CalDAVAccount  `json:"caldav"`
	SyncIntervalMinutes int            `json:"sync_interval_minutes"`
	HoldTimeSeconds     int            `json:"hold_time_seconds"`
}

// ICalSource is a named ICS calendar source; each source is one
// selectable calendar.
type ICalSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CalDAVAccount points at a CalDAV endpoint whose discovered calendars
// join the selectable calendar list.
type CalDAVAccount struct {
	Endpoint string `json:"endpoint"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks if the iCal source has required fields
func (s *ICalSource) Validate() bool {
	return s.Name != "" && s.URL != ""
}

// Configured reports whether the account has enough fields to attempt
// a connection.
func (a CalDAVAccount) Configured() bool {
	return a.Endpoint != ""
}

// LeadMinutes returns the alert lead time clamped to [MinLeadMinutes, MaxLeadMinutes].
func (c *Config) LeadMinutes() int {
	m := c.AlertLeadMinutes
	if m < MinLeadMinutes {
		return MinLeadMinutes
	}
	if m > MaxLeadMinutes {
		return MaxLeadMinutes
	}
	return m
}

// EnabledSet returns the enabled calendar identifiers as a set.
func (c *Config) EnabledSet() map[string]bool {
	set := make(map[string]bool, len(c.EnabledCalendarIDs))
	for _, id := range c.EnabledCalendarIDs {
		set[id] = true
	}
	return set
}

// SyncInterval returns the provider sync interval in minutes, never
// below one minute.
func (c *Config) SyncInterval() int {
	if c.SyncIntervalMinutes < 1 {
		return DefaultSyncInterval
	}
	return c.SyncIntervalMinutes
}

// HoldSeconds returns how long alert buttons must be held.
func (c *Config) HoldSeconds() int {
	if c.HoldTimeSeconds < 1 {
		return DefaultHoldSeconds
	}
	return c.HoldTimeSeconds
}

// NeedsConfiguration returns true if no calendar backend is set up yet.
func (c *Config) NeedsConfiguration() bool {
	return len(c.ICalSources) == 0 && !c.CalDAV.Configured()
}
