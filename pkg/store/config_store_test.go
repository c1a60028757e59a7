package store

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetwatch/meetwatch/pkg/models"
)

func TestConfigStore_Defaults(t *testing.T) {
	cs := NewConfigStore(test.NewApp())

	config := cs.Load()
	assert.Equal(t, models.DefaultLeadMinutes, config.AlertLeadMinutes)
	assert.Equal(t, models.DefaultSyncInterval, config.SyncIntervalMinutes)
	assert.False(t, config.AutoStart)
	assert.Empty(t, config.EnabledCalendarIDs)
	assert.Empty(t, config.ICalSources)
	assert.False(t, config.CalDAV.Configured())
}

func TestConfigStore_RoundTrip(t *testing.T) {
	app := test.NewApp()
	cs := NewConfigStore(app)

	saved := &models.Config{
		AlertLeadMinutes:    12,
		EnabledCalendarIDs:  []string{"work", "personal"},
		AutoStart:           true,
		SyncIntervalMinutes: 10,
		HoldTimeSeconds:     5,
		ICalSources: []models.ICalSource{
			{ID: "work", Name: "Work", URL: "https://calendar.example.com/work.ics"},
		},
		CalDAV: models.CalDAVAccount{
			Endpoint: "https://dav.example.com/",
			Username: "alice",
			Password: "secret",
		},
	}
	cs.Save(saved)

	loaded := NewConfigStore(app).Load()
	assert.Equal(t, saved, loaded)
}

func TestConfigStore_ClampsLeadOnSave(t *testing.T) {
	cs := NewConfigStore(test.NewApp())

	cs.Save(&models.Config{AlertLeadMinutes: 90})
	assert.Equal(t, models.MaxLeadMinutes, cs.Load().AlertLeadMinutes)

	cs.Save(&models.Config{AlertLeadMinutes: -1})
	assert.Equal(t, models.MinLeadMinutes, cs.Load().AlertLeadMinutes)
}

func TestConfigStore_UnreadableBlobFallsBack(t *testing.T) {
	app := test.NewApp()
	app.Preferences().SetString(keyEnabledIDs, "{not json")
	app.Preferences().SetString(keyICalSources, "{not json")

	config := NewConfigStore(app).Load()
	require.NotNil(t, config)
	assert.Empty(t, config.EnabledCalendarIDs)
	assert.Empty(t, config.ICalSources)
}
