package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condo-radar/internal/config"
)

func TestDefaultRules(t *testing.T) {
	rules := config.DefaultRules()

	require.NoError(t, rules.Validate())
	assert.Contains(t, rules.LocationTerms, "ontario")
	assert.Contains(t, rules.Subreddits, "OntarioLandlord")
	assert.Equal(t, 30, rules.WindowDays)
	assert.Equal(t, 30*24*time.Hour, rules.Horizon())
	assert.Equal(t, 90, rules.FuzzyThreshold)
	assert.True(t, rules.FuzzyEnabled)
}

func TestRules_KeywordLists(t *testing.T) {
	rules := config.DefaultRules()

	forum := rules.ForumKeywords()
	bulletin := rules.BulletinKeywords()

	// Standard keywords lead both lists so tag priority is shared.
	assert.Equal(t, rules.StandardKeywords[0], forum[0])
	assert.Equal(t, rules.StandardKeywords[0], bulletin[0])
	assert.Contains(t, forum, "cat ontario")
	assert.Contains(t, bulletin, "cat")
	assert.Len(t, forum, len(rules.StandardKeywords)+len(rules.ForumExtraKeywords))
}

func TestLoadRules_OverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := []byte(`
window_days: 14
max_tags: 3
fuzzy_enabled: false
campaign_start: 2025-06-01T00:00:00Z
subreddits: [ontario]
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	rules, err := config.LoadRules(path)
	require.NoError(t, err)

	// Overridden fields.
	assert.Equal(t, 14, rules.WindowDays)
	assert.Equal(t, 3, rules.MaxTags)
	assert.False(t, rules.FuzzyEnabled)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), rules.CampaignStart)
	assert.Equal(t, []string{"ontario"}, rules.Subreddits)

	// Untouched fields keep their defaults.
	assert.NotEmpty(t, rules.StandardKeywords)
	assert.Equal(t, 90, rules.FuzzyThreshold)
}

func TestLoadRules_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window_days: -1\n"), 0o600))

	_, err := config.LoadRules(path)
	assert.Error(t, err)
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := config.LoadRules("/nonexistent/rules.yaml")
	assert.Error(t, err)
}
