package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  name: advisor-test
advisor:
  max_articles: 7
  news_timeout: 3s
news:
  provider: google_rss
ai:
  provider: none
watchlist:
  entries:
    - user_id: u-1
      ticker: MSFT
      company_name: Microsoft
      cron: "0 14 * * 1-5"
      profile:
        monthly_income: 9000
        monthly_expenses: 4000
        savings: 30000
        risk_tolerance: high
        time_horizon: years
`

func TestLoadMergesFileAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "advisor-test", cfg.App.Name)
	assert.Equal(t, 7, cfg.Advisor.MaxArticles)
	assert.Equal(t, 3*time.Second, cfg.Advisor.NewsTimeout)
	assert.Equal(t, 20*time.Second, cfg.Advisor.MarketTimeout)
	assert.Equal(t, "google_rss", cfg.News.Provider)
	assert.Equal(t, "none", cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 3, cfg.Consumer.MaxRetry)

	require.Len(t, cfg.Watchlist.Entries, 1)
	entry := cfg.Watchlist.Entries[0]
	assert.Equal(t, "MSFT", entry.Ticker)
	assert.Equal(t, "0 14 * * 1-5", entry.CronExpression)
	assert.Equal(t, 30000.0, entry.Profile.Savings)
	assert.Equal(t, "high", entry.Profile.RiskTolerance)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("SERPER_API_KEY", "from-env")
	t.Setenv("ADVISOR_MAX_ARTICLES", "4")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Serper.APIKey)
	assert.Equal(t, 4, cfg.Advisor.MaxArticles)
	assert.Equal(t, "serper", cfg.News.Provider)
}
