package service

import (
	"context"
	"testing"
	"time"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNewsQueries(t *testing.T) {
	q := BuildNewsQueries("AAPL", "Apple Inc.")
	require.Len(t, q, 9)
	assert.Equal(t, "AAPL earnings", q[0])
	assert.Equal(t, "Apple Inc. news", q[1])
	assert.Equal(t, "AAPL analyst rating", q[8])
}

func TestMergeArticles(t *testing.T) {
	perQuery := [][]dto.NewsSearchResult{
		{
			{Title: "Old", Link: "https://a.com/1", PublishedAt: testNow.Add(-72 * time.Hour)},
			{Title: "Newest", Link: "https://a.com/2", PublishedAt: testNow},
		},
		{
			{Title: "Duplicate", Link: "https://a.com/1", PublishedAt: testNow},
			{Title: "No link"},
			{Title: "Middle", Link: "https://b.com/3", PublishedAt: testNow.Add(-24 * time.Hour)},
		},
	}

	got := MergeArticles(perQuery, 10)
	require.Len(t, got, 3)
	assert.Equal(t, "Newest", got[0].Title)
	assert.Equal(t, "Middle", got[1].Title)
	assert.Equal(t, "Old", got[2].Title)
	assert.Equal(t, ArticleID("https://a.com/2"), got[0].ID)
	assert.Len(t, got[0].ID, 32)

	assert.Len(t, MergeArticles(perQuery, 2), 2)
}

func TestNewsServiceFetch(t *testing.T) {
	repo := &fakeNewsRepo{results: map[string][]dto.NewsSearchResult{
		"AAPL earnings":   {{Title: "Apple beats estimates", Link: "https://x.com/1", PublishedAt: testNow}},
		"Apple Inc. news": {{Title: "Apple beats estimates", Link: "https://x.com/1", PublishedAt: testNow}},
	}}
	svc := NewNewsService(repo, logger.NewNop(), 10, 3, fixedClock)

	batch, degradations, err := svc.Fetch(context.Background(), "AAPL", "Apple Inc.")
	require.NoError(t, err)
	assert.Empty(t, degradations)
	assert.False(t, batch.Fallback)
	assert.Len(t, batch.Articles, 1)
	assert.Equal(t, 9, repo.calls)
}

func TestNewsServiceEmptyResultsAreNotReplaced(t *testing.T) {
	svc := NewNewsService(&fakeNewsRepo{}, logger.NewNop(), 10, 3, fixedClock)

	batch, degradations, err := svc.Fetch(context.Background(), "AAPL", "Apple Inc.")
	require.NoError(t, err)
	assert.Empty(t, degradations)
	assert.Empty(t, batch.Articles)
	assert.False(t, batch.Fallback)
}

func TestNewsServiceFallsBackWhenAllQueriesFail(t *testing.T) {
	svc := NewNewsService(&fakeNewsRepo{err: errProvider}, logger.NewNop(), 10, 3, fixedClock)

	batch, degradations, err := svc.Fetch(context.Background(), "AAPL", "Apple Inc.")
	require.NoError(t, err)
	assert.True(t, batch.Fallback)
	require.Len(t, batch.Articles, 5)
	assert.Equal(t, "Apple Inc. Reports Strong Quarterly Earnings", batch.Articles[0].Title)
	assert.Equal(t, testNow.Add(-48*time.Hour), batch.Articles[0].PublishedAt)
	require.Len(t, degradations, 1)
	assert.Equal(t, StageNews, degradations[0].Stage)
}

func TestNewsServiceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewNewsService(&fakeNewsRepo{}, logger.NewNop(), 10, 3, fixedClock)

	_, _, err := svc.Fetch(ctx, "AAPL", "Apple Inc.")
	assert.ErrorIs(t, err, context.Canceled)
}
