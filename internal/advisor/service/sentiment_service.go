package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/internal/advisor/repository"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// Classifier labels one piece of text.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, text string) (dto.Classification, error)
}

// ModelClassifier delegates to a hosted sentiment model.
type ModelClassifier struct {
	repo repository.SentimentRepository
}

func NewModelClassifier(repo repository.SentimentRepository) *ModelClassifier {
	return &ModelClassifier{repo: repo}
}

func (m *ModelClassifier) Name() string { return "model" }

func (m *ModelClassifier) Classify(ctx context.Context, text string) (dto.Classification, error) {
	c, err := m.repo.Classify(ctx, text)
	if err != nil {
		return dto.Classification{}, err
	}
	if !c.Label.Valid() || !isFinite(c.Score) {
		return dto.Classification{}, fmt.Errorf("model returned invalid classification %q/%v", c.Label, c.Score)
	}
	return c, nil
}

// SentimentService scores a batch of articles.
type SentimentService interface {
	Analyze(ctx context.Context, ticker string, articles []dto.NewsArticle) (dto.SentimentReport, []dto.Degradation, error)
}

type sentimentService struct {
	classifier  Classifier
	lexical     *LexicalClassifier
	logger      *logger.Logger
	timeout     time.Duration
	concurrency int
	now         func() time.Time
}

// NewSentimentService creates a SentimentService. A nil classifier means lexical scoring only.
func NewSentimentService(classifier Classifier, log *logger.Logger, timeout time.Duration, concurrency int, now func() time.Time) SentimentService {
	lexical := NewLexicalClassifier()
	if classifier == nil {
		classifier = lexical
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if now == nil {
		now = time.Now
	}
	return &sentimentService{
		classifier:  classifier,
		lexical:     lexical,
		logger:      log,
		timeout:     timeout,
		concurrency: concurrency,
		now:         now,
	}
}

func (s *sentimentService) Analyze(ctx context.Context, ticker string, articles []dto.NewsArticle) (dto.SentimentReport, []dto.Degradation, error) {
	now := s.now()
	results := make([]dto.SentimentResult, len(articles))
	failed := make([]bool, len(articles))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i, article := range articles {
		i, article := i, article
		g.Go(func() error {
			results[i], failed[i] = s.classifyArticle(ctx, s.classifier, article)
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return dto.SentimentReport{}, nil, ctx.Err()
	}

	classifierName := s.classifier.Name()
	var degradations []dto.Degradation

	failures := 0
	for _, f := range failed {
		if f {
			failures++
		}
	}
	switch {
	case failures > 0 && failures == len(articles):
		s.logger.WarnContext(ctx, "Sentiment model unavailable for whole batch, using lexical scoring", logger.StringField("ticker", ticker))
		for i, article := range articles {
			results[i], _ = s.classifyArticle(ctx, s.lexical, article)
			results[i].Fallback = true
			results[i].Notes = "model unavailable, scored lexically"
		}
		classifierName = s.lexical.Name()
		degradations = append(degradations, degrade(StageSentiment, "sentiment model unavailable, all articles scored lexically"))
	case failures > 0:
		degradations = append(degradations, degrade(StageSentiment, "%d of %d articles could not be classified and were treated as neutral", failures, len(articles)))
	}

	return dto.SentimentReport{
		Ticker:       ticker,
		AnalysisDate: now,
		Results:      results,
		Aggregate:    AggregateSentiment(results, articles, now),
		Classifier:   classifierName,
	}, degradations, nil
}

// classifyArticle never fails: a classifier error yields a neutral result flagged as fallback.
func (s *sentimentService) classifyArticle(ctx context.Context, classifier Classifier, article dto.NewsArticle) (dto.SentimentResult, bool) {
	text := strings.TrimSpace(article.Title + ". " + article.Snippet)
	result := dto.SentimentResult{
		ArticleID:     article.ID,
		Title:         article.Title,
		SentenceLevel: SentenceSentiments(text),
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	c, err := classifier.Classify(callCtx, utils.Truncate(text, 512))
	if err != nil {
		s.logger.DebugContext(ctx, "Article classification failed", logger.StringField("article_id", article.ID), logger.ErrorField(err))
		result.Label = dto.SentimentNeutral
		result.Score = 0.5
		result.Fallback = true
		result.Notes = "classifier unavailable, defaulted to neutral"
		return result, true
	}

	result.Label = c.Label
	result.Score = c.Score
	result.Model = c.Model
	return result, false
}

// AggregateSentiment computes label fractions and the recency-weighted score.
// results and articles must be index aligned. Weights are max(0.1, 1 - days/30)
// where days counts from publication; future dates count as zero days.
func AggregateSentiment(results []dto.SentimentResult, articles []dto.NewsArticle, now time.Time) dto.SentimentAggregate {
	if len(results) == 0 {
		return dto.SentimentAggregate{NeutralFraction: 1}
	}

	var pos, neg, neu int
	var weighted, totalWeight float64
	for i, r := range results {
		signed := 0.0
		switch r.Label {
		case dto.SentimentPositive:
			pos++
			signed = r.Score
		case dto.SentimentNegative:
			neg++
			signed = -r.Score
		default:
			neu++
		}

		days := 0.0
		if i < len(articles) {
			days = utils.DaysBetween(articles[i].PublishedAt, now)
		}
		w := math.Max(0.1, 1-days/30)
		weighted += signed * w
		totalWeight += w
	}

	n := float64(len(results))
	score := weighted / totalWeight
	return dto.SentimentAggregate{
		PositiveFraction: float64(pos) / n,
		NegativeFraction: float64(neg) / n,
		NeutralFraction:  float64(neu) / n,
		WeightedScore:    math.Max(-1, math.Min(1, score)),
	}
}

// InterpretSentiment maps a weighted score to a descriptive band.
func InterpretSentiment(score float64) string {
	switch {
	case score > 0.3:
		return "strongly positive"
	case score > 0.1:
		return "mildly positive"
	case score > -0.1:
		return "neutral"
	case score > -0.3:
		return "mildly negative"
	default:
		return "strongly negative"
	}
}
