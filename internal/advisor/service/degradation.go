package service

import (
	"errors"
	"fmt"

	"golang-stock-advisor/internal/advisor/dto"
)

// Pipeline stages, used to label degradations.
const (
	StageNews      = "news"
	StageSentiment = "sentiment"
	StageMarket    = "market"
	StageRisk      = "risk"
	StageSynthesis = "synthesis"
)

func degrade(stage, format string, args ...interface{}) dto.Degradation {
	return dto.Degradation{Stage: stage, Reason: fmt.Sprintf(format, args...)}
}

var errEmptySeries = errors.New("provider returned an empty price series")
