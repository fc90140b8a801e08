package domain

import (
	"context"
	"encoding/json"
)

type PrepTier string

const (
	PrepBeginner     PrepTier = "beginner"
	PrepIntermediate PrepTier = "intermediate"
	PrepAdvanced     PrepTier = "advanced"
)

func (t PrepTier) Valid() bool {
	switch t {
	case PrepBeginner, PrepIntermediate, PrepAdvanced:
		return true
	}
	return false
}

// PreparationRequest is the body sent to the recommendation service.
type PreparationRequest struct {
	DaysRemaining      int      `json:"time_left"`
	PreparationTier    PrepTier `json:"prep_level"`
	TargetOrganization string   `json:"target_company"`
}

// PracticeListItem is one problem as ranked by the service. ID and Frequency
// are kept verbatim since the service may send either numbers or strings.
type PracticeListItem struct {
	ID         json.RawMessage `json:"id" swaggertype:"string"`
	Title      string          `json:"title"`
	URL        string          `json:"url"`
	Difficulty string          `json:"difficulty"`
	Frequency  json.RawMessage `json:"frequency" swaggertype:"string"`
}

// RecommendationClient calls the external list-generation backend.
type RecommendationClient interface {
	Generate(ctx context.Context, req PreparationRequest) ([]PracticeListItem, error)
}
