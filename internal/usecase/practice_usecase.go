package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"alumni-prep-backend/internal/domain"
	"alumni-prep-backend/pkg/horizon"
	"alumni-prep-backend/pkg/logger"
	"alumni-prep-backend/pkg/metrics"
)

// GenerateInput is the raw generator form.
type GenerateInput struct {
	InterviewDate time.Time // zero when no date was picked
	PrepLevel     domain.PrepTier
	TargetCompany string
}

// BuildPreparationRequest shapes the request sent to the recommendation
// service. now is injected so the horizon is reproducible.
func BuildPreparationRequest(in GenerateInput, now time.Time) domain.PreparationRequest {
	return domain.PreparationRequest{
		DaysRemaining:      horizon.DaysUntil(in.InterviewDate, now),
		PreparationTier:    in.PrepLevel,
		TargetOrganization: in.TargetCompany,
	}
}

// PracticeListState is what the client renders for the generator.
type PracticeListState struct {
	Phase   domain.Phase              `json:"phase"`
	Items   []domain.PracticeListItem `json:"items"`
	Failure *domain.Failure           `json:"failure,omitempty"`
}

// PracticeList holds the most recently resolved list for one session.
// Requests may overlap; whichever finishes last provides the list.
type PracticeList struct {
	client domain.RecommendationClient
	now    func() time.Time

	mu       sync.Mutex
	inFlight int
	items    []domain.PracticeListItem
	failure  *domain.Failure
}

func NewPracticeList(client domain.RecommendationClient, now func() time.Time) *PracticeList {
	if now == nil {
		now = time.Now
	}
	return &PracticeList{
		client: client,
		now:    now,
		items:  []domain.PracticeListItem{},
	}
}

func (p *PracticeList) State() PracticeListState {
	p.mu.Lock()
	defer p.mu.Unlock()

	phase := domain.PhaseIdle
	if p.inFlight > 0 {
		phase = domain.PhaseLoading
	}
	return PracticeListState{
		Phase:   phase,
		Items:   p.items,
		Failure: p.failure,
	}
}

// Generate issues one request and returns the ordered list exactly as the
// service sent it. On failure the previously held list is left untouched.
func (p *PracticeList) Generate(ctx context.Context, in GenerateInput) ([]domain.PracticeListItem, error) {
	req := BuildPreparationRequest(in, p.now())

	p.mu.Lock()
	p.inFlight++
	p.mu.Unlock()

	start := time.Now()
	items, err := p.client.Generate(ctx, req)
	metrics.PracticeListDuration.Observe(time.Since(start).Seconds())

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight--

	if err != nil {
		if !errors.Is(err, domain.ErrGenerationFailed) {
			err = domain.GenerationFailed(domain.MarkTimeout(err))
		}
		var wfErr *domain.WorkflowError
		reason := err.Error()
		if errors.As(err, &wfErr) {
			reason = wfErr.Cause()
		}
		p.failure = &domain.Failure{
			Stage:  domain.PhaseLoading,
			Kind:   domain.KindGenerationFailed,
			Reason: reason,
		}
		metrics.PracticeListRequests.WithLabelValues("failed").Inc()
		logger.Log.Warnw("Practice list generation failed", "time_left", req.DaysRemaining, "prep_level", req.PreparationTier, "error", err)
		return nil, err
	}

	p.items = items
	p.failure = nil
	metrics.PracticeListRequests.WithLabelValues("ok").Inc()
	return items, nil
}
