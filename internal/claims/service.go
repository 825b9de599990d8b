// internal/claims/service.go
package claims

import (
	"context"
	"time"

	commonerrors "claims-gateway/internal/common/errors"
	"claims-gateway/internal/common/logger"
	"claims-gateway/internal/common/metrics"
	"claims-gateway/internal/common/observability"
	"claims-gateway/internal/forms"
	"claims-gateway/internal/models"
)

// Backend attempt labels for logs and metrics.
const (
	tierPrimary        = "primary"
	tierCredentialed   = "fallback_credentialed"
	tierUncredentialed = "fallback_uncredentialed"
)

// Service is the uniform claims data-access layer. Every read/create runs the
// fixed fallback sequence: TryPrimary -> TryFallbackCredentialed ->
// TryFallbackUncredentialed -> aggregated error. The caller-visible result
// shape is identical regardless of which backend served the request.
type Service struct {
	primary   Primary
	secondary Secondary
	notifier  Notifier
	logger    logger.Logger
	obs       *observability.Observability
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithObservability(obs *observability.Observability) Option {
	return func(s *Service) { s.obs = obs }
}

// NewService builds the data-access service. Both backends are required;
// everything else is optional.
func NewService(primary Primary, secondary Secondary, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		primary:   primary,
		secondary: secondary,
		logger:    log.WithFields(map[string]interface{}{"component": "claims-service"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns one page of claims, optionally filtered by a case-insensitive
// substring search over ic_number, vehicle_make and claim_description.
func (s *Service) List(ctx context.Context, page int, search string) (*models.ClaimPage, error) {
	if page < 1 {
		page = 1
	}

	done := s.startOperation(ctx, "list")
	defer done()

	result, err := s.primary.List(ctx, page, search)
	if err == nil {
		s.recordAttempt("list", tierPrimary, "success")
		return result, nil
	}
	attempts := []error{err}
	s.failover("list", tierPrimary, tierCredentialed, err)

	result, err = s.secondary.List(ctx, page, search, true)
	if err == nil {
		s.recordAttempt("list", tierCredentialed, "success")
		return result, nil
	}
	attempts = append(attempts, err)
	s.failover("list", tierCredentialed, tierUncredentialed, err)

	result, err = s.secondary.List(ctx, page, search, false)
	if err == nil {
		s.recordAttempt("list", tierUncredentialed, "success")
		return result, nil
	}
	attempts = append(attempts, err)
	s.recordAttempt("list", tierUncredentialed, "failure")

	return nil, s.exhausted(ctx, "list", attempts)
}

// GetByID fetches one claim. A backend that answered not-found gives a
// definitive answer: the secondary still gets asked after a primary
// not-found, but unreachable fallback tiers never upgrade that answer into
// an exhaustion error.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Claim, error) {
	done := s.startOperation(ctx, "get")
	defer done()

	claim, err := s.primary.GetByID(ctx, id)
	if err == nil {
		s.recordAttempt("get", tierPrimary, "success")
		return claim, nil
	}
	var primaryNotFound error
	if commonerrors.IsNotFound(err) {
		primaryNotFound = err
	}
	attempts := []error{err}
	s.failover("get", tierPrimary, tierCredentialed, err)

	claim, err = s.secondary.GetByID(ctx, id, true)
	if err == nil {
		s.recordAttempt("get", tierCredentialed, "success")
		return claim, nil
	}
	if commonerrors.IsNotFound(err) {
		// Both backends have been tried; surface not-found directly.
		s.recordAttempt("get", tierCredentialed, "not_found")
		return nil, err
	}
	attempts = append(attempts, err)
	s.failover("get", tierCredentialed, tierUncredentialed, err)

	claim, err = s.secondary.GetByID(ctx, id, false)
	if err == nil {
		s.recordAttempt("get", tierUncredentialed, "success")
		return claim, nil
	}
	if commonerrors.IsNotFound(err) {
		s.recordAttempt("get", tierUncredentialed, "not_found")
		return nil, err
	}
	attempts = append(attempts, err)
	s.recordAttempt("get", tierUncredentialed, "failure")

	if primaryNotFound != nil {
		// The primary answered; fallback transport failures don't change it.
		return nil, primaryNotFound
	}
	return nil, s.exhausted(ctx, "get", attempts)
}

// Create validates the draft locally, then stores it through the fallback
// sequence. Invalid drafts never reach a backend.
func (s *Service) Create(ctx context.Context, draft *models.ClaimDraft) (*models.Claim, error) {
	if fe := forms.Validate(draft); fe != nil {
		return nil, commonerrors.NewClaimValidationFailedError(fe.Error())
	}

	done := s.startOperation(ctx, "create")
	defer done()

	claim, err := s.primary.Create(ctx, draft)
	if err == nil {
		s.recordAttempt("create", tierPrimary, "success")
		s.notifyCreated(ctx, claim)
		return claim, nil
	}
	attempts := []error{err}
	s.failover("create", tierPrimary, tierCredentialed, err)

	claim, err = s.secondary.Create(ctx, draft, true)
	if err == nil {
		s.recordAttempt("create", tierCredentialed, "success")
		s.notifyCreated(ctx, claim)
		return claim, nil
	}
	if commonerrors.IsValidation(err) {
		// The backend rejected the payload; switching credentials won't help.
		s.recordAttempt("create", tierCredentialed, "rejected")
		return nil, err
	}
	attempts = append(attempts, err)
	s.failover("create", tierCredentialed, tierUncredentialed, err)

	claim, err = s.secondary.Create(ctx, draft, false)
	if err == nil {
		s.recordAttempt("create", tierUncredentialed, "success")
		s.notifyCreated(ctx, claim)
		return claim, nil
	}
	if commonerrors.IsValidation(err) {
		s.recordAttempt("create", tierUncredentialed, "rejected")
		return nil, err
	}
	attempts = append(attempts, err)
	s.recordAttempt("create", tierUncredentialed, "failure")

	return nil, s.exhausted(ctx, "create", attempts)
}

// Update is a direct pass-through to the secondary backend.
func (s *Service) Update(ctx context.Context, id string, claim *models.Claim) (*models.Claim, error) {
	done := s.startOperation(ctx, "update")
	defer done()
	return s.secondary.Update(ctx, id, claim)
}

// Delete is a direct pass-through to the secondary backend.
func (s *Service) Delete(ctx context.Context, id string) error {
	done := s.startOperation(ctx, "delete")
	defer done()
	return s.secondary.Delete(ctx, id)
}

// FilterByDamageScore is a direct pass-through to the secondary backend.
func (s *Service) FilterByDamageScore(ctx context.Context, minScore, maxScore *float64) ([]models.Claim, error) {
	done := s.startOperation(ctx, "filter_damage_score")
	defer done()
	return s.secondary.FilterByDamageScore(ctx, minScore, maxScore)
}

// FilterByRepairAmount is a direct pass-through to the secondary backend.
func (s *Service) FilterByRepairAmount(ctx context.Context, minAmount, maxAmount *float64) ([]models.Claim, error) {
	done := s.startOperation(ctx, "filter_repair_amount")
	defer done()
	return s.secondary.FilterByRepairAmount(ctx, minAmount, maxAmount)
}

// RagQuery forwards a free-text assistant question to the secondary backend.
func (s *Service) RagQuery(ctx context.Context, query string) (string, error) {
	done := s.startOperation(ctx, "rag")
	defer done()
	return s.secondary.RagQuery(ctx, query)
}

// Health reports the secondary backend's health endpoint.
func (s *Service) Health(ctx context.Context) (*models.HealthStatus, error) {
	return s.secondary.Health(ctx)
}

// ==========================
// Internal helpers
// ==========================

func (s *Service) startOperation(ctx context.Context, op string) func() {
	start := time.Now()
	return func() {
		elapsed := time.Since(start)
		metrics.OperationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
		if s.obs != nil {
			s.obs.RecordDuration(ctx, op, elapsed)
		}
	}
}

// failover records one observable fallback transition.
func (s *Service) failover(op, from, to string, err error) {
	metrics.BackendAttempts.WithLabelValues(op, from, "failure").Inc()
	metrics.FallbackTransitions.WithLabelValues(op, from, to).Inc()
	s.logger.Warn("backend attempt failed, falling back", map[string]interface{}{
		"operation": op,
		"from":      from,
		"to":        to,
		"error":     err.Error(),
	})
}

func (s *Service) recordAttempt(op, tier, outcome string) {
	metrics.BackendAttempts.WithLabelValues(op, tier, outcome).Inc()
}

func (s *Service) exhausted(ctx context.Context, op string, attempts []error) error {
	if s.obs != nil {
		s.obs.RecordOperation(ctx, op, "exhausted")
	}
	err := commonerrors.NewFallbackExhaustedError(op, attempts)
	s.logger.Error("all backend attempts failed", map[string]interface{}{
		"operation": op,
		"attempts":  len(attempts),
		"error":     err.Details,
	})
	return err
}

func (s *Service) notifyCreated(ctx context.Context, claim *models.Claim) {
	if s.notifier != nil {
		s.notifier.ClaimCreated(ctx, claim)
	}
}
