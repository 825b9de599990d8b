// internal/claims/service_test.go
package claims

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "claims-gateway/internal/common/errors"
	"claims-gateway/internal/common/logger"
	"claims-gateway/internal/models"
)

// stubPrimary and stubSecondary script each tier's behavior per operation.
type stubPrimary struct {
	listErr   error
	getErr    error
	createErr error
	listCalls int
}

func (p *stubPrimary) List(ctx context.Context, page int, search string) (*models.ClaimPage, error) {
	p.listCalls++
	if p.listErr != nil {
		return nil, p.listErr
	}
	return models.NewClaimPage([]models.Claim{{ID: "p1"}}, page, 1), nil
}

func (p *stubPrimary) GetByID(ctx context.Context, id string) (*models.Claim, error) {
	if p.getErr != nil {
		return nil, p.getErr
	}
	return &models.Claim{ID: models.ClaimID(id)}, nil
}

func (p *stubPrimary) Create(ctx context.Context, draft *models.ClaimDraft) (*models.Claim, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	claim := draft.ToClaim()
	claim.ID = "p-created"
	return claim, nil
}

type secondaryCall struct {
	op           string
	credentialed bool
}

type stubSecondary struct {
	calls []secondaryCall

	listErrCred   error
	listErrUncred error
	getErrCred    error
	getErrUncred  error
	createErrCred error
	createErrUncr error
}

func (s *stubSecondary) List(ctx context.Context, page int, search string, credentialed bool) (*models.ClaimPage, error) {
	s.calls = append(s.calls, secondaryCall{"list", credentialed})
	err := s.listErrUncred
	if credentialed {
		err = s.listErrCred
	}
	if err != nil {
		return nil, err
	}
	return models.NewClaimPage([]models.Claim{{ID: "s1"}}, page, 1), nil
}

func (s *stubSecondary) GetByID(ctx context.Context, id string, credentialed bool) (*models.Claim, error) {
	s.calls = append(s.calls, secondaryCall{"get", credentialed})
	err := s.getErrUncred
	if credentialed {
		err = s.getErrCred
	}
	if err != nil {
		return nil, err
	}
	return &models.Claim{ID: models.ClaimID(id)}, nil
}

func (s *stubSecondary) Create(ctx context.Context, draft *models.ClaimDraft, credentialed bool) (*models.Claim, error) {
	s.calls = append(s.calls, secondaryCall{"create", credentialed})
	err := s.createErrUncr
	if credentialed {
		err = s.createErrCred
	}
	if err != nil {
		return nil, err
	}
	claim := draft.ToClaim()
	claim.ID = "s-created"
	return claim, nil
}

func (s *stubSecondary) Update(ctx context.Context, id string, claim *models.Claim) (*models.Claim, error) {
	s.calls = append(s.calls, secondaryCall{"update", true})
	return claim, nil
}

func (s *stubSecondary) Delete(ctx context.Context, id string) error {
	s.calls = append(s.calls, secondaryCall{"delete", true})
	return nil
}

func (s *stubSecondary) FilterByDamageScore(ctx context.Context, minScore, maxScore *float64) ([]models.Claim, error) {
	return nil, nil
}

func (s *stubSecondary) FilterByRepairAmount(ctx context.Context, minAmount, maxAmount *float64) ([]models.Claim, error) {
	return nil, nil
}

func (s *stubSecondary) RagQuery(ctx context.Context, query string) (string, error) {
	return "answer", nil
}

func (s *stubSecondary) Health(ctx context.Context) (*models.HealthStatus, error) {
	return &models.HealthStatus{Status: "healthy"}, nil
}

type recordingNotifier struct {
	created []models.ClaimID
}

func (n *recordingNotifier) ClaimCreated(ctx context.Context, claim *models.Claim) {
	n.created = append(n.created, claim.ID)
}

func validDraft() *models.ClaimDraft {
	return &models.ClaimDraft{
		ICNumber:            "900101015432",
		Age:                 35,
		MonthsAsCustomer:    24,
		VehicleAgeYears:     5,
		VehicleMake:         "Toyota",
		DeductibleAmount:    500,
		MarketValue:         45000,
		DamageSeverityScore: 6,
		RepairAmount:        8200,
		TimeToReportDays:    2,
		NumThirdParties:     1,
		NumWitnesses:        2,
		CoverageAmount:      50000,
		ClaimDescription:    "Rear-ended at a traffic light while commuting to work this morning",
		CustomerBackground:  "Long-standing customer with a clean record and no prior claims",
	}
}

func newTestService(p *stubPrimary, s *stubSecondary, opts ...Option) *Service {
	return NewService(p, s, logger.NewNoOpLogger(), opts...)
}

func TestService_List_Fallback(t *testing.T) {
	boom := errors.New("connection refused")

	tests := []struct {
		name          string
		primaryErr    error
		credErr       error
		uncredErr     error
		wantID        models.ClaimID
		wantCalls     []secondaryCall
		wantExhausted bool
	}{
		{
			name:      "primary serves, secondary untouched",
			wantID:    "p1",
			wantCalls: nil,
		},
		{
			name:       "primary down, credentialed fallback serves",
			primaryErr: boom,
			wantID:     "s1",
			wantCalls:  []secondaryCall{{"list", true}},
		},
		{
			name:       "credentialed rejected, uncredentialed serves",
			primaryErr: boom,
			credErr:    errors.New("status 403: CSRF verification failed"),
			wantID:     "s1",
			wantCalls:  []secondaryCall{{"list", true}, {"list", false}},
		},
		{
			name:          "all tiers down",
			primaryErr:    boom,
			credErr:       boom,
			uncredErr:     boom,
			wantCalls:     []secondaryCall{{"list", true}, {"list", false}},
			wantExhausted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &stubPrimary{listErr: tt.primaryErr}
			secondary := &stubSecondary{listErrCred: tt.credErr, listErrUncred: tt.uncredErr}
			svc := newTestService(primary, secondary)

			page, err := svc.List(context.Background(), 1, "")
			if tt.wantExhausted {
				require.Error(t, err)
				assert.Equal(t, commonerrors.ErrCodeFallbackExhausted, commonerrors.CodeOf(err))

				var stdErr *commonerrors.StandardError
				require.ErrorAs(t, err, &stdErr)
				assert.Contains(t, stdErr.Details, "attempt 1")
				assert.Contains(t, stdErr.Details, "attempt 3")
			} else {
				require.NoError(t, err)
				require.Len(t, page.Items, 1)
				assert.Equal(t, tt.wantID, page.Items[0].ID)
			}
			assert.Equal(t, tt.wantCalls, secondary.calls)
		})
	}
}

func TestService_List_PageFloor(t *testing.T) {
	primary := &stubPrimary{}
	svc := newTestService(primary, &stubSecondary{})

	page, err := svc.List(context.Background(), 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
}

func TestService_GetByID_NotFoundIsTerminal(t *testing.T) {
	primary := &stubPrimary{getErr: errors.New("connection refused")}
	secondary := &stubSecondary{getErrCred: commonerrors.NewClaimNotFoundError("999")}
	svc := newTestService(primary, secondary)

	_, err := svc.GetByID(context.Background(), "999")
	require.Error(t, err)
	assert.True(t, commonerrors.IsNotFound(err))
	// Not-found from a backend that answered must not trigger another attempt.
	assert.Equal(t, []secondaryCall{{"get", true}}, secondary.calls)
}

func TestService_GetByID_PrimaryNotFoundSurvivesSecondaryOutage(t *testing.T) {
	down := errors.New("connection refused")
	primary := &stubPrimary{getErr: commonerrors.NewClaimNotFoundError("999")}
	secondary := &stubSecondary{getErrCred: down, getErrUncred: down}
	svc := newTestService(primary, secondary)

	_, err := svc.GetByID(context.Background(), "999")
	require.Error(t, err)
	// The primary answered not-found; a dead fallback tier must not turn
	// that into an exhaustion error.
	assert.True(t, commonerrors.IsNotFound(err))
	assert.Equal(t, commonerrors.ErrCodeClaimNotFound, commonerrors.CodeOf(err))
	assert.Equal(t, []secondaryCall{{"get", true}, {"get", false}}, secondary.calls)
}

func TestService_Create(t *testing.T) {
	t.Run("invalid draft never reaches a backend", func(t *testing.T) {
		primary := &stubPrimary{}
		secondary := &stubSecondary{}
		svc := newTestService(primary, secondary)

		_, err := svc.Create(context.Background(), &models.ClaimDraft{ICNumber: "123"})
		require.Error(t, err)
		assert.True(t, commonerrors.IsValidation(err))
		assert.Equal(t, 0, primary.listCalls)
		assert.Empty(t, secondary.calls)
	})

	t.Run("remote validation rejection short-circuits", func(t *testing.T) {
		primary := &stubPrimary{createErr: errors.New("connection refused")}
		secondary := &stubSecondary{
			createErrCred: commonerrors.NewRemoteValidationFailedError(map[string][]string{
				"ic_number": {"already exists"},
			}),
		}
		svc := newTestService(primary, secondary)

		_, err := svc.Create(context.Background(), validDraft())
		require.Error(t, err)
		assert.True(t, commonerrors.IsValidation(err))
		assert.Equal(t, []secondaryCall{{"create", true}}, secondary.calls)
	})

	t.Run("notifier fires on success", func(t *testing.T) {
		notifier := &recordingNotifier{}
		svc := newTestService(&stubPrimary{}, &stubSecondary{}, WithNotifier(notifier))

		claim, err := svc.Create(context.Background(), validDraft())
		require.NoError(t, err)
		assert.Equal(t, []models.ClaimID{claim.ID}, notifier.created)
	})

	t.Run("fallback create still notifies", func(t *testing.T) {
		notifier := &recordingNotifier{}
		primary := &stubPrimary{createErr: errors.New("connection refused")}
		svc := newTestService(primary, &stubSecondary{}, WithNotifier(notifier))

		claim, err := svc.Create(context.Background(), validDraft())
		require.NoError(t, err)
		assert.Equal(t, models.ClaimID("s-created"), claim.ID)
		assert.Len(t, notifier.created, 1)
	})
}

func TestService_PassThroughs(t *testing.T) {
	secondary := &stubSecondary{}
	svc := newTestService(&stubPrimary{}, secondary)

	_, err := svc.Update(context.Background(), "1", &models.Claim{ID: "1"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), "1"))

	answer, err := svc.RagQuery(context.Background(), "what is my deductible")
	require.NoError(t, err)
	assert.Equal(t, "answer", answer)

	status, err := svc.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status.Status)

	assert.Equal(t, []secondaryCall{{"update", true}, {"delete", true}}, secondary.calls)
}
