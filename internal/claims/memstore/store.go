// Package memstore is an in-memory primary backend used in development and
// tests. It mirrors the table store's semantics: case-insensitive substring
// search, newest-first ordering, fixed page size, exact counts.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	commonerrors "claims-gateway/internal/common/errors"
	"claims-gateway/internal/common/logger"
	"claims-gateway/internal/models"
)

type Store struct {
	mu     sync.RWMutex
	claims map[models.ClaimID]*models.Claim
	logger logger.Logger
}

func New(log logger.Logger) *Store {
	return &Store{
		claims: make(map[models.ClaimID]*models.Claim),
		logger: log.WithFields(map[string]interface{}{"backend": "memstore"}),
	}
}

// NewSeeded returns a store pre-populated with a handful of representative
// claims so the listing and chat flows have something to show.
func NewSeeded(log logger.Logger) *Store {
	s := New(log)
	for _, c := range seedClaims() {
		claim := c
		s.claims[claim.ID] = &claim
	}
	return s
}

func (s *Store) List(ctx context.Context, page int, search string) (*models.ClaimPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.Claim, 0, len(s.claims))
	needle := strings.ToLower(search)
	for _, claim := range s.claims {
		if search == "" || matches(claim, needle) {
			matched = append(matched, *claim)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page - 1) * models.PageSize
	if start > total {
		start = total
	}
	end := start + models.PageSize
	if end > total {
		end = total
	}

	return models.NewClaimPage(matched[start:end], page, total), nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	claim, ok := s.claims[models.ClaimID(id)]
	if !ok {
		return nil, commonerrors.NewClaimNotFoundError(id)
	}
	copied := *claim
	return &copied, nil
}

func (s *Store) Create(ctx context.Context, draft *models.ClaimDraft) (*models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claim := draft.ToClaim()
	claim.ID = models.ClaimID(uuid.NewString())
	now := time.Now().UTC()
	claim.CreatedAt = now
	claim.UpdatedAt = now
	s.claims[claim.ID] = claim

	s.logger.Info("claim stored", map[string]interface{}{
		"claimId": claim.ID.String(),
	})

	copied := *claim
	return &copied, nil
}

func matches(claim *models.Claim, needle string) bool {
	return strings.Contains(strings.ToLower(claim.ICNumber), needle) ||
		strings.Contains(strings.ToLower(claim.VehicleMake), needle) ||
		strings.Contains(strings.ToLower(claim.ClaimDescription), needle)
}

func seedClaims() []models.Claim {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return []models.Claim{
		{
			ID:                        models.ClaimID(uuid.NewString()),
			ICNumber:                  "900101015432",
			Age:                       35,
			MonthsAsCustomer:          24,
			VehicleAgeYears:           5,
			VehicleMake:               "Toyota",
			PlateNumber:               "WXY1234",
			DeductibleAmount:          500,
			MarketValue:               45000,
			DamageSeverityScore:       6,
			RepairAmount:              8200,
			TimeToReportDays:          2,
			ClaimReportedToPoliceFlag: true,
			NumThirdParties:           1,
			NumWitnesses:              2,
			ApprovalFlag:              true,
			CoverageAmount:            50000,
			ClaimDescription:          "Rear-ended at a traffic light while commuting to work in the morning",
			CustomerBackground:        "Long-standing customer with a clean driving record and no prior claims",
			CreatedAt:                 base,
			UpdatedAt:                 base,
		},
		{
			ID:                        models.ClaimID(uuid.NewString()),
			ICNumber:                  "880505103344",
			Age:                       42,
			MonthsAsCustomer:          60,
			VehicleAgeYears:           8,
			VehicleMake:               "Honda",
			PlateNumber:               "JKA5521",
			PolicyExpiredFlag:         true,
			DeductibleAmount:          750,
			MarketValue:               32000,
			DamageSeverityScore:       4,
			RepairAmount:              5100,
			TimeToReportDays:          10,
			NumThirdParties:           0,
			NumWitnesses:              0,
			CoverageAmount:            35000,
			ClaimDescription:          "Side mirror and door panel damaged in a parking lot collision overnight",
			CustomerBackground:        "Policy lapsed the month before the incident was reported to us",
			CreatedAt:                 base.Add(24 * time.Hour),
			UpdatedAt:                 base.Add(24 * time.Hour),
		},
		{
			ID:                        models.ClaimID(uuid.NewString()),
			ICNumber:                  "950812086677",
			Age:                       29,
			MonthsAsCustomer:          6,
			VehicleAgeYears:           2,
			VehicleMake:               "Perodua",
			PlateNumber:               "VBT9012",
			DeductibleAmount:          300,
			MarketValue:               38000,
			DamageSeverityScore:       8,
			RepairAmount:              15400,
			AtFaultFlag:               true,
			TimeToReportDays:          1,
			ClaimReportedToPoliceFlag: true,
			NumThirdParties:           2,
			NumWitnesses:              3,
			CoverageAmount:            40000,
			ClaimDescription:          "Lost control on a wet highway and collided with the center divider",
			CustomerBackground:        "Recent customer, police report attributes fault to the policyholder",
			CreatedAt:                 base.Add(48 * time.Hour),
			UpdatedAt:                 base.Add(48 * time.Hour),
		},
	}
}
