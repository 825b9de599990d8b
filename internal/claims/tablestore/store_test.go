// internal/claims/tablestore/store_test.go
package tablestore

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "claims-gateway/internal/common/errors"
	"claims-gateway/internal/common/logger"
	"claims-gateway/internal/models"
)

var claimTestColumns = []string{
	"id", "ic_number", "age", "months_as_customer", "vehicle_age_years",
	"vehicle_make", "plate_number", "policy_expired_flag", "deductible_amount",
	"market_value", "damage_severity_score", "repair_amount", "at_fault_flag",
	"time_to_report_days", "claim_reported_to_police_flag", "license_type_missing_flag",
	"num_third_parties", "num_witnesses", "approval_flag", "coverage_amount",
	"claim_description", "customer_background", "created_at", "updated_at",
}

func addClaimRow(rows *sqlmock.Rows, id int64, icNumber string) *sqlmock.Rows {
	now := time.Now().UTC()
	return rows.AddRow(
		id, icNumber, 34, 24, 5,
		"Toyota", "WXY1234", false, 500.0,
		45000.0, 6, 8200.0, false,
		2, true, false,
		1, 2, false, 50000.0,
		"Rear-ended at a traffic light on the way to work this morning",
		"Customer has held the policy for two years with no prior claims",
		now, now,
	)
}

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	store := New(db, logger.NewNoOpLogger())
	return store, mock, func() { db.Close() }
}

func TestStore_List(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		search     string
		total      int
		rowCount   int
		wantNext   bool
		wantPrev   bool
		wantSearch bool
	}{
		{
			name:     "first page without search",
			page:     1,
			total:    25,
			rowCount: 10,
			wantNext: true,
			wantPrev: false,
		},
		{
			name:     "last page",
			page:     3,
			total:    25,
			rowCount: 5,
			wantNext: false,
			wantPrev: true,
		},
		{
			name:       "search narrows the result",
			page:       1,
			search:     "Toyota",
			total:      2,
			rowCount:   2,
			wantNext:   false,
			wantPrev:   false,
			wantSearch: true,
		},
		{
			name:     "empty page",
			page:     9,
			total:    0,
			rowCount: 0,
			wantNext: false,
			wantPrev: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock, cleanup := newTestStore(t)
			defer cleanup()

			countArgs := []driver.Value{}
			listArgs := []driver.Value{}
			if tt.wantSearch {
				countArgs = append(countArgs, "%"+tt.search+"%")
				listArgs = append(listArgs, "%"+tt.search+"%")
			}
			listArgs = append(listArgs, models.PageSize, (tt.page-1)*models.PageSize)

			mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM claims`)).
				WithArgs(countArgs...).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.total))

			rows := sqlmock.NewRows(claimTestColumns)
			for i := 0; i < tt.rowCount; i++ {
				addClaimRow(rows, int64(i+1), "900101015432")
			}
			mock.ExpectQuery(`SELECT (.+) FROM claims(.*) ORDER BY created_at DESC LIMIT`).
				WithArgs(listArgs...).
				WillReturnRows(rows)

			page, err := store.List(context.Background(), tt.page, tt.search)
			require.NoError(t, err)
			assert.Len(t, page.Items, tt.rowCount)
			assert.Equal(t, tt.total, page.Count)
			assert.Equal(t, tt.wantNext, page.HasNext)
			assert.Equal(t, tt.wantPrev, page.HasPrevious)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_List_CountError(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM claims`)).
		WillReturnError(errors.New("connection refused"))

	_, err := store.List(context.Background(), 1, "")
	require.Error(t, err)
	assert.Equal(t, commonerrors.ErrCodeQueryExecutionFailed, commonerrors.CodeOf(err))
}

func TestStore_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		store, mock, cleanup := newTestStore(t)
		defer cleanup()

		rows := addClaimRow(sqlmock.NewRows(claimTestColumns), 7, "880505103344")
		mock.ExpectQuery(`SELECT (.+) FROM claims WHERE id = \$1`).
			WithArgs("7").
			WillReturnRows(rows)

		claim, err := store.GetByID(context.Background(), "7")
		require.NoError(t, err)
		assert.Equal(t, models.ClaimID("7"), claim.ID)
		assert.Equal(t, "880505103344", claim.ICNumber)
		assert.Equal(t, "WXY1234", claim.PlateNumber)
	})

	t.Run("not found maps to claim-not-found", func(t *testing.T) {
		store, mock, cleanup := newTestStore(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM claims WHERE id = \$1`).
			WithArgs("999").
			WillReturnRows(sqlmock.NewRows(claimTestColumns))

		_, err := store.GetByID(context.Background(), "999")
		require.Error(t, err)
		assert.True(t, commonerrors.IsNotFound(err))
	})
}

func TestStore_Create(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	draft := &models.ClaimDraft{
		ICNumber:            "900101015432",
		Age:                 34,
		MonthsAsCustomer:    24,
		VehicleAgeYears:     5,
		VehicleMake:         "Toyota",
		PlateNumber:         "WXY1234",
		DeductibleAmount:    500,
		MarketValue:         45000,
		DamageSeverityScore: 6,
		RepairAmount:        8200,
		TimeToReportDays:    2,
		NumThirdParties:     1,
		NumWitnesses:        2,
		CoverageAmount:      50000,
		ClaimDescription:    "Rear-ended at a traffic light on the way to work this morning",
		CustomerBackground:  "Customer has held the policy for two years with no prior claims",
	}

	rows := addClaimRow(sqlmock.NewRows(claimTestColumns), 42, draft.ICNumber)
	mock.ExpectQuery(`INSERT INTO claims`).WillReturnRows(rows)

	claim, err := store.Create(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimID("42"), claim.ID)
	assert.False(t, claim.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
