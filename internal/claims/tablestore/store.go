// internal/claims/tablestore/store.go
package tablestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	commonerrors "claims-gateway/internal/common/errors"
	"claims-gateway/internal/common/logger"
	"claims-gateway/internal/models"
)

const claimColumns = `id, ic_number, age, months_as_customer, vehicle_age_years,
	vehicle_make, plate_number, policy_expired_flag, deductible_amount, market_value,
	damage_severity_score, repair_amount, at_fault_flag, time_to_report_days,
	claim_reported_to_police_flag, license_type_missing_flag, num_third_parties,
	num_witnesses, approval_flag, coverage_amount, claim_description,
	customer_background, created_at, updated_at`

// Store is the primary backend: the claims table in Postgres queried through
// the hosted table-store interface (filtered select with exact count, ordered
// range pagination, insert returning the stored row).
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"backend": "tablestore"}),
	}
}

// List returns one ordered page of claims plus the exact total count. The
// search term is matched case-insensitively as a substring against ic_number,
// vehicle_make and claim_description, OR-combined.
func (s *Store) List(ctx context.Context, page int, search string) (*models.ClaimPage, error) {
	where := ""
	args := []interface{}{}
	if search != "" {
		where = ` WHERE ic_number ILIKE $1 OR vehicle_make ILIKE $1 OR claim_description ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM claims` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("list_count", err)
	}

	offset := (page - 1) * models.PageSize
	listQuery := fmt.Sprintf(
		`SELECT %s FROM claims%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		claimColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, models.PageSize, offset)

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("list", err)
	}
	defer rows.Close()

	items := []models.Claim{}
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, commonerrors.NewQueryExecutionFailedError("list_scan", err)
		}
		items = append(items, *claim)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("list_rows", err)
	}

	return models.NewClaimPage(items, page, total), nil
}

// GetByID fetches a single claim by identifier.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Claim, error) {
	query := fmt.Sprintf(`SELECT %s FROM claims WHERE id = $1`, claimColumns)
	row := s.db.QueryRowContext(ctx, query, id)
	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, commonerrors.NewClaimNotFoundError(id)
		}
		return nil, commonerrors.NewQueryExecutionFailedError("get", err)
	}
	return claim, nil
}

// Create inserts the draft and returns the stored row including the assigned
// id and timestamps.
func (s *Store) Create(ctx context.Context, draft *models.ClaimDraft) (*models.Claim, error) {
	query := fmt.Sprintf(`INSERT INTO claims (
		ic_number, age, months_as_customer, vehicle_age_years, vehicle_make,
		plate_number, policy_expired_flag, deductible_amount, market_value,
		damage_severity_score, repair_amount, at_fault_flag, time_to_report_days,
		claim_reported_to_police_flag, license_type_missing_flag, num_third_parties,
		num_witnesses, approval_flag, coverage_amount, claim_description,
		customer_background
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	RETURNING %s`, claimColumns)

	row := s.db.QueryRowContext(ctx, query,
		draft.ICNumber, draft.Age, draft.MonthsAsCustomer, draft.VehicleAgeYears,
		draft.VehicleMake, draft.PlateNumber, draft.PolicyExpiredFlag,
		draft.DeductibleAmount, draft.MarketValue, draft.DamageSeverityScore,
		draft.RepairAmount, draft.AtFaultFlag, draft.TimeToReportDays,
		draft.ClaimReportedToPoliceFlag, draft.LicenseTypeMissingFlag,
		draft.NumThirdParties, draft.NumWitnesses, draft.ApprovalFlag,
		draft.CoverageAmount, draft.ClaimDescription, draft.CustomerBackground,
	)

	claim, err := scanClaim(row)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("create", err)
	}

	s.logger.Info("claim stored", map[string]interface{}{
		"claimId":  claim.ID.String(),
		"icNumber": claim.ICNumber,
	})
	return claim, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClaim(row rowScanner) (*models.Claim, error) {
	var c models.Claim
	var id int64
	var plate sql.NullString
	err := row.Scan(
		&id, &c.ICNumber, &c.Age, &c.MonthsAsCustomer, &c.VehicleAgeYears,
		&c.VehicleMake, &plate, &c.PolicyExpiredFlag, &c.DeductibleAmount,
		&c.MarketValue, &c.DamageSeverityScore, &c.RepairAmount, &c.AtFaultFlag,
		&c.TimeToReportDays, &c.ClaimReportedToPoliceFlag, &c.LicenseTypeMissingFlag,
		&c.NumThirdParties, &c.NumWitnesses, &c.ApprovalFlag, &c.CoverageAmount,
		&c.ClaimDescription, &c.CustomerBackground, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ID = models.ClaimID(fmt.Sprintf("%d", id))
	c.PlateNumber = plate.String
	return &c, nil
}
