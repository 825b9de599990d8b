// internal/forms/validate.go
package forms

import (
	"fmt"

	"claims-gateway/internal/models"
)

// Minimum lengths for required string fields.
const (
	MinICNumberLen           = 6
	MinVehicleMakeLen        = 2
	MinClaimDescriptionLen   = 20
	MinCustomerBackgroundLen = 20
)

// Severity score bounds.
const (
	MinSeverityScore = 1
	MaxSeverityScore = 10
)

// Validate checks a coerced draft against the claim invariants and returns
// field-scoped messages. A nil return means the draft is valid.
func Validate(draft *models.ClaimDraft) FieldErrors {
	fe := FieldErrors{}

	checkMinLen(fe, "ic_number", draft.ICNumber, MinICNumberLen)
	checkMinLen(fe, "vehicle_make", draft.VehicleMake, MinVehicleMakeLen)
	checkMinLen(fe, "claim_description", draft.ClaimDescription, MinClaimDescriptionLen)
	checkMinLen(fe, "customer_background", draft.CustomerBackground, MinCustomerBackgroundLen)

	if draft.DamageSeverityScore < MinSeverityScore || draft.DamageSeverityScore > MaxSeverityScore {
		fe.Add("damage_severity_score", fmt.Sprintf("must be between %d and %d, got %d",
			MinSeverityScore, MaxSeverityScore, draft.DamageSeverityScore))
	}

	checkNonNegativeInt(fe, "age", draft.Age)
	checkNonNegativeInt(fe, "months_as_customer", draft.MonthsAsCustomer)
	checkNonNegativeInt(fe, "vehicle_age_years", draft.VehicleAgeYears)
	checkNonNegativeInt(fe, "time_to_report_days", draft.TimeToReportDays)
	checkNonNegativeInt(fe, "num_third_parties", draft.NumThirdParties)
	checkNonNegativeInt(fe, "num_witnesses", draft.NumWitnesses)

	checkNonNegativeAmount(fe, "deductible_amount", draft.DeductibleAmount)
	checkNonNegativeAmount(fe, "market_value", draft.MarketValue)
	checkNonNegativeAmount(fe, "repair_amount", draft.RepairAmount)
	checkNonNegativeAmount(fe, "coverage_amount", draft.CoverageAmount)

	if fe.Empty() {
		return nil
	}
	return fe
}

func checkMinLen(fe FieldErrors, field, value string, min int) {
	if len(value) < min {
		fe.Add(field, fmt.Sprintf("must be at least %d characters", min))
	}
}

func checkNonNegativeInt(fe FieldErrors, field string, value int) {
	if value < 0 {
		fe.Add(field, fmt.Sprintf("must be >= 0, got %d", value))
	}
}

func checkNonNegativeAmount(fe FieldErrors, field string, value float64) {
	if value < 0 {
		fe.Add(field, fmt.Sprintf("must be >= 0, got %v", value))
	}
}
