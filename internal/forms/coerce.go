// internal/forms/coerce.go
package forms

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"claims-gateway/internal/models"
)

// FieldErrors collects validation messages keyed by field name.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

// Error joins all field messages into one deterministic string.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(fe[f], ", ")))
	}
	return strings.Join(parts, "; ")
}

// Coerce converts raw, loosely-typed form input into a typed ClaimDraft.
// Form libraries hand back strings for select/radio fields, so every numeric
// and boolean field accepts its string spelling. Unknown keys are ignored;
// missing keys keep zero values and are caught by Validate.
func Coerce(raw map[string]interface{}) (*models.ClaimDraft, FieldErrors) {
	fe := FieldErrors{}
	draft := &models.ClaimDraft{}

	draft.ICNumber = coerceString(raw, "ic_number")
	draft.VehicleMake = coerceString(raw, "vehicle_make")
	draft.PlateNumber = coerceString(raw, "plate_number")
	draft.ClaimDescription = coerceString(raw, "claim_description")
	draft.CustomerBackground = coerceString(raw, "customer_background")

	draft.Age = coerceInt(raw, "age", fe)
	draft.MonthsAsCustomer = coerceInt(raw, "months_as_customer", fe)
	draft.VehicleAgeYears = coerceInt(raw, "vehicle_age_years", fe)
	draft.DamageSeverityScore = coerceInt(raw, "damage_severity_score", fe)
	draft.TimeToReportDays = coerceInt(raw, "time_to_report_days", fe)
	draft.NumThirdParties = coerceInt(raw, "num_third_parties", fe)
	draft.NumWitnesses = coerceInt(raw, "num_witnesses", fe)

	draft.DeductibleAmount = coerceFloat(raw, "deductible_amount", fe)
	draft.MarketValue = coerceFloat(raw, "market_value", fe)
	draft.RepairAmount = coerceFloat(raw, "repair_amount", fe)
	draft.CoverageAmount = coerceFloat(raw, "coverage_amount", fe)

	draft.PolicyExpiredFlag = coerceBool(raw, "policy_expired_flag", fe)
	draft.AtFaultFlag = coerceBool(raw, "at_fault_flag", fe)
	draft.ClaimReportedToPoliceFlag = coerceBool(raw, "claim_reported_to_police_flag", fe)
	draft.LicenseTypeMissingFlag = coerceBool(raw, "license_type_missing_flag", fe)
	draft.ApprovalFlag = coerceBool(raw, "approval_flag", fe)

	if !fe.Empty() {
		return nil, fe
	}
	return draft, nil
}

func coerceString(raw map[string]interface{}, field string) string {
	v, ok := raw[field]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func coerceInt(raw map[string]interface{}, field string, fe FieldErrors) int {
	v, ok := raw[field]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n != math.Trunc(n) {
			fe.Add(field, fmt.Sprintf("must be a whole number, got %v", n))
			return 0
		}
		return int(n)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			// select inputs sometimes serialize integers as "7.0"
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil || f != math.Trunc(f) {
				fe.Add(field, fmt.Sprintf("must be a whole number, got %q", s))
				return 0
			}
			return int(f)
		}
		return i
	default:
		fe.Add(field, fmt.Sprintf("must be a whole number, got %T", v))
		return 0
	}
}

func coerceFloat(raw map[string]interface{}, field string, fe FieldErrors) float64 {
	v, ok := raw[field]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			fe.Add(field, fmt.Sprintf("must be a number, got %q", s))
			return 0
		}
		return f
	default:
		fe.Add(field, fmt.Sprintf("must be a number, got %T", v))
		return 0
	}
}

// coerceBool accepts native booleans and the literal strings "true"/"false".
// Anything else is a validation error, matching the form contract.
func coerceBool(raw map[string]interface{}, field string, fe FieldErrors) bool {
	v, ok := raw[field]
	if !ok || v == nil {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch b {
		case "true":
			return true
		case "false", "":
			return false
		default:
			fe.Add(field, fmt.Sprintf("must be true or false, got %q", b))
			return false
		}
	default:
		fe.Add(field, fmt.Sprintf("must be true or false, got %T", v))
		return false
	}
}
