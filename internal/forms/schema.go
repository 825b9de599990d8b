// internal/forms/schema.go
package forms

import (
	"encoding/json"
	"fmt"
	"strings"

	commonerrors "claims-gateway/internal/common/errors"
	"claims-gateway/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// claimSchemaJSON is the data-format contract checked immediately before
// submission. It runs against the fully-coerced payload and is independent of
// the interactive field validation: it reports every violation at once.
const claimSchemaJSON = `{
  "type": "object",
  "required": [
    "ic_number", "age", "months_as_customer", "vehicle_age_years",
    "vehicle_make", "policy_expired_flag", "deductible_amount",
    "market_value", "damage_severity_score", "repair_amount",
    "at_fault_flag", "time_to_report_days", "claim_reported_to_police_flag",
    "license_type_missing_flag", "num_third_parties", "num_witnesses",
    "approval_flag", "coverage_amount", "claim_description",
    "customer_background"
  ],
  "properties": {
    "ic_number":            {"type": "string", "minLength": 6},
    "age":                  {"type": "integer", "minimum": 0},
    "months_as_customer":   {"type": "integer", "minimum": 0},
    "vehicle_age_years":    {"type": "integer", "minimum": 0},
    "vehicle_make":         {"type": "string", "minLength": 2},
    "plate_number":         {"type": "string"},
    "policy_expired_flag":  {"type": "boolean"},
    "deductible_amount":    {"type": "number", "minimum": 0},
    "market_value":         {"type": "number", "minimum": 0},
    "damage_severity_score":{"type": "integer", "minimum": 1, "maximum": 10},
    "repair_amount":        {"type": "number", "minimum": 0},
    "at_fault_flag":        {"type": "boolean"},
    "time_to_report_days":  {"type": "integer", "minimum": 0},
    "claim_reported_to_police_flag": {"type": "boolean"},
    "license_type_missing_flag":     {"type": "boolean"},
    "num_third_parties":    {"type": "integer", "minimum": 0},
    "num_witnesses":        {"type": "integer", "minimum": 0},
    "approval_flag":        {"type": "boolean"},
    "coverage_amount":      {"type": "number", "minimum": 0},
    "claim_description":    {"type": "string", "minLength": 20},
    "customer_background":  {"type": "string", "minLength": 20}
  }
}`

var claimSchema = gojsonschema.NewStringLoader(claimSchemaJSON)

// CheckDataFormat re-validates the fully-coerced draft against the claim JSON
// schema and aggregates every violation into a single error. Returns nil when
// the payload conforms.
func CheckDataFormat(draft *models.ClaimDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return commonerrors.NewClaimValidationFailedError(fmt.Sprintf("marshal draft: %v", err))
	}

	result, err := gojsonschema.Validate(claimSchema, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return commonerrors.NewClaimValidationFailedError(fmt.Sprintf("schema validation: %v", err))
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return commonerrors.NewClaimValidationFailedError(strings.Join(msgs, "; "))
}
