// internal/forms/forms_test.go
package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "claims-gateway/internal/common/errors"
	"claims-gateway/internal/models"
)

func validRaw() map[string]interface{} {
	return map[string]interface{}{
		"ic_number":                     "900101015432",
		"age":                           35,
		"months_as_customer":            24,
		"vehicle_age_years":             5,
		"vehicle_make":                  "Toyota",
		"plate_number":                  "WXY1234",
		"policy_expired_flag":           false,
		"deductible_amount":             500,
		"market_value":                  45000,
		"damage_severity_score":         6,
		"repair_amount":                 8200,
		"at_fault_flag":                 false,
		"time_to_report_days":           2,
		"claim_reported_to_police_flag": true,
		"license_type_missing_flag":     false,
		"num_third_parties":             1,
		"num_witnesses":                 2,
		"approval_flag":                 false,
		"coverage_amount":               50000,
		"claim_description":             "Rear-ended at a traffic light while commuting to work this morning",
		"customer_background":           "Long-standing customer with a clean record and no prior claims",
	}
}

func TestCoerce_StringlyTypedInput(t *testing.T) {
	raw := validRaw()
	raw["age"] = "35"
	raw["deductible_amount"] = "500.50"
	raw["damage_severity_score"] = "7.0"
	raw["policy_expired_flag"] = "true"
	raw["at_fault_flag"] = "false"

	draft, fe := Coerce(raw)
	require.True(t, fe.Empty(), fe.Error())
	assert.Equal(t, 35, draft.Age)
	assert.Equal(t, 500.50, draft.DeductibleAmount)
	assert.Equal(t, 7, draft.DamageSeverityScore)
	assert.True(t, draft.PolicyExpiredFlag)
	assert.False(t, draft.AtFaultFlag)
}

func TestCoerce_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value interface{}
	}{
		{"non-numeric age", "age", "thirty-five"},
		{"fractional count", "num_witnesses", 2.5},
		{"boolean yes literal", "at_fault_flag", "yes"},
		{"boolean number", "policy_expired_flag", 1.0},
		{"non-numeric amount", "repair_amount", "a lot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			raw[tt.field] = tt.value

			draft, fe := Coerce(raw)
			assert.Nil(t, draft)
			require.False(t, fe.Empty())
			assert.Contains(t, fe, tt.field)
		})
	}
}

func TestCoerce_MissingFieldsDeferToValidate(t *testing.T) {
	draft, fe := Coerce(map[string]interface{}{"ic_number": "900101015432"})
	require.True(t, fe.Empty())

	ve := Validate(draft)
	require.NotNil(t, ve)
	assert.Contains(t, ve, "vehicle_make")
	assert.Contains(t, ve, "claim_description")
	assert.Contains(t, ve, "damage_severity_score")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ClaimDraft)
		field  string
	}{
		{"short ic number", func(d *models.ClaimDraft) { d.ICNumber = "123" }, "ic_number"},
		{"short vehicle make", func(d *models.ClaimDraft) { d.VehicleMake = "T" }, "vehicle_make"},
		{"short description", func(d *models.ClaimDraft) { d.ClaimDescription = "bumped" }, "claim_description"},
		{"short background", func(d *models.ClaimDraft) { d.CustomerBackground = "new" }, "customer_background"},
		{"severity below range", func(d *models.ClaimDraft) { d.DamageSeverityScore = 0 }, "damage_severity_score"},
		{"severity above range", func(d *models.ClaimDraft) { d.DamageSeverityScore = 11 }, "damage_severity_score"},
		{"negative age", func(d *models.ClaimDraft) { d.Age = -1 }, "age"},
		{"negative repair amount", func(d *models.ClaimDraft) { d.RepairAmount = -100 }, "repair_amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, fe := Coerce(validRaw())
			require.True(t, fe.Empty())
			tt.mutate(draft)

			ve := Validate(draft)
			require.NotNil(t, ve)
			assert.Contains(t, ve, tt.field)
		})
	}

	t.Run("valid draft passes", func(t *testing.T) {
		draft, fe := Coerce(validRaw())
		require.True(t, fe.Empty())
		assert.Nil(t, Validate(draft))
	})
}

func TestCheckDataFormat_AggregatesViolations(t *testing.T) {
	draft, fe := Coerce(validRaw())
	require.True(t, fe.Empty())
	require.NoError(t, CheckDataFormat(draft))

	draft.ICNumber = "123"
	draft.DamageSeverityScore = 15
	draft.ClaimDescription = "short"

	err := CheckDataFormat(draft)
	require.Error(t, err)
	assert.True(t, commonerrors.IsValidation(err))

	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Contains(t, stdErr.Details, "ic_number")
	assert.Contains(t, stdErr.Details, "damage_severity_score")
	assert.Contains(t, stdErr.Details, "claim_description")
}
