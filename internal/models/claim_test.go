// internal/models/claim_test.go
package models

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ClaimID
		wantErr bool
	}{
		{"numeric id", `{"id": 17}`, "17", false},
		{"string id", `{"id": "a1b2c3"}`, "a1b2c3", false},
		{"null id", `{"id": null}`, "", false},
		{"non-numeric literal", `{"id": true}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var claim Claim
			err := json.Unmarshal([]byte(tt.input), &claim)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, claim.ID)
		})
	}
}

func TestClaim_Status(t *testing.T) {
	tests := []struct {
		name  string
		claim Claim
		want  ClaimStatus
	}{
		{"no id yet", Claim{}, StatusSubmitted},
		{"approved", Claim{ID: "1", ApprovalFlag: true}, StatusApproved},
		{"rejected by expired policy", Claim{ID: "2", PolicyExpiredFlag: true}, StatusRejected},
		{"rejected by fault", Claim{ID: "3", AtFaultFlag: true}, StatusRejected},
		{"rejected by missing license", Claim{ID: "4", LicenseTypeMissingFlag: true}, StatusRejected},
		{"pending decision", Claim{ID: "5"}, StatusUnderReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.claim.Status())
		})
	}
}

func TestClaim_RejectionReason(t *testing.T) {
	assert.Empty(t, (&Claim{ApprovalFlag: true}).RejectionReason())
	assert.Contains(t, (&Claim{PolicyExpiredFlag: true}).RejectionReason(), "expired")
	assert.Contains(t, (&Claim{AtFaultFlag: true}).RejectionReason(), "at fault")
	assert.Contains(t, (&Claim{LicenseTypeMissingFlag: true}).RejectionReason(), "license")
	assert.Contains(t, (&Claim{}).RejectionReason(), "pending review")
}

func TestNewClaimPage(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		total    int
		wantNext bool
		wantPrev bool
	}{
		{"single partial page", 1, 7, false, false},
		{"exactly one full page", 1, PageSize, false, false},
		{"first of several", 1, 25, true, false},
		{"middle page", 2, 25, true, true},
		{"last page", 3, 25, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewClaimPage(nil, tt.page, tt.total)
			assert.Equal(t, tt.wantNext, page.HasNext)
			assert.Equal(t, tt.wantPrev, page.HasPrevious)
			assert.Equal(t, tt.total, page.Count)
			assert.Equal(t, PageSize, page.PageSize)
		})
	}
}
