// internal/models/claim.go
package models

import (
	"fmt"
	"strconv"
	"time"
)

// ClaimStatus is the derived lifecycle state of a claim. The stored field on
// the wire is approval_flag; a false flag only means Rejected when a concrete
// rejection reason flag is also set, otherwise the claim is still in review.
type ClaimStatus string

const (
	StatusSubmitted   ClaimStatus = "submitted"
	StatusUnderReview ClaimStatus = "under_review"
	StatusApproved    ClaimStatus = "approved"
	StatusRejected    ClaimStatus = "rejected"
)

// ClaimID accepts both numeric and string identifiers on the wire. The REST
// backend hands out integers, the table store hands out strings.
type ClaimID string

func (id ClaimID) String() string { return string(id) }

func (id *ClaimID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*id = ""
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("invalid claim id %s: %w", s, err)
		}
		*id = ClaimID(unquoted)
		return nil
	}
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return fmt.Errorf("invalid claim id %s", s)
	}
	*id = ClaimID(s)
	return nil
}

func (id ClaimID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(id))), nil
}

// Claim is a single insurance claim record.
type Claim struct {
	ID                        ClaimID   `json:"id"`
	ICNumber                  string    `json:"ic_number"`
	Age                       int       `json:"age"`
	MonthsAsCustomer          int       `json:"months_as_customer"`
	VehicleAgeYears           int       `json:"vehicle_age_years"`
	VehicleMake               string    `json:"vehicle_make"`
	PlateNumber               string    `json:"plate_number,omitempty"`
	PolicyExpiredFlag         bool      `json:"policy_expired_flag"`
	DeductibleAmount          float64   `json:"deductible_amount"`
	MarketValue               float64   `json:"market_value"`
	DamageSeverityScore       int       `json:"damage_severity_score"`
	RepairAmount              float64   `json:"repair_amount"`
	AtFaultFlag               bool      `json:"at_fault_flag"`
	TimeToReportDays          int       `json:"time_to_report_days"`
	ClaimReportedToPoliceFlag bool      `json:"claim_reported_to_police_flag"`
	LicenseTypeMissingFlag    bool      `json:"license_type_missing_flag"`
	NumThirdParties           int       `json:"num_third_parties"`
	NumWitnesses              int       `json:"num_witnesses"`
	ApprovalFlag              bool      `json:"approval_flag"`
	CoverageAmount            float64   `json:"coverage_amount"`
	ClaimDescription          string    `json:"claim_description"`
	CustomerBackground        string    `json:"customer_background"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

// Status derives the lifecycle state from the stored flags.
func (c *Claim) Status() ClaimStatus {
	if c.ID == "" {
		return StatusSubmitted
	}
	if c.ApprovalFlag {
		return StatusApproved
	}
	if c.PolicyExpiredFlag || c.AtFaultFlag || c.LicenseTypeMissingFlag {
		return StatusRejected
	}
	return StatusUnderReview
}

// RejectionReason names the concrete rejection ground, or "pending review"
// when no specific flag explains the missing approval.
func (c *Claim) RejectionReason() string {
	switch {
	case c.ApprovalFlag:
		return ""
	case c.PolicyExpiredFlag:
		return "the policy had expired at the time of the incident"
	case c.AtFaultFlag:
		return "the policyholder was determined to be at fault"
	case c.LicenseTypeMissingFlag:
		return "required license documentation is missing"
	default:
		return "the claim is still pending review"
	}
}

// ClaimDraft is a claim without the store-assigned fields. It is what the
// submission flow produces after coercion and validation.
type ClaimDraft struct {
	ICNumber                  string  `json:"ic_number"`
	Age                       int     `json:"age"`
	MonthsAsCustomer          int     `json:"months_as_customer"`
	VehicleAgeYears           int     `json:"vehicle_age_years"`
	VehicleMake               string  `json:"vehicle_make"`
	PlateNumber               string  `json:"plate_number,omitempty"`
	PolicyExpiredFlag         bool    `json:"policy_expired_flag"`
	DeductibleAmount          float64 `json:"deductible_amount"`
	MarketValue               float64 `json:"market_value"`
	DamageSeverityScore       int     `json:"damage_severity_score"`
	RepairAmount              float64 `json:"repair_amount"`
	AtFaultFlag               bool    `json:"at_fault_flag"`
	TimeToReportDays          int     `json:"time_to_report_days"`
	ClaimReportedToPoliceFlag bool    `json:"claim_reported_to_police_flag"`
	LicenseTypeMissingFlag    bool    `json:"license_type_missing_flag"`
	NumThirdParties           int     `json:"num_third_parties"`
	NumWitnesses              int     `json:"num_witnesses"`
	ApprovalFlag              bool    `json:"approval_flag"`
	CoverageAmount            float64 `json:"coverage_amount"`
	ClaimDescription          string  `json:"claim_description"`
	CustomerBackground        string  `json:"customer_background"`
}

// ToClaim lifts a draft into a Claim with no identity yet.
func (d *ClaimDraft) ToClaim() *Claim {
	return &Claim{
		ICNumber:                  d.ICNumber,
		Age:                       d.Age,
		MonthsAsCustomer:          d.MonthsAsCustomer,
		VehicleAgeYears:           d.VehicleAgeYears,
		VehicleMake:               d.VehicleMake,
		PlateNumber:               d.PlateNumber,
		PolicyExpiredFlag:         d.PolicyExpiredFlag,
		DeductibleAmount:          d.DeductibleAmount,
		MarketValue:               d.MarketValue,
		DamageSeverityScore:       d.DamageSeverityScore,
		RepairAmount:              d.RepairAmount,
		AtFaultFlag:               d.AtFaultFlag,
		TimeToReportDays:          d.TimeToReportDays,
		ClaimReportedToPoliceFlag: d.ClaimReportedToPoliceFlag,
		LicenseTypeMissingFlag:    d.LicenseTypeMissingFlag,
		NumThirdParties:           d.NumThirdParties,
		NumWitnesses:              d.NumWitnesses,
		ApprovalFlag:              d.ApprovalFlag,
		CoverageAmount:            d.CoverageAmount,
		ClaimDescription:          d.ClaimDescription,
		CustomerBackground:        d.CustomerBackground,
	}
}

// ClaimPage is one page of a claims listing.
type ClaimPage struct {
	Items       []Claim `json:"items"`
	Count       int     `json:"count"`
	Page        int     `json:"page"`
	PageSize    int     `json:"page_size"`
	HasNext     bool    `json:"has_next"`
	HasPrevious bool    `json:"has_previous"`
}

// PageSize is the fixed listing page size shared by every backend.
const PageSize = 10

// NewClaimPage computes the pagination envelope for a page of items.
func NewClaimPage(items []Claim, page, totalCount int) *ClaimPage {
	return &ClaimPage{
		Items:       items,
		Count:       totalCount,
		Page:        page,
		PageSize:    PageSize,
		HasNext:     (page-1)*PageSize+PageSize < totalCount,
		HasPrevious: page > 1,
	}
}
