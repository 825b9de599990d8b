// internal/claims/backend.go
package claims

import (
	"context"

	"claims-gateway/internal/models"
)

// Primary is the first-tier backend: a hosted queryable table store. Only the
// operations that participate in the fallback sequence live here.
type Primary interface {
	List(ctx context.Context, page int, search string) (*models.ClaimPage, error)
	GetByID(ctx context.Context, id string) (*models.Claim, error)
	Create(ctx context.Context, draft *models.ClaimDraft) (*models.Claim, error)
}

// Secondary is the REST API fallback tier. The credentialed flag selects
// whether the request carries cookies and the CSRF token header; the
// uncredentialed form exists to route around cross-origin credential
// restrictions.
type Secondary interface {
	List(ctx context.Context, page int, search string, credentialed bool) (*models.ClaimPage, error)
	GetByID(ctx context.Context, id string, credentialed bool) (*models.Claim, error)
	Create(ctx context.Context, draft *models.ClaimDraft, credentialed bool) (*models.Claim, error)

	// Direct pass-through operations, no fallback defined.
	Update(ctx context.Context, id string, claim *models.Claim) (*models.Claim, error)
	Delete(ctx context.Context, id string) error
	FilterByDamageScore(ctx context.Context, minScore, maxScore *float64) ([]models.Claim, error)
	FilterByRepairAmount(ctx context.Context, minAmount, maxAmount *float64) ([]models.Claim, error)
	RagQuery(ctx context.Context, query string) (string, error)
	Health(ctx context.Context) (*models.HealthStatus, error)
}

// Notifier receives best-effort events after a claim has been stored.
type Notifier interface {
	ClaimCreated(ctx context.Context, claim *models.Claim)
}
