// Package chat resolves support-assistant replies from free-text messages and
// optional claim context.
package chat

import (
	"context"
	"fmt"
	"strings"

	"claims-gateway/internal/common/logger"
	"claims-gateway/internal/common/metrics"
	"claims-gateway/internal/models"
)

// FallbackReply is appended when resolution fails. It is fixed so the caller
// can render it without retrying.
const FallbackReply = "I'm sorry, I wasn't able to process that just now. Please try again in a moment."

// ClaimFetcher looks up a claim for claim-scoped replies. The data-access
// service satisfies it.
type ClaimFetcher interface {
	GetByID(ctx context.Context, id string) (*models.Claim, error)
}

// Searcher answers free-text questions that miss every canned topic. Optional.
type Searcher interface {
	Answer(ctx context.Context, query string) (string, error)
}

type Resolver struct {
	claims   ClaimFetcher
	searcher Searcher
	botName  string
	logger   logger.Logger
}

type ResolverOption func(*Resolver)

// WithSearcher attaches a free-text answer source consulted before the
// generic fallback reply.
func WithSearcher(s Searcher) ResolverOption {
	return func(r *Resolver) { r.searcher = s }
}

func WithBotName(name string) ResolverOption {
	return func(r *Resolver) { r.botName = name }
}

func NewResolver(claims ClaimFetcher, log logger.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		claims:  claims,
		botName: "MyClaim AI",
		logger:  log.WithFields(map[string]interface{}{"component": "chat-resolver"}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve produces a reply for a user message. With a claim id the reply is
// scoped to that claim's state; without one the message is matched against
// known topics.
func (r *Resolver) Resolve(ctx context.Context, claimID, message string) (string, error) {
	lowered := strings.ToLower(strings.TrimSpace(message))

	if claimID == "" {
		reply := r.resolveTopic(ctx, lowered)
		metrics.ChatResolutions.WithLabelValues("topic").Inc()
		return reply, nil
	}

	claim, err := r.claims.GetByID(ctx, claimID)
	if err != nil {
		metrics.ChatResolutions.WithLabelValues("failure").Inc()
		r.logger.Warn("claim lookup failed during chat resolution", map[string]interface{}{
			"claimId": claimID,
			"error":   err.Error(),
		})
		return "", err
	}

	metrics.ChatResolutions.WithLabelValues("claim_scoped").Inc()
	return r.resolveForClaim(claim, lowered), nil
}

// ==========================
// Topic matching
// ==========================

var rejectionKeywords = []string{"why", "rejected", "not approved", "declined"}

func (r *Resolver) resolveTopic(ctx context.Context, message string) string {
	switch {
	case message == "" || containsWord(message, "hello", "hi", "hey"):
		return fmt.Sprintf("Hello! I'm %s. You can ask me about your claim status, repairs, required documents, or how the claims process works.", r.botName)
	case containsAny(message, "status", "progress"):
		return "To check your claim status, open the claim from your dashboard. Approved claims show an approval notice; claims still in review show the review stage."
	case containsAny(message, "repair", "workshop", "panel"):
		return "Repairs can be done at any of our panel workshops. Once your claim is approved, the workshop bills us directly up to your coverage amount, less your deductible."
	case containsAny(message, "document", "paperwork", "upload"):
		return "You'll need your identification document, vehicle registration, the police report if one was filed, and photos of the damage."
	case containsAny(message, "process", "how long", "how does", "steps"):
		return "After submission, your claim goes through document verification, damage assessment, and a coverage decision. Most claims are decided within five business days."
	}

	if r.searcher != nil {
		if answer, err := r.searcher.Answer(ctx, message); err == nil && answer != "" {
			return answer
		} else if err != nil {
			r.logger.Warn("assistant search failed, using generic reply", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return "I'm not sure I understood that. Could you ask about your claim status, repairs, documents, or the claims process?"
}

func (r *Resolver) resolveForClaim(claim *models.Claim, message string) string {
	if containsAny(message, rejectionKeywords...) && !claim.ApprovalFlag {
		return fmt.Sprintf("Your claim %s was not approved because %s.", claim.ID, claim.RejectionReason())
	}

	switch claim.Status() {
	case models.StatusApproved:
		return fmt.Sprintf("Good news — claim %s has been approved. The repair amount of %.2f is covered under your policy.", claim.ID, claim.RepairAmount)
	case models.StatusRejected:
		return fmt.Sprintf("Claim %s was not approved. Ask me \"why was it rejected\" for the specific reason.", claim.ID)
	default:
		return fmt.Sprintf("Claim %s is currently under review. I'll be able to share a decision as soon as one is made.", claim.ID)
	}
}

func containsAny(message string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(message, kw) {
			return true
		}
	}
	return false
}

// containsWord matches whole words only, so "hi" does not fire inside "which".
func containsWord(message string, keywords ...string) bool {
	words := strings.FieldsFunc(message, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	for _, word := range words {
		for _, kw := range keywords {
			if word == kw {
				return true
			}
		}
	}
	return false
}
