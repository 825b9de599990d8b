// Package notify sends best-effort decision notifications when a stored claim
// already carries a decision. Delivery failures are logged and never surfaced
// to the caller that created the claim.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	awsclients "claims-gateway/internal/common/aws"
	"claims-gateway/internal/common/config"
	commonerrors "claims-gateway/internal/common/errors"
	"claims-gateway/internal/common/logger"
	"claims-gateway/internal/models"
)

// EmailSender is the slice of the SES client the notifier needs.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSSender is the slice of the SNS client the notifier needs.
type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Notifier struct {
	cfg    config.NotificationConfig
	email  EmailSender
	sms    SMSSender
	logger logger.Logger
}

// New builds a notifier from configuration, constructing only the AWS clients
// the enabled channels need.
func New(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*Notifier, error) {
	n := &Notifier{
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "notifier"}),
	}

	if cfg.Email.Enabled {
		client, err := awsclients.NewSESClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("create ses client: %w", err)
		}
		n.email = client
	}
	if cfg.SMS.Enabled {
		client, err := awsclients.NewSNSClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("create sns client: %w", err)
		}
		n.sms = client
	}
	return n, nil
}

// NewWithClients wires explicit senders. Used by tests.
func NewWithClients(cfg config.NotificationConfig, email EmailSender, sms SMSSender, log logger.Logger) *Notifier {
	return &Notifier{
		cfg:    cfg,
		email:  email,
		sms:    sms,
		logger: log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

// ClaimCreated sends decision notifications for a freshly stored claim. Claims
// without a decision yet are skipped.
func (n *Notifier) ClaimCreated(ctx context.Context, claim *models.Claim) {
	status := claim.Status()
	if status != models.StatusApproved && status != models.StatusRejected {
		return
	}

	if n.cfg.Email.Enabled && n.email != nil {
		if err := n.sendEmail(ctx, claim, status); err != nil {
			n.logger.Warn("email notification failed", map[string]interface{}{
				"claimId": claim.ID.String(),
				"error":   err.Error(),
			})
		}
	}
	if n.cfg.SMS.Enabled && n.sms != nil {
		if err := n.sendSMS(ctx, claim, status); err != nil {
			n.logger.Warn("sms notification failed", map[string]interface{}{
				"claimId": claim.ID.String(),
				"error":   err.Error(),
			})
		}
	}
}

func (n *Notifier) sendEmail(ctx context.Context, claim *models.Claim, status models.ClaimStatus) error {
	subject := fmt.Sprintf("Claim %s decision: %s", claim.ID, status)
	body := decisionMessage(claim, status)

	_, err := n.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.cfg.Email.FromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{n.cfg.Email.ToEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return commonerrors.NewNotificationSendFailedError("email", err)
	}
	return nil
}

func (n *Notifier) sendSMS(ctx context.Context, claim *models.Claim, status models.ClaimStatus) error {
	_, err := n.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(n.cfg.SMS.PhoneNumber),
		Message:     aws.String(decisionMessage(claim, status)),
	})
	if err != nil {
		return commonerrors.NewNotificationSendFailedError("sms", err)
	}
	return nil
}

func decisionMessage(claim *models.Claim, status models.ClaimStatus) string {
	if status == models.StatusApproved {
		return fmt.Sprintf("Your claim %s has been approved. Repair amount %.2f is covered under your policy.", claim.ID, claim.RepairAmount)
	}
	return fmt.Sprintf("Your claim %s was not approved because %s.", claim.ID, claim.RejectionReason())
}
