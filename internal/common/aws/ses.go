// Package aws holds the thin AWS SDK wrappers behind the claim decision
// notification channels.
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
)

// SESClient sends claim decision email through Amazon SES.
type SESClient struct {
	client *ses.Client
}

// NewSESClient builds an SES client for the given region using the default
// credential chain.
func NewSESClient(ctx context.Context, region string) (*SESClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SESClient{client: ses.NewFromConfig(cfg)}, nil
}

// SendEmail makes one delivery attempt. Notifications are best-effort, so the
// caller decides whether a failure matters.
func (s *SESClient) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	return s.client.SendEmail(ctx, input)
}
