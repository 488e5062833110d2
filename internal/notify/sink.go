// internal/notify/sink.go
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/config"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/errors"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/logger"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/models"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Sink delivers a single notification to a resolved contact.
type Sink interface {
	Deliver(ctx context.Context, notification *models.Notification, contact *models.CompanyContact) error
}

// AWSSink delivers notifications by email through SES and, for high-priority
// notifications with a phone number on file, additionally by SMS through SNS.
type AWSSink struct {
	cfg       config.NotificationConfig
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

// NewAWSSink creates the SES/SNS-backed notification sink.
func NewAWSSink(cfg config.NotificationConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *AWSSink {
	return &AWSSink{
		cfg:       cfg,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"component": "notification-sink"}),
	}
}

// Deliver sends the notification over the enabled channels. A disabled
// channel is skipped silently; a send failure on any attempted channel fails
// the delivery.
func (s *AWSSink) Deliver(ctx context.Context, n *models.Notification, contact *models.CompanyContact) error {
	if s.cfg.EmailEnabled && contact.Email != "" {
		if err := s.sendEmail(ctx, n, contact.Email); err != nil {
			return errors.NewNotificationSendFailedError("email", err)
		}
	}

	if s.cfg.SMSEnabled && contact.Phone != "" && n.Priority == "high" {
		if err := s.sendSMS(ctx, n, contact.Phone); err != nil {
			return errors.NewNotificationSendFailedError("sms", err)
		}
	}

	return nil
}

func (s *AWSSink) sendEmail(ctx context.Context, n *models.Notification, to string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.cfg.FromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(n.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(n.Body),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := s.sesClient.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send for notification %s: %w", n.ID, err)
	}

	s.logger.Debug("email sent", map[string]interface{}{
		"notificationId": n.ID,
		"companyId":      n.CompanyID,
		"kind":           n.Kind,
	})
	return nil
}

func (s *AWSSink) sendSMS(ctx context.Context, n *models.Notification, phone string) error {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(fmt.Sprintf("%s: %s", n.Subject, n.Body)),
	}

	if _, err := s.snsClient.Publish(ctx, input); err != nil {
		return fmt.Errorf("sns publish for notification %s: %w", n.ID, err)
	}

	s.logger.Debug("sms sent", map[string]interface{}{
		"notificationId": n.ID,
		"companyId":      n.CompanyID,
	})
	return nil
}
