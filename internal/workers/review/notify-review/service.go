// internal/workers/review/notify-review/service.go
package notifyreview

import (
	"context"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	apperrors "entity-dedup-workers/internal/common/errors"
	"entity-dedup-workers/internal/common/logger"
	"entity-dedup-workers/internal/common/validation"
)

// EmailSender is satisfied by the shared SES client wrapper.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// TopicPublisher is satisfied by the shared SNS client wrapper.
type TopicPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Service struct {
	config *Config
	email  EmailSender
	topic  TopicPublisher
	logger logger.Logger
}

func NewService(config *Config, email EmailSender, topic TopicPublisher, log logger.Logger) *Service {
	return &Service{
		config: config,
		email:  email,
		topic:  topic,
		logger: log,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewValidationFailedError("input cannot be nil")
	}
	if !validation.ValidateEntityType(input.EntityType) {
		return nil, apperrors.NewInvalidEntityTypeError(input.EntityType)
	}
	if len(input.ReviewItemIDs) == 0 {
		return &Output{Sent: false, Count: 0}, nil
	}

	minConf, maxConf := confidenceRange(input.Confidences)
	subject := fmt.Sprintf("Manual review needed: %d %s merge candidates", len(input.ReviewItemIDs), input.EntityType)
	body := s.buildBody(input, minConf, maxConf)

	channels := make([]string, 0, 2)
	var lastChannel string
	var lastErr error

	if s.config.EmailEnabled && s.email != nil {
		if err := s.sendEmail(ctx, subject, body); err != nil {
			lastChannel, lastErr = "email", err
			s.logger.WithError(err).Warn("review email failed", map[string]interface{}{
				"reviewers": len(s.config.Reviewers),
			})
		} else {
			channels = append(channels, "email")
		}
	}

	if s.config.SMSEnabled && s.topic != nil && maxConf >= s.config.SMSMinConfidence {
		if err := s.publish(ctx, subject); err != nil {
			lastChannel, lastErr = "sms", err
			s.logger.WithError(err).Warn("review sms publish failed", map[string]interface{}{
				"topicArn": s.config.TopicARN,
			})
		} else {
			channels = append(channels, "sms")
		}
	}

	if len(channels) == 0 && lastErr != nil {
		return nil, apperrors.NewNotificationSendFailedError(lastChannel, lastErr)
	}

	if len(channels) > 0 {
		s.logger.Info("review notification sent", map[string]interface{}{
			"entityType": input.EntityType,
			"items":      len(input.ReviewItemIDs),
			"channels":   strings.Join(channels, ","),
		})
	}

	return &Output{
		Sent:     len(channels) > 0,
		Channels: channels,
		Count:    len(input.ReviewItemIDs),
	}, nil
}

func (s *Service) sendEmail(ctx context.Context, subject, body string) error {
	_, err := s.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: awssdk.String(s.config.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: s.config.Reviewers,
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(body)},
			},
		},
	})
	return err
}

func (s *Service) publish(ctx context.Context, message string) error {
	_, err := s.topic.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(s.config.TopicARN),
		Message:  awssdk.String(message),
	})
	return err
}

func (s *Service) buildBody(input *Input, minConf, maxConf float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s merge groups are waiting for a manual decision.\n\n", len(input.ReviewItemIDs), input.EntityType)
	if len(input.Confidences) > 0 {
		fmt.Fprintf(&b, "Confidence range: %.2f - %.2f\n\n", minConf, maxConf)
	}
	b.WriteString("Review item ids:\n")
	for _, id := range input.ReviewItemIDs {
		fmt.Fprintf(&b, "  %s\n", id)
	}
	return b.String()
}

func confidenceRange(confidences []float64) (min, max float64) {
	if len(confidences) == 0 {
		return 0, 0
	}
	min, max = confidences[0], confidences[0]
	for _, c := range confidences[1:] {
		if c < min {
			min = c
		}
		if c > max {
			max = c
		}
	}
	return min, max
}
