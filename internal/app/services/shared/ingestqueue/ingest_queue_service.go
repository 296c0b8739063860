package ingestqueue

import (
	"context"
	"sync"

	"labreport-service/internal/app/contracts"
	"labreport-service/internal/app/models"
	"labreport-service/internal/pkg/constvars"
	"labreport-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Service publishes report ingestion events to a durable queue with
// publisher confirms, so a dropped broker connection surfaces as an error
// instead of a silent loss.
type Service struct {
	ch        *amqp.Channel
	log       *zap.Logger
	queueName string
	confirms  chan amqp.Confirmation
	mu        sync.Mutex
}

func NewService(conn *amqp.Connection, log *zap.Logger, queueName string) (contracts.ReportEventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	svc := &Service{
		ch:        ch,
		log:       log,
		queueName: queueName,
		confirms:  ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}

	return svc, nil
}

func (s *Service) PublishReportIngested(ctx context.Context, event *models.ReportIngestedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return exceptions.ErrMessagingPublish(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.ch.PublishWithContext(ctx,
		"",
		s.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  constvars.MIMEApplicationJSON,
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return exceptions.ErrMessagingPublish(err)
	}

	select {
	case confirmation := <-s.confirms:
		if !confirmation.Ack {
			return exceptions.ErrMessagingPublish(nil)
		}
	case <-ctx.Done():
		return exceptions.ErrMessagingPublish(ctx.Err())
	}

	s.log.Debug("Published report ingested event",
		zap.String(constvars.LoggingRequestIDKey, event.RequestID),
		zap.String(constvars.LoggingReportIDKey, event.ReportID),
	)
	return nil
}
