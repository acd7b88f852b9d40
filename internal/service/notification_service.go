package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/repair-tracker/internal/config"
	"github.com/spec-kit/repair-tracker/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRepairIntake, n.handleRepairIntake)
	n.dispatcher.Subscribe(events.EventStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventRepairAssigned, n.handleRepairAssigned)
	n.dispatcher.Subscribe(events.EventPriorityChanged, n.handlePriorityChanged)
	n.dispatcher.Subscribe(events.EventPartUsageToggled, n.handlePartUsageToggled)
	n.dispatcher.Subscribe(events.EventRmaSent, n.handleRmaSent)
	n.dispatcher.Subscribe(events.EventStagingCompleted, n.handleStagingCompleted)
}

func (n *NotificationService) handleRepairIntake(ctx context.Context, event events.Event) error {
	n.logger.Info("RepairIntake", zap.String("repair_id", event.RepairID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("RepairStatusChanged", zap.String("repair_id", event.RepairID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleRepairAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("RepairAssigned", zap.String("repair_id", event.RepairID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePriorityChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("RepairPriorityChanged", zap.String("repair_id", event.RepairID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePartUsageToggled(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PartUsageToggledPayload)
	if ok && payload.LowStock {
		n.logger.Warn("PartLowStock",
			zap.String("part", payload.PartName),
			zap.Int("quantity", payload.NewQuantity))
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleRmaSent(ctx context.Context, event events.Event) error {
	n.logger.Info("RepairRmaSent", zap.String("repair_id", event.RepairID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleStagingCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("RepairStagingCompleted", zap.String("repair_id", event.RepairID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("repair_id", event.RepairID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("repair_id", event.RepairID),
		zap.String("event_type", string(event.Type)))
}
