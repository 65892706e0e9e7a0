package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"

	"boxoffice/internal/seats"
	"boxoffice/internal/shared/config"
	"boxoffice/pkg/logger"
)

// HoldStore is the part of the seat hold store the keeper needs; *seats.HoldStore implements it
type HoldStore interface {
	Hold(ctx context.Context, eventID, seatID, userID string) error
	Extend(ctx context.Context, eventID, seatID, userID string, ttl time.Duration) error
}

// HoldKeeper consumes the hand-off stream and keeps every handed-off seat held by its buyer
// for the checkout window, so the seats do not return to the storefront mid-payment.
type HoldKeeper struct {
	group   sarama.ConsumerGroup
	topics  []string
	holds   HoldStore
	window  time.Duration
	retries int
	backoff time.Duration
	now     func() time.Time
	logger  *logger.Logger
}

// NewKafkaHoldKeeper joins the configured consumer group
func NewKafkaHoldKeeper(cfg config.KafkaConfig, holds HoldStore, log *logger.Logger) (*HoldKeeper, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.ClientID

	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	saramaConfig.Consumer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}
	return NewHoldKeeper(group, []string{cfg.HandOffTopic}, holds, cfg.CheckoutHoldTTL, log), nil
}

func NewHoldKeeper(group sarama.ConsumerGroup, topics []string, holds HoldStore, window time.Duration, log *logger.Logger) *HoldKeeper {
	if log == nil {
		log = logger.GetDefault()
	}
	return &HoldKeeper{
		group:   group,
		topics:  topics,
		holds:   holds,
		window:  window,
		retries: 3,
		backoff: 200 * time.Millisecond,
		now:     time.Now,
		logger:  log,
	}
}

// Run consumes until ctx is done, then closes the group
func (k *HoldKeeper) Run(ctx context.Context) error {
	go func() {
		for err := range k.group.Errors() {
			k.logger.Warn("hold keeper consumer error", "error", err)
		}
	}()

	k.logger.Info("hold keeper started", "topics", k.topics, "window", k.window)
	for ctx.Err() == nil {
		if err := k.group.Consume(ctx, k.topics, k); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				break
			}
			k.logger.Warn("hold keeper consume failed", "error", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
		}
	}

	if err := k.group.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	k.logger.Info("hold keeper stopped")
	return nil
}

func (k *HoldKeeper) Setup(sarama.ConsumerGroupSession) error { return nil }
func (k *HoldKeeper) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (k *HoldKeeper) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := k.process(session.Context(), message); err != nil {
				k.logger.Warn("hand-off not kept",
					"partition", message.Partition,
					"offset", message.Offset,
					"error", err,
				)
			}
			// a hand-off that cannot be kept now never can; it is not redelivered
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (k *HoldKeeper) process(ctx context.Context, message *sarama.ConsumerMessage) error {
	var handOff HandOff
	if err := json.Unmarshal(message.Value, &handOff); err != nil {
		return fmt.Errorf("failed to unmarshal hand-off: %w", err)
	}

	remaining := k.window - k.now().Sub(handOff.CreatedAt)
	if remaining <= 0 {
		k.logger.DebugContext(ctx, "hand-off past its checkout window", "handoff_id", handOff.ID)
		return nil
	}

	var lost []string
	for _, seat := range handOff.Seats {
		err := k.keep(ctx, &handOff, seat.ID, remaining)
		switch {
		case errors.Is(err, seats.ErrSeatTaken), errors.Is(err, seats.ErrNotHolder):
			lost = append(lost, seat.ID)
		case err != nil:
			return fmt.Errorf("failed to keep seat %s of hand-off %s: %w", seat.ID, handOff.ID, err)
		}
	}
	if len(lost) > 0 {
		k.logger.WarnContext(ctx, "hand-off seats held by another shopper",
			"handoff_id", handOff.ID,
			"event_id", handOff.EventID,
			"seats", lost,
		)
	}
	return nil
}

// keep claims the seat for the buyer (refreshing an existing hold) and stretches it to ttl
func (k *HoldKeeper) keep(ctx context.Context, handOff *HandOff, seatID string, ttl time.Duration) error {
	var err error
	for attempt := 0; attempt <= k.retries; attempt++ {
		if err = k.holds.Hold(ctx, handOff.EventID, seatID, handOff.UserID); err == nil {
			err = k.holds.Extend(ctx, handOff.EventID, seatID, handOff.UserID, ttl)
		}
		if err == nil || errors.Is(err, seats.ErrSeatTaken) || errors.Is(err, seats.ErrNotHolder) {
			return err
		}

		select {
		case <-time.After(k.backoff * time.Duration(1<<attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
