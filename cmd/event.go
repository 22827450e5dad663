package cmd

import (
	"context"
	"time"

	"github.com/smilesniffer/ticketing-backend/internal/core/events"
	"github.com/smilesniffer/ticketing-backend/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus commands",
	Long:  `Inspect the in-process event bus by publishing synthetic payment events`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a synthetic event",
	Long:  `Publish a synthetic payment event to the bus for wiring checks and debugging`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

var eventCheckoutRequestID string

func publishTestEvent(eventType string) {
	lg := logger.LoggerWrapper()

	eventBus := events.NewEventBus(lg)

	eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	var testEvent events.Event
	switch eventType {
	case events.EventTypePaymentCompleted:
		testEvent = events.NewPaymentCompletedEvent(eventCheckoutRequestID, "cli-merchant", "The service request is processed successfully.")
	case events.EventTypePaymentFailed:
		testEvent = events.NewPaymentFailedEvent(eventCheckoutRequestID, "cli-merchant", 1032, "Request cancelled by user")
	default:
		testEvent = events.BaseEvent{
			ID:        "cli-test",
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"source": "cli-command",
			},
		}
	}

	lg.Info("publishing test event", "event_type", eventType, "event_id", testEvent.EventID())

	ctx := context.Background()
	if err := eventBus.Publish(ctx, testEvent); err != nil {
		lg.Error("failed to publish event", "error", err)
		return
	}

	time.Sleep(100 * time.Millisecond)
	lg.Info("test event published successfully")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventCheckoutRequestID, "checkout-request-id", "ws_CO_test", "Checkout request ID to stamp on the synthetic event")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
