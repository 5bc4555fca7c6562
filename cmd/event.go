package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/KarlovS28/dela/internal/core/events"
	"github.com/KarlovS28/dela/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus debugging commands",
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event to a throwaway bus",
	Long:  `Wires a logging subscriber onto a fresh in-process bus and publishes one event through it. Useful for checking event plumbing without a running server.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

var eventData string

func publishTestEvent(eventType string) {
	lg := logger.LoggerWrapper()
	bus := events.NewEventBus(lg)

	bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("debug subscriber received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	event := events.BaseEvent{
		ID:        fmt.Sprintf("debug-%d", time.Now().Unix()),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": eventData,
			"source":  "event-cli",
		},
	}

	// synchronous publish so the subscriber runs before the process exits
	if err := bus.PublishSync(context.Background(), event); err != nil {
		lg.Error("failed to publish event", "error", err)
		return
	}

	lg.Info("test event delivered", "event_type", eventType, "event_id", event.ID)
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Payload message for the test event")

	eventCmd.AddCommand(publishEventCmd)
	rootCmd.AddCommand(eventCmd)
}
