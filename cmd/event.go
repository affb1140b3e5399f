package cmd

import (
	"context"
	"time"

	"github.com/frahmantamala/user-management/internal/core/events"
	"github.com/frahmantamala/user-management/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect the account lifecycle events the services emit`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish an account lifecycle event",
	Long:  `Publish an account event through the audit handler to check how it is logged`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishAccountEvent(args[0])
	},
}

var (
	eventEmail string
	eventActor string
)

func publishAccountEvent(eventType string) {
	lg := logger.LoggerWrapper()

	bus := events.NewEventBus(lg)
	bus.Subscribe(events.Wildcard, events.AuditLogger(lg))

	var ev events.Event
	switch eventType {
	case events.EventTypeAccountDeactivated:
		ev = events.NewAccountDeactivatedEvent(eventEmail, eventActor, time.Now().UTC())
	case events.EventTypeAccountPurged:
		ev = events.NewAccountPurgedEvent(eventEmail, 0)
	default:
		ev = events.NewAccountEvent(eventType, eventEmail, eventActor)
	}

	if err := bus.PublishSync(context.Background(), ev); err != nil {
		lg.Error("failed to publish event", "error", err)
		return
	}
	lg.Info("event published", "event_type", ev.EventType(), "event_id", ev.EventID())
}

func init() {
	publishEventCmd.Flags().StringVar(&eventEmail, "email", "e@mail.com", "Account email carried by the event")
	publishEventCmd.Flags().StringVar(&eventActor, "actor", "", "Email of the acting admin")

	eventCmd.AddCommand(publishEventCmd)
}
