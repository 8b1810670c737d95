package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/frahmantamala/hardware-marketplace/internal/core/events"
	"github.com/frahmantamala/hardware-marketplace/internal/notification"
	"github.com/frahmantamala/hardware-marketplace/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish sample marketplace events to check notification routing and webhook delivery`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample marketplace event",
	Long: `Publish a sample event through the event bus and the notification dispatcher.
Supported types: ` + strings.Join(notification.EventTypes(), ", "),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishSampleEvent(args[0])
	},
}

var (
	eventListingID      int64
	eventClaimID        int64
	eventOwnerDept      string
	eventRequestingDept string
	eventReason         string
)

func publishSampleEvent(eventType string) error {
	if !slices.Contains(notification.EventTypes(), eventType) {
		return fmt.Errorf("unknown event type %q", eventType)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	lg := logger.L()

	bus := events.NewEventBus(lg)
	notifier := newNotifier(cfg.Notification, lg)
	notifier.Subscribe(bus)
	notifier.Start()
	defer notifier.Shutdown()

	var event events.Event
	if slices.Contains(events.ClaimEventTypes, eventType) {
		event = events.NewClaimEvent(eventType, eventClaimID, eventListingID, eventRequestingDept, eventOwnerDept, 0, "", eventReason)
	} else {
		event = events.NewListingEvent(eventType, eventListingID, "SRV-HP-DL360-002", "Sample listing", "Server", eventOwnerDept, "")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	lg.Info("publishing sample event", "event_type", eventType, "event_id", event.EventID())
	if err := bus.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if err := bus.Wait(ctx); err != nil {
		return err
	}
	return notifier.Flush(ctx)
}

func init() {
	publishEventCmd.Flags().Int64Var(&eventListingID, "listing-id", 1, "listing id carried by the event")
	publishEventCmd.Flags().Int64Var(&eventClaimID, "claim-id", 1, "claim id carried by claim events")
	publishEventCmd.Flags().StringVar(&eventOwnerDept, "owner", "IT Infrastructure", "owning department")
	publishEventCmd.Flags().StringVar(&eventRequestingDept, "requester", "Development Team", "requesting department")
	publishEventCmd.Flags().StringVar(&eventReason, "reason", "", "denial reason for claim.denied")

	eventCmd.AddCommand(publishEventCmd)
	rootCmd.AddCommand(eventCmd)
}
