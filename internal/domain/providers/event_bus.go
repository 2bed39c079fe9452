package providers

import (
	"context"

	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to booking
// events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.BookingEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.BookingEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for booking event streams
const (
	// EventChannelBookingUpdates is the channel carrying every booking event
	EventChannelBookingUpdates = "bookings:updates"

	// EventChannelDatePrefix is the prefix for per-date channels
	EventChannelDatePrefix = "bookings:date:"
)

// GetDateChannel returns the channel name for a specific schedule date
func GetDateChannel(date string) string {
	return EventChannelDatePrefix + date
}
