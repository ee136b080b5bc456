package notification

import (
	"context"

	"frontdesk/models"
)

// Service defines methods for pushing booking events to the front-desk
// staff channel.
type Service interface {
	NotifyBooking(ctx context.Context, notice models.BookingNotice) error
	NotifySummary(ctx context.Context, text string) error
}
