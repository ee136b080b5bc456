package notification

import (
	"context"
	"fmt"

	"frontdesk/models"

	"github.com/slack-go/slack"
)

// SlackNotifier posts booking notices and daily summaries to a Slack
// channel.
type SlackNotifier struct {
	api     *slack.Client
	channel string
}

func NewSlackNotifier(token, channel string) (*SlackNotifier, error) {
	if token == "" || channel == "" {
		return nil, fmt.Errorf("slack notifier initialization error: token or channel is empty")
	}
	return &SlackNotifier{
		api:     slack.New(token),
		channel: channel,
	}, nil
}

func (s *SlackNotifier) NotifyBooking(ctx context.Context, notice models.BookingNotice) error {
	var text string
	switch notice.Kind {
	case models.NoticeReminder:
		text = fmt.Sprintf("⏰ Reminder: %s has a %s on %s at %s (appointment %s).",
			notice.CustomerName, notice.Service, notice.Day, notice.Time, notice.AppointmentID)
	default:
		text = fmt.Sprintf("📅 New booking: %s booked a %s on %s at %s, status %s (appointment %s).",
			notice.CustomerName, notice.Service, notice.Day, notice.Time, notice.Status, notice.AppointmentID)
	}

	_, _, err := s.api.PostMessageContext(ctx, s.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("NotifyBooking: failed to post to slack: %w", err)
	}
	return nil
}

func (s *SlackNotifier) NotifySummary(ctx context.Context, text string) error {
	_, _, err := s.api.PostMessageContext(ctx, s.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("NotifySummary: failed to post to slack: %w", err)
	}
	return nil
}
