package tasks

import (
	"encoding/json"
	"time"

	"frontdesk/models"

	"github.com/hibiken/asynq"
)

const TypeBookingNotice = "booking:notice"

// NewBookingNoticeTask wraps a booking notice into an asynq task. A zero
// fireAt enqueues for immediate processing.
func NewBookingNoticeTask(notice models.BookingNotice, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(notice)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingNotice, b)

	var opts []asynq.Option
	if !fireAt.IsZero() {
		opts = append(opts, asynq.ProcessAt(fireAt))
	}
	return task, opts, nil
}

// NoticeEnqueuer queues booking notices for the background worker.
type NoticeEnqueuer struct {
	client        *asynq.Client
	reminderDelay time.Duration
}

func NewNoticeEnqueuer(redisAddr, redisPassword string, redisDB int, reminderDelay time.Duration) *NoticeEnqueuer {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
	return &NoticeEnqueuer{client: client, reminderDelay: reminderDelay}
}

// EnqueueConfirmation queues a confirmation notice for immediate dispatch.
func (e *NoticeEnqueuer) EnqueueConfirmation(notice models.BookingNotice) error {
	notice.Kind = models.NoticeConfirmation
	task, opts, err := NewBookingNoticeTask(notice, time.Time{})
	if err != nil {
		return err
	}
	_, err = e.client.Enqueue(task, opts...)
	return err
}

// EnqueueReminder schedules a reminder notice after the configured delay.
// A zero delay skips the reminder entirely.
func (e *NoticeEnqueuer) EnqueueReminder(notice models.BookingNotice) error {
	if e.reminderDelay <= 0 {
		return nil
	}
	notice.Kind = models.NoticeReminder
	task, opts, err := NewBookingNoticeTask(notice, time.Now().Add(e.reminderDelay))
	if err != nil {
		return err
	}
	_, err = e.client.Enqueue(task, opts...)
	return err
}

// Close releases the underlying queue connection.
func (e *NoticeEnqueuer) Close() error {
	return e.client.Close()
}
