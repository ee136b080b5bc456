package cron

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"frontdesk/services/notification"
	"frontdesk/services/pipeline"

	"github.com/robfig/cron/v3"
)

// StartSummaryScheduler posts a booking summary to the staff channel on a
// standard 5-field cron expression (minute hour day-of-month month
// day-of-week). Examples: "0 18 * * *" (daily 6pm), "0 18 * * 1-5"
// (weekdays 6pm). An empty schedule disables the scheduler.
func StartSummaryScheduler(schedule string, appts *pipeline.AppointmentStore, notifSvc notification.Service) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		log.Println("Summary scheduler disabled (SUMMARY_SCHEDULE not set)")
		return
	}
	if notifSvc == nil {
		log.Println("Summary scheduler disabled: no notifier configured")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid SUMMARY_SCHEDULE '%s': %v, summary disabled", schedule, err)
		return
	}
	log.Printf("Booking summary scheduled (cron: %s)", schedule)

	go func() {
		for {
			now := time.Now()
			next := sched.Next(now)
			log.Printf("Next booking summary at %s", next.Format("Mon Jan 2 15:04"))

			time.Sleep(next.Sub(now))

			if err := notifSvc.NotifySummary(context.Background(), buildSummary(appts)); err != nil {
				log.Printf("Summary post error: %v", err)
			}
		}
	}()
}

func buildSummary(appts *pipeline.AppointmentStore) string {
	total := appts.Count()
	if total == 0 {
		return "📊 Daily summary: no appointments on the books."
	}

	counts := appts.CountByService()
	services := make([]string, 0, len(counts))
	for svc := range counts {
		services = append(services, svc)
	}
	sort.Strings(services)

	parts := make([]string, 0, len(services))
	for _, svc := range services {
		parts = append(parts, fmt.Sprintf("%s: %d", svc, counts[svc]))
	}
	return fmt.Sprintf("📊 Daily summary: %d appointment(s) on the books (%s).", total, strings.Join(parts, ", "))
}
