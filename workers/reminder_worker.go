package workers

import (
	"context"
	"log"
	"time"

	"guild-review-system/services"

	"github.com/go-co-op/gocron/v2"
)

// StaleTicketReminder periodically looks for tickets that have sat
// unclaimed past the configured threshold and nudges the mentors once
// per ticket. The once-only mark is a conditional update in the store,
// so overlapping runs cannot double-notify.
type StaleTicketReminder struct {
	tickets   *services.TicketService
	notifier  services.Notifier
	staleness time.Duration
	scheduler gocron.Scheduler
}

func NewStaleTicketReminder(tickets *services.TicketService, notifier services.Notifier, staleness time.Duration) *StaleTicketReminder {
	if notifier == nil {
		notifier = services.LogNotifier{}
	}
	return &StaleTicketReminder{
		tickets:   tickets,
		notifier:  notifier,
		staleness: staleness,
	}
}

// Start schedules the sweep every 15 minutes and stops it when ctx ends.
func (w *StaleTicketReminder) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	w.scheduler = sched

	_, err = sched.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(w.sweep),
	)
	if err != nil {
		return err
	}

	sched.Start()
	log.Printf("🔁 Stale ticket reminder running (threshold %s)", w.staleness)

	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			log.Printf("[Reminder] scheduler shutdown: %v", err)
		}
	}()
	return nil
}

func (w *StaleTicketReminder) sweep() {
	stale, err := w.tickets.FindStale(w.staleness)
	if err != nil {
		log.Printf("[Reminder] DB error: %v", err)
		return
	}

	for i := range stale {
		marked, err := w.tickets.MarkReminded(stale[i].ID)
		if err != nil {
			log.Printf("[Reminder] Failed to mark ticket %s: %v", stale[i].ID, err)
			continue
		}
		if marked {
			w.notifier.TicketStale(&stale[i])
		}
	}
}
