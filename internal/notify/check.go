package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

// SentLog remembers delivered reminders so that a reminder is sent once
// per subscription, due date and lead time.
type SentLog interface {
	ReminderSent(ctx context.Context, subID int64, due model.Date, daysBefore int) (bool, error)
	MarkReminderSent(ctx context.Context, subID int64, due model.Date, daysBefore int) error
}

// CheckResult summarizes one reminder pass.
type CheckResult struct {
	Checked int        `json:"checked"`
	Sent    []Reminder `json:"sent"`
	Skipped int        `json:"skipped"`
	Failed  int        `json:"failed"`
}

// Check sends reminders for subs due in one of daysBefore days. log may be
// nil, in which case nothing is deduplicated. Delivery failures are logged
// and counted; the joined error is returned after every reminder has been
// attempted.
func Check(ctx context.Context, subs []model.Subscription, today model.Date, daysBefore []int, n Notifier, log SentLog) (CheckResult, error) {
	res := CheckResult{Checked: len(subs), Sent: []Reminder{}}
	var errs []error

	for _, r := range DueReminders(subs, today, daysBefore) {
		s := r.Subscription
		if log != nil {
			sent, err := log.ReminderSent(ctx, s.ID, s.NextDueDate, r.DaysUntilDue)
			if err != nil {
				errs = append(errs, err)
				res.Failed++
				continue
			}
			if sent {
				res.Skipped++
				continue
			}
		}

		if err := n.Send(ctx, FormatReminder(r)); err != nil {
			slog.Error("reminder delivery failed", "subscription", s.Name, "error", err)
			errs = append(errs, err)
			res.Failed++
			continue
		}
		slog.Info("reminder sent", "subscription", s.Name, "days_until_due", r.DaysUntilDue)
		res.Sent = append(res.Sent, r)

		if log != nil {
			if err := log.MarkReminderSent(ctx, s.ID, s.NextDueDate, r.DaysUntilDue); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return res, errors.Join(errs...)
}
