package notify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

// DefaultDaysBefore are the lead times at which reminders go out.
var DefaultDaysBefore = []int{7, 3, 1}

// Reminder is one subscription that is due for a reminder today.
type Reminder struct {
	Subscription model.Subscription `json:"subscription"`
	DaysUntilDue int                `json:"days_until_due"`
}

// DueReminders returns the subscriptions whose next due date is exactly one
// of daysBefore days after today, in snapshot order.
func DueReminders(subs []model.Subscription, today model.Date, daysBefore []int) []Reminder {
	if len(daysBefore) == 0 {
		daysBefore = DefaultDaysBefore
	}
	want := make(map[int]bool, len(daysBefore))
	for _, d := range daysBefore {
		want[d] = true
	}

	var out []Reminder
	for _, s := range subs {
		days := today.DaysUntil(s.NextDueDate)
		if want[days] {
			out = append(out, Reminder{Subscription: s, DaysUntilDue: days})
		}
	}
	return out
}

// FormatReminder renders the message text for r.
func FormatReminder(r Reminder) string {
	s := r.Subscription
	var b strings.Builder
	b.WriteString("🔔 Subscription reminder\n\n")
	fmt.Fprintf(&b, "Service: %s\n", s.Name)
	fmt.Fprintf(&b, "Price: %s %s (%s)\n", strconv.FormatFloat(s.Price, 'f', -1, 64), s.Currency, s.CycleLabel())
	fmt.Fprintf(&b, "Renews on: %s\n", s.NextDueDate)
	fmt.Fprintf(&b, "Days left: %d\n", r.DaysUntilDue)
	if s.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", s.Notes)
	}
	return b.String()
}

// TestMessage is sent by the "telegram test" operation.
const TestMessage = "✅ subs: Telegram notifications are working."
