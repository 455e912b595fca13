package glance

import (
	"fmt"
	"time"

	"github.com/nurturefox/trackd/internal/model"
)

// Placeholder is shown before any feed state has ever been synced.
const Placeholder = "--"

// Elapsed renders the time since the last feed as a short caregiver-facing
// string. Sub-minute gaps render as "now"; beyond that, minutes, then
// hours with a minute remainder.
func Elapsed(since time.Time, now time.Time) string {
	if since.IsZero() {
		return Placeholder
	}
	d := now.Sub(since)
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return "now"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm ago", m)
	}
	return fmt.Sprintf("%dh %dm ago", h, m)
}

// Render formats a synced state for display. A nil state means nothing
// has ever been published to the slot.
func Render(state *model.LastFeedState, now time.Time) string {
	if state == nil {
		return Placeholder
	}
	return Elapsed(state.Timestamp, now)
}
