// Package agecalc renders "age since birth" strings for milestone records.
package agecalc

import (
	"fmt"
	"strings"
	"time"
)

// Unknown is rendered when no birth date has been configured.
const Unknown = "Unknown"

// Age returns a calendar year/month/day age string such as "1y 2m 5d" for
// the span between birth and at. Leading zero components are omitted the
// same way the milestone screen renders them: years only when positive,
// months when either months or years are positive, days always.
func Age(birth, at time.Time) string {
	if birth.IsZero() || at.Before(birth) {
		return Unknown
	}

	by, bm, bd := birth.Date()
	ay, am, ad := at.Date()

	years := ay - by
	months := int(am) - int(bm)
	days := ad - bd

	if days < 0 {
		months--
		// borrow the length of the milestone's own month
		days += time.Date(ay, am+1, 0, 0, 0, 0, 0, at.Location()).Day()
	}
	if months < 0 {
		years--
		months += 12
	}

	var b strings.Builder
	if years > 0 {
		fmt.Fprintf(&b, "%dy ", years)
	}
	if months > 0 || years > 0 {
		fmt.Fprintf(&b, "%dm ", months)
	}
	fmt.Fprintf(&b, "%dd", days)
	return b.String()
}
