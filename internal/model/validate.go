package model

import "fmt"

// Validate checks the Event invariants: a kind from the enumeration, exactly
// one payload, the payload matching the kind, and a non-negative feed amount.
func (e *Event) Validate() error {
	switch e.Kind {
	case KindFeed:
		if e.Feed == nil || e.Diaper != nil {
			return fmt.Errorf("%w: FEED event requires a feed payload and no diaper payload", ErrValidation)
		}
		if e.Feed.Amount < 0 {
			return fmt.Errorf("%w: feed amount must be >= 0", ErrValidation)
		}
		if e.Feed.Unit != UnitOunces && e.Feed.Unit != UnitMilliliters {
			return fmt.Errorf("%w: unknown volume unit %q", ErrValidation, e.Feed.Unit)
		}
	case KindDiaper:
		if e.Diaper == nil || e.Feed != nil {
			return fmt.Errorf("%w: DIAPER event requires a diaper payload and no feed payload", ErrValidation)
		}
		switch e.Diaper.Contents {
		case ContentsPee, ContentsPoop, ContentsBoth:
		default:
			return fmt.Errorf("%w: unknown diaper contents %q", ErrValidation, e.Diaper.Contents)
		}
	default:
		return fmt.Errorf("%w: unknown event kind %q", ErrValidation, e.Kind)
	}
	if e.OccurredAt.IsZero() {
		return fmt.Errorf("%w: occurredAt is required", ErrValidation)
	}
	return nil
}

// Detail returns the stored detail tag: the unit for FEED events, the
// contents for DIAPER events. Mirrors the flat column the drivers persist.
func (e *Event) Detail() string {
	switch e.Kind {
	case KindFeed:
		if e.Feed != nil {
			return string(e.Feed.Unit)
		}
	case KindDiaper:
		if e.Diaper != nil {
			return string(e.Diaper.Contents)
		}
	}
	return ""
}

// Quantity returns the feed amount, or 0 for diaper events.
func (e *Event) Quantity() float64 {
	if e.Kind == KindFeed && e.Feed != nil {
		return e.Feed.Amount
	}
	return 0
}
