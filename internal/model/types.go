package model

import "time"

// EventKind distinguishes the two kinds of caregiving events in the ledger.
type EventKind string

const (
	KindFeed   EventKind = "FEED"
	KindDiaper EventKind = "DIAPER"
)

// VolumeUnit is the unit a feed amount was entered in.
type VolumeUnit string

const (
	UnitOunces      VolumeUnit = "oz"
	UnitMilliliters VolumeUnit = "ml"
)

// DiaperContents records what a diaper change contained.
type DiaperContents string

const (
	ContentsPee  DiaperContents = "Pee"
	ContentsPoop DiaperContents = "Poop"
	ContentsBoth DiaperContents = "Both"
)

// FeedDetail is the payload carried by FEED events.
type FeedDetail struct {
	Amount float64    `json:"amount"`
	Unit   VolumeUnit `json:"unit"`
}

// DiaperDetail is the payload carried by DIAPER events.
type DiaperDetail struct {
	Contents DiaperContents `json:"contents"`
}

// Event is one logged caregiving occurrence. Exactly one of Feed or Diaper
// is set and it must agree with Kind; Kind is immutable after creation.
// OccurredAt is caregiver-editable and may be backdated, so insertion order
// and OccurredAt order are allowed to diverge.
type Event struct {
	ID         string        `json:"id"`
	Kind       EventKind     `json:"kind"`
	Feed       *FeedDetail   `json:"feed,omitempty"`
	Diaper     *DiaperDetail `json:"diaper,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// Milestone is a one-time developmental marker. AgeAtOccurrence is a
// snapshot computed from the birth date at insert time and stored verbatim;
// it is never recomputed, even if the birth date setting later changes.
type Milestone struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	OccurredAt      time.Time `json:"occurredAt"`
	AgeAtOccurrence string    `json:"ageAtOccurrence"`
}

// LastFeedState is the single replicated scalar carried by the sync channel.
// The ledger on the logging device stays the source of truth; every other
// surface holds only a cached copy of this value.
type LastFeedState struct {
	Timestamp time.Time `json:"timestamp"`
	// SyncTime records when the value was published. Display only; it plays
	// no part in conflict resolution.
	SyncTime time.Time `json:"syncTime"`
}

// ListEventsRequest captures filters used when listing ledger events.
type ListEventsRequest struct {
	Kind   *EventKind
	Before *time.Time
	After  *time.Time
	Limit  int
}
