// Package backup exports the event ledger to CSV and restores it again.
// Import is strictly parse-then-replace: the whole file must parse and
// validate before a single existing row is touched.
package backup

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/nurturefox/trackd/internal/model"
	"github.com/nurturefox/trackd/internal/store"
)

// Header is the first CSV row of every export.
var Header = []string{"occurred_at", "kind", "detail", "quantity"}

// Export writes every ledger event to w as CSV, one row per event in the
// store's listing order (descending OccurredAt).
func Export(ctx context.Context, s store.Store, w io.Writer) error {
	evs, err := s.Events().List(ctx, model.ListEventsRequest{})
	if err != nil {
		return errors.Wrap(err, "list events for export")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, e := range evs {
		row := []string{
			e.OccurredAt.UTC().Format(time.RFC3339),
			string(e.Kind),
			e.Detail(),
			strconv.FormatFloat(e.Quantity(), 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "write row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush export")
}

// Parse reads a full export and rebuilds the tagged events. Any malformed
// row fails the whole parse; nothing is partially accepted.
func Parse(r io.Reader) ([]*model.Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	first, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Wrap(model.ErrValidation, "empty backup file")
	}
	if err != nil {
		return nil, errors.Wrapf(model.ErrValidation, "read header: %v", err)
	}
	if first[0] != Header[0] || first[1] != Header[1] {
		return nil, errors.Wrapf(model.ErrValidation, "unrecognized header %v", first)
	}

	var evs []*model.Event
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(model.ErrValidation, "line %d: %v", line, err)
		}
		e, err := parseRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		evs = append(evs, e)
	}
	return evs, nil
}

func parseRow(row []string) (*model.Event, error) {
	occurredAt, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return nil, errors.Wrapf(model.ErrValidation, "occurred_at: %v", err)
	}
	quantity, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return nil, errors.Wrapf(model.ErrValidation, "quantity: %v", err)
	}

	e := &model.Event{Kind: model.EventKind(row[1]), OccurredAt: occurredAt}
	switch e.Kind {
	case model.KindFeed:
		e.Feed = &model.FeedDetail{Amount: quantity, Unit: model.VolumeUnit(row[2])}
	case model.KindDiaper:
		e.Diaper = &model.DiaperDetail{Contents: model.DiaperContents(row[2])}
	default:
		return nil, errors.Wrapf(model.ErrValidation, "unknown kind %q", row[1])
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Import parses r completely, then replaces the ledger in one transaction.
// A parse or validation failure leaves the existing ledger untouched.
func Import(ctx context.Context, s store.Store, r io.Reader) (int, error) {
	evs, err := Parse(r)
	if err != nil {
		return 0, err
	}
	if err := s.Events().ReplaceAll(ctx, evs); err != nil {
		return 0, errors.Wrap(err, "replace ledger")
	}
	return len(evs), nil
}
