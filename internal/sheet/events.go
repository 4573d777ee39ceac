package sheet

import (
	"github.com/zjrosen/tabula/internal/datatable"
	"github.com/zjrosen/tabula/internal/pubsub"
)

// RowEvent reports a row change applied by the table. Row is a copy taken
// when the event was published.
type RowEvent struct {
	Index datatable.RowIdx
	Row   Row
}

func (s *Sheet) publish(t pubsub.EventType, idx datatable.RowIdx, row *Row) {
	if s.opts.Events == nil {
		return
	}
	s.opts.Events.Publish(t, RowEvent{Index: idx, Row: row.Clone()})
}
