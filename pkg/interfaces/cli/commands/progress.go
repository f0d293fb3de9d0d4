package commands

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"sync"

	"github.com/vsinha/workforce/pkg/application/services/report"
	"github.com/vsinha/workforce/pkg/infrastructure/events"
)

// progressEvents are the planning events reported in verbose mode
var progressEvents = []string{
	events.WeekPlannedEvent,
	events.PlanPersistedEvent,
	events.PlanFailedEvent,
}

// progressPrinter turns planning events into verbose progress lines.
// The event store delivers asynchronously, so events are collected and
// written in stream order by Flush.
type progressPrinter struct {
	mutex  sync.Mutex
	events []events.Event
}

var _ events.EventHandler = (*progressPrinter)(nil)

func (p *progressPrinter) CanHandle(eventType string) bool {
	return slices.Contains(progressEvents, eventType)
}

func (p *progressPrinter) Handle(event events.Event) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Flush writes every event received so far and forgets them
func (p *progressPrinter) Flush(w io.Writer) error {
	p.mutex.Lock()
	received := p.events
	p.events = nil
	p.mutex.Unlock()

	sort.SliceStable(received, func(i, j int) bool {
		return received[i].Version() < received[j].Version()
	})

	for _, event := range received {
		var err error
		switch data := event.Data().(type) {
		case events.WeekPlanned:
			_, err = fmt.Fprintf(w, "Week %d: %s (headcount %d, cost %s)\n",
				data.Week.Week, data.Week.Decision(), data.Week.Headcount, report.FormatMoney(data.Week.Cost))
		case events.PlanPersisted:
			_, err = fmt.Fprintf(w, "Plan saved to: %s\n", data.Destination)
		case events.PlanFailed:
			_, err = fmt.Fprintf(w, "Plan failed during %s: %s\n", data.Stage, data.Reason)
		}
		if err != nil {
			return fmt.Errorf("failed to write progress: %w", err)
		}
	}
	return nil
}
