package game

// EventType names a state change published to subscribers.
type EventType string

const (
	EventRestarted    EventType = "restarted"
	EventMatchLoaded  EventType = "match_loaded"
	EventLoadFailed   EventType = "load_failed"
	EventRolled       EventType = "rolled"
	EventWon          EventType = "won"
	EventReporting    EventType = "reporting"
	EventReported     EventType = "reported"
	EventReportFailed EventType = "report_failed"
)

// Event carries the state right after the change it describes.
type Event struct {
	Type  EventType `json:"type"`
	State State     `json:"state"`
	Roll  *Roll     `json:"roll,omitempty"`
	Err   error     `json:"-"`
}

const defaultSubscriberBuffer = 32

// Subscribe registers a listener for engine events. Slow subscribers miss
// events rather than block the engine; the State on each event is complete,
// so the next delivered event resynchronises them. The returned func
// unsubscribes and closes the channel.
func (e *Engine) Subscribe() (<-chan Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	ch := make(chan Event, defaultSubscriberBuffer)
	e.subs[id] = ch
	return ch, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if sub, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(sub)
		}
	}
}

func (e *Engine) publishLocked(typ EventType, roll *Roll, err error) {
	if len(e.subs) == 0 {
		return
	}
	ev := Event{Type: typ, State: e.snapshotLocked(), Err: err}
	if roll != nil {
		r := *roll
		ev.Roll = &r
	}
	for id, ch := range e.subs {
		select {
		case ch <- ev:
		default:
			e.logger.Warn().Int("subscriber", id).Str("event", string(typ)).Msg("subscriber full, dropping event")
		}
	}
}
