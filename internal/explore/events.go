package explore

// #region event
// EventType names a state change.
type EventType string

const (
	EventInit        EventType = "init"
	EventLoading     EventType = "loading"
	EventClustered   EventType = "clustered"
	EventStale       EventType = "stale"
	EventDegraded    EventType = "degraded"
	EventPage        EventType = "page"
	EventLike        EventType = "like"
	EventFocus       EventType = "focus"
	EventAssociation EventType = "association"
)

// Event is delivered to subscribers after the change is applied.
type Event struct {
	Type       EventType `json:"type"`
	Generation uint64    `json:"generation"`
	Page       int       `json:"page"`
	Message    string    `json:"message,omitempty"`
}

// #endregion event

// #region subscribe
// Subscribe returns a channel of state events and a cancel function.
// Delivery never blocks the store: a full channel drops the event.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once bool
	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if once {
			return
		}
		once = true
		delete(s.subs, id)
		close(ch)
	}
	return ch, cancel
}

func (s *Store) emit(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// #endregion subscribe
