package models

import "encoding/json"

// Event represents an event as returned by the events endpoint.
type Event struct {
	ID          string      `json:"_id"`
	Title       string      `json:"title"`
	Location    string      `json:"location"`
	StartDate   string      `json:"startDate"`
	EndDate     string      `json:"endDate"`
	GuestPrice  json.Number `json:"guestPrice"`
	MemberPrice json.Number `json:"memberPrice"`
	UserPrice   json.Number `json:"userPrice"`
	MaxCapacity json.Number `json:"maxCapacity"`
}

// EventRef is a booking's event field, which the backend serializes either
// as a bare object id or as an embedded event document.
type EventRef struct {
	ID    string
	Event *Event
}

func (r *EventRef) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	event := &Event{}
	if err := json.Unmarshal(data, event); err != nil {
		return err
	}
	r.Event = event
	r.ID = event.ID
	return nil
}

func (r EventRef) MarshalJSON() ([]byte, error) {
	if r.Event != nil {
		return json.Marshal(r.Event)
	}
	return json.Marshal(r.ID)
}

// Resolve returns the embedded event if present, otherwise looks the id up
// in the given index.
func (r EventRef) Resolve(events map[string]*Event) *Event {
	if r.Event != nil {
		return r.Event
	}
	if r.ID != "" {
		return events[r.ID]
	}
	return nil
}
