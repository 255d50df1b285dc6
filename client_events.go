package clubio

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// EventPayload is the body for event creation and updates
type EventPayload struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	Capacity    int    `json:"capacity,omitempty"`
}

// Events lists every visible event.
func (c *Client) Events(ctx context.Context) Result[[]Event] {
	return request[[]Event](ctx, c, "/events/get_event/all/", get())
}

// Event fetches a single event by ID.
func (c *Client) Event(ctx context.Context, eventID int64) Result[Event] {
	return request[Event](ctx, c, fmt.Sprintf("/events/get_event/%d/", eventID), get())
}

// ClubEvents lists the events owned by one club.
func (c *Client) ClubEvents(ctx context.Context, clubID int64) Result[[]Event] {
	opts := get()
	opts.query = url.Values{"club_id": {strconv.FormatInt(clubID, 10)}}
	return request[[]Event](ctx, c, "/events/get_club_events/", opts)
}

// CreateEvent adds a new event owned by the calling club.
func (c *Client) CreateEvent(ctx context.Context, payload EventPayload) Result[Event] {
	opts, err := postJSON(payload)
	if err != nil {
		return Fail[Event](failureMessage(err))
	}
	return request[Event](ctx, c, "/events/add_event/", opts)
}

// UpdateEvent replaces an event's fields.
func (c *Client) UpdateEvent(ctx context.Context, eventID int64, payload EventPayload) Result[Event] {
	opts, err := putJSON(payload)
	if err != nil {
		return Fail[Event](failureMessage(err))
	}
	return request[Event](ctx, c, fmt.Sprintf("/events/update_event/%d/", eventID), opts)
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, eventID int64) Result[map[string]any] {
	return request[map[string]any](ctx, c, fmt.Sprintf("/events/delete_event/%d/", eventID), del())
}
