package clubio

import (
	"context"
	"fmt"
)

// ApplicationPayload is the body submitted when applying to an event
type ApplicationPayload struct {
	Message string `json:"message,omitempty"`
}

// ApplyToEvent submits an application for the given event.
func (c *Client) ApplyToEvent(ctx context.Context, eventID int64, payload ApplicationPayload) Result[Application] {
	opts, err := postJSON(payload)
	if err != nil {
		return Fail[Application](failureMessage(err))
	}
	return request[Application](ctx, c, fmt.Sprintf("/applications/apply_for_event/%d/", eventID), opts)
}

// MyApplications lists the caller's own applications.
func (c *Client) MyApplications(ctx context.Context) Result[[]Application] {
	return request[[]Application](ctx, c, "/applications/view_my_applications/", get())
}

// EventApplications lists the applications received by one event.
func (c *Client) EventApplications(ctx context.Context, eventID int64) Result[[]Application] {
	return request[[]Application](ctx, c, fmt.Sprintf("/applications/get_event_applications/%d/", eventID), get())
}

// AcceptApplication approves a pending application.
func (c *Client) AcceptApplication(ctx context.Context, applicationID int64) Result[Application] {
	opts := requestOptions{method: "POST"}
	return request[Application](ctx, c, fmt.Sprintf("/applications/accept_application/%d/", applicationID), opts)
}

// RejectApplication declines a pending application.
func (c *Client) RejectApplication(ctx context.Context, applicationID int64) Result[Application] {
	opts := requestOptions{method: "POST"}
	return request[Application](ctx, c, fmt.Sprintf("/applications/reject_application/%d/", applicationID), opts)
}
