package workflow

// EventTicketCreated triggers a triage-and-assignment run for a new ticket.
const EventTicketCreated = "ticket/created"

// Event is the trigger message for a workflow run.
type Event struct {
	Name string    `json:"name"`
	Data EventData `json:"data"`
}

// EventData carries the event payload.
type EventData struct {
	TicketID string `json:"ticketId"`
}
