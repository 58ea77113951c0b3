package domain

import "time"

// Comment is an append-only entry on a ticket thread. Comments are never
// mutated or deleted.
type Comment struct {
	ID          string
	TicketID    string
	AuthorID    string
	AuthorRole  Role
	Content     string
	Attachments []string
	CreatedAt   time.Time
}
