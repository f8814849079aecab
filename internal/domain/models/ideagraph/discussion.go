package ideagraph

import "time"

// Discussion scopes one idea graph. Each discussion owns exactly one live root idea.
type Discussion struct {
	ID        string    `json:"id" db:"id"`
	Slug      string    `json:"slug" db:"slug"`
	Title     string    `json:"title" db:"title"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Open      bool      `json:"open" db:"open"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
