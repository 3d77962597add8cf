package model

import "time"

// Project groups tasks and is owned by exactly one user
type Project struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	UserID      int64  `json:"user_id"`
	CreatedAt   string `json:"created_at"`
}

// EntityID returns the server-assigned identity
func (p Project) EntityID() int64 {
	return p.ID
}

// Created parses CreatedAt
func (p *Project) Created() time.Time {
	return parseTimestamp(p.CreatedAt)
}

// ProjectCreate is the body of POST /projects/
type ProjectCreate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProjectUpdate is the body of PUT /projects/{id}. Nil fields are left untouched.
type ProjectUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}
