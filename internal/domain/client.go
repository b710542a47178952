// Package domain contains entity types without logic, just meta-data.
package domain

import "github.com/google/uuid"

// ClientID identifies one connected socket for its whole lifetime.
type ClientID string

// NewClientID avoids ad-hoc uuid calls in adapters and keeps
// construction obvious.
func NewClientID() ClientID {
	return ClientID(uuid.NewString())
}
