// Package backend talks to the conversion service: one endpoint describes a
// unit, the other converts a value between two units.
package backend

import "context"

// API is the conversion backend of one page.
type API interface {
	// Info describes the unit with the given backend identifier.
	Info(ctx context.Context, unitID string) (*UnitInfo, error)
	// Convert converts value from one unit to another.
	Convert(ctx context.Context, fromID, toID, value string) (*Conversion, error)
}
