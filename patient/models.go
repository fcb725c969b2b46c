// Package patient holds the minimal patient directory the billing ledger
// consults. Patient management proper lives outside this module; the
// ledger only needs to resolve ids to people.
package patient

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("patient: not found")
	ErrExists   = errors.New("patient: already exists")
)

// Patient identifies the person a bill belongs to.
type Patient struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Directory resolves patient ids. FindByID returns ErrNotFound when the
// id is unknown.
type Directory interface {
	FindByID(ctx context.Context, id string) (*Patient, error)
}
