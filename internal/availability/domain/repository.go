package domain

import (
	"context"

	"github.com/google/uuid"
)

// TemplateRepository stores one template per doctor.
type TemplateRepository interface {
	// Save inserts or replaces the doctor's template.
	Save(ctx context.Context, template *Template) error
	// FindByDoctor returns nil, nil when the doctor has no template.
	FindByDoctor(ctx context.Context, doctorID uuid.UUID) (*Template, error)
}

// BlockRepository stores ad-hoc exclusions.
type BlockRepository interface {
	Save(ctx context.Context, block *Block) error
	// FindByID returns nil, nil when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Block, error)
	// Delete removes the block only if doctorID owns it and reports
	// whether a row went away.
	Delete(ctx context.Context, id, doctorID uuid.UUID) (bool, error)
	// ListByDoctor returns blocks ordered by date then start. A nil date
	// lists every day.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, date *CalendarDate) ([]*Block, error)
}
