package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/clinicq/internal/availability/domain"
	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/google/uuid"
)

// BlockDTO is a block as shown to its doctor.
type BlockDTO struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctorId"`
	Date      string    `json:"date"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListBlocksQuery lists the acting doctor's blocks, optionally for one
// date only.
type ListBlocksQuery struct {
	Actor sharedDomain.Actor
	Date  string
}

// ListBlocksHandler lists a doctor's blocks.
type ListBlocksHandler struct {
	blocks domain.BlockRepository
}

// NewListBlocksHandler creates a new list blocks handler.
func NewListBlocksHandler(blocks domain.BlockRepository) *ListBlocksHandler {
	return &ListBlocksHandler{blocks: blocks}
}

func (h *ListBlocksHandler) Handle(ctx context.Context, q ListBlocksQuery) ([]BlockDTO, error) {
	if q.Actor.Role != sharedDomain.RoleDoctor {
		return nil, sharedDomain.ErrForbidden
	}

	var date *domain.CalendarDate
	if q.Date != "" {
		d, err := domain.ParseCalendarDate(q.Date)
		if err != nil {
			return nil, err
		}
		date = &d
	}

	blocks, err := h.blocks.ListByDoctor(ctx, q.Actor.ID, date)
	if err != nil {
		return nil, err
	}

	dtos := make([]BlockDTO, len(blocks))
	for i, b := range blocks {
		dtos[i] = ToBlockDTO(b)
	}
	return dtos, nil
}

// ToBlockDTO flattens a block.
func ToBlockDTO(b *domain.Block) BlockDTO {
	return BlockDTO{
		ID:        b.ID(),
		DoctorID:  b.DoctorID(),
		Date:      b.Date().String(),
		Start:     b.Start().String(),
		End:       b.End().String(),
		Reason:    b.Reason(),
		CreatedAt: b.CreatedAt(),
	}
}
