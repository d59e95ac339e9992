package domain

import (
	"fmt"
	"time"

	sharedDomain "github.com/felixgeelhaar/clinicq/internal/shared/domain"
	"github.com/google/uuid"
)

// DefaultSlotDurationMinutes applies when a doctor has not chosen one.
const DefaultSlotDurationMinutes = 15

// Template is a doctor's recurring weekly hours. Its identity is the
// doctor's ID; each doctor has at most one.
type Template struct {
	sharedDomain.BaseAggregateRoot
	days         map[time.Weekday][]Range
	slotDuration int
}

// NewTemplate creates an empty template with the default slot duration.
func NewTemplate(doctorID uuid.UUID) *Template {
	return &Template{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRootWithID(doctorID),
		days:              map[time.Weekday][]Range{},
		slotDuration:      DefaultSlotDurationMinutes,
	}
}

// RehydrateTemplate restores a stored template without raising events.
func RehydrateTemplate(
	doctorID uuid.UUID,
	days map[time.Weekday][]Range,
	slotDuration int,
	createdAt, updatedAt time.Time,
	version int,
) *Template {
	if days == nil {
		days = map[time.Weekday][]Range{}
	}
	if slotDuration <= 0 {
		slotDuration = DefaultSlotDurationMinutes
	}
	return &Template{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(doctorID, createdAt, updatedAt), version),
		days:         days,
		slotDuration: slotDuration,
	}
}

func (t *Template) DoctorID() uuid.UUID      { return t.ID() }
func (t *Template) SlotDurationMinutes() int { return t.slotDuration }

// Configure applies a partial update. Non-nil days replace the whole
// week; nil keeps it. A positive duration replaces the slot length;
// otherwise the current one stays. Day names are matched
// case-insensitively and non-blank bounds must be HH:mm.
func (t *Template) Configure(days map[string][]Range, slotDuration int) error {
	var parsed map[time.Weekday][]Range
	if days != nil {
		parsed = make(map[time.Weekday][]Range, len(days))
		for name, ranges := range days {
			wd, err := ParseWeekday(name)
			if err != nil {
				return err
			}
			if err := validateRanges(ranges); err != nil {
				return fmt.Errorf("%s: %w", wd, err)
			}
			parsed[wd] = append([]Range(nil), ranges...)
		}
	}

	if parsed != nil {
		t.days = parsed
	}
	if slotDuration > 0 {
		t.slotDuration = slotDuration
	}
	t.Touch()
	t.AddDomainEvent(NewTemplateUpdated(t))
	return nil
}

// SetDay replaces a single weekday's ranges, leaving the others as they are.
func (t *Template) SetDay(day time.Weekday, ranges []Range) error {
	if err := validateRanges(ranges); err != nil {
		return fmt.Errorf("%s: %w", day, err)
	}
	t.days[day] = append([]Range(nil), ranges...)
	t.Touch()
	t.AddDomainEvent(NewTemplateUpdated(t))
	return nil
}

// SetSlotDuration changes the lattice step; non-positive means default.
func (t *Template) SetSlotDuration(minutes int) {
	if minutes <= 0 {
		minutes = DefaultSlotDurationMinutes
	}
	t.slotDuration = minutes
	t.Touch()
	t.AddDomainEvent(NewTemplateUpdated(t))
}

// RangesFor returns the ranges stored for the date's weekday, in order.
func (t *Template) RangesFor(date CalendarDate) []Range {
	return append([]Range(nil), t.days[date.Weekday()]...)
}

// SlotsFor generates the date's slot lattice.
func (t *Template) SlotsFor(date CalendarDate) []string {
	return GenerateSlots(t.RangesFor(date), t.slotDuration)
}

// Days returns a copy of the weekly configuration.
func (t *Template) Days() map[time.Weekday][]Range {
	out := make(map[time.Weekday][]Range, len(t.days))
	for wd, ranges := range t.days {
		out[wd] = append([]Range(nil), ranges...)
	}
	return out
}

// DaysByName keys the configuration by weekday name, the stored form.
func (t *Template) DaysByName() map[string][]Range {
	out := make(map[string][]Range, len(t.days))
	for wd, ranges := range t.days {
		out[wd.String()] = append([]Range(nil), ranges...)
	}
	return out
}

func validateRanges(ranges []Range) error {
	for _, r := range ranges {
		if r.Start != "" {
			if _, err := ParseClockTime(r.Start); err != nil {
				return err
			}
		}
		if r.End != "" {
			if _, err := ParseEndClockTime(r.End); err != nil {
				return err
			}
		}
	}
	return nil
}
