package app

import (
	availabilityDomain "github.com/felixgeelhaar/clinicq/internal/availability/domain"
	availabilityPersistence "github.com/felixgeelhaar/clinicq/internal/availability/infrastructure/persistence"
	schedulingDomain "github.com/felixgeelhaar/clinicq/internal/scheduling/domain"
	schedulingPersistence "github.com/felixgeelhaar/clinicq/internal/scheduling/infrastructure/persistence"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/clinicq/internal/shared/infrastructure/outbox"
)

// Repositories groups every store behind its domain interface. The same
// implementations serve Postgres and SQLite; the dialect is picked from
// the connection's driver.
type Repositories struct {
	Templates         availabilityDomain.TemplateRepository
	Blocks            availabilityDomain.BlockRepository
	Ledger            schedulingDomain.Ledger
	RescheduleAttempt schedulingDomain.RescheduleAttemptRepository
	Outbox            outbox.Repository
}

// NewRepositories builds the repositories for conn.
func NewRepositories(conn database.Connection) Repositories {
	return Repositories{
		Templates:         availabilityPersistence.NewTemplateRepository(conn),
		Blocks:            availabilityPersistence.NewBlockRepository(conn),
		Ledger:            schedulingPersistence.NewLedger(conn),
		RescheduleAttempt: schedulingPersistence.NewRescheduleAttemptRepository(conn),
		Outbox:            outbox.NewSQLRepository(conn),
	}
}
