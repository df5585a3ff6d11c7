package bracket

import (
	"time"

	"github.com/google/uuid"
)

// Owner is a league member across seasons.
type Owner struct {
	ID        uuid.UUID `db:"id"`
	ESPNID    string    `db:"espn_id"`
	Name      string    `db:"name"`
	Email     *string   `db:"email"`
	Phone     *string   `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
}

// Team is an owner's entry for a single season.
type Team struct {
	ID         uuid.UUID `db:"id"`
	ESPNTeamID *int      `db:"espn_team_id"`
	OwnerID    uuid.UUID `db:"owner_id"`
	Year       int       `db:"year"`
	Name       string    `db:"name"`
	CreatedAt  time.Time `db:"created_at"`
}
