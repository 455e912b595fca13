package localstate

import (
	"database/sql"
	"strconv"
)

// SchemaVersion is bumped on incompatible schema changes. Migration policy
// is destructive fallback: a version mismatch drops and recreates the
// tables. Documented behavior, matching the install-local nature of the
// ledger plus the backup/restore surface.
const SchemaVersion = 1

// EnsureSQLiteSchema creates the ledger tables if they do not exist, and
// applies the destructive fallback when the stored schema version differs.
func EnsureSQLiteSchema(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS SchemaInfo (Version INTEGER NOT NULL);`); err != nil {
		return err
	}

	var version int
	err := db.QueryRow(`SELECT Version FROM SchemaInfo LIMIT 1`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.Exec(`INSERT INTO SchemaInfo (Version) VALUES (?)`, SchemaVersion); err != nil {
			return err
		}
	case err != nil:
		return err
	case version != SchemaVersion:
		// Destructive fallback on version bump.
		for _, stmt := range []string{
			`DROP TABLE IF EXISTS Events;`,
			`DROP TABLE IF EXISTS Milestones;`,
			`UPDATE SchemaInfo SET Version = ` + strconv.Itoa(SchemaVersion) + `;`,
		} {
			if _, err := db.Exec(stmt); err != nil {
				return err
			}
		}
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS Events (
            EventId TEXT PRIMARY KEY,
            Kind TEXT NOT NULL,
            Detail TEXT NOT NULL,
            Quantity REAL NOT NULL DEFAULT 0,
            OccurredAt TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS Events_Kind_OccurredAt_Idx ON Events(Kind, OccurredAt DESC);`,
		`CREATE INDEX IF NOT EXISTS Events_OccurredAt_Idx ON Events(OccurredAt DESC);`,
		`CREATE TABLE IF NOT EXISTS Milestones (
            MilestoneId TEXT PRIMARY KEY,
            Name TEXT NOT NULL,
            OccurredAt TIMESTAMP NOT NULL,
            AgeAtOccurrence TEXT NOT NULL
        );`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
