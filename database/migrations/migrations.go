// Package migrations registers the schema migrations. Importing it (the CLI
// does) is enough for migration.New to see them.
package migrations

import (
	"gorm.io/gorm"
)

// tables creates its models on Up and drops them, last first, on Down.
type tables []any

func (t tables) Up(db *gorm.DB) error {
	return db.AutoMigrate(t...)
}

func (t tables) Down(db *gorm.DB) error {
	for i := len(t) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(t[i]); err != nil {
			return err
		}
	}
	return nil
}
