package migration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   uint
	Name string
}

type gadget struct {
	ID uint
}

type createWidgets struct{}

func (createWidgets) Up(db *gorm.DB) error   { return db.AutoMigrate(&widget{}) }
func (createWidgets) Down(db *gorm.DB) error { return db.Migrator().DropTable(&widget{}) }

type createGadgets struct{}

func (createGadgets) Up(db *gorm.DB) error   { return db.AutoMigrate(&gadget{}) }
func (createGadgets) Down(db *gorm.DB) error { return db.Migrator().DropTable(&gadget{}) }

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestRunRollbackStatus(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	first := NewWith(db, []Entry{{Name: "20240101000000_create_widgets", Migration: createWidgets{}}})
	done, err := first.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"20240101000000_create_widgets"}, done)

	r := NewWith(db, []Entry{
		{Name: "20240102000000_create_gadgets", Migration: createGadgets{}},
		{Name: "20240101000000_create_widgets", Migration: createWidgets{}},
	})
	done, err = r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"20240102000000_create_gadgets"}, done)

	status, err := r.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Status{
		{Name: "20240101000000_create_widgets", Ran: true, Batch: 1},
		{Name: "20240102000000_create_gadgets", Ran: true, Batch: 2},
	}, status)

	done, err = r.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"20240102000000_create_gadgets"}, done)
	assert.False(t, db.Migrator().HasTable(&gadget{}))
	assert.True(t, db.Migrator().HasTable(&widget{}))

	pending, err := r.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "20240102000000_create_gadgets", pending[0].Name)
}

func TestNothingToDo(t *testing.T) {
	ctx := context.Background()
	r := NewWith(openDB(t), nil)

	done, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, done)

	done, err = r.Rollback(ctx)
	require.NoError(t, err)
	assert.Empty(t, done)
}
