package orm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/vastra/pkg/orm"
)

type pageRow struct {
	ID   uint
	Kind string
}

func TestPaginate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&pageRow{}))

	for i := 0; i < 45; i++ {
		kind := "a"
		if i%3 == 0 {
			kind = "b"
		}
		require.NoError(t, db.Create(&pageRow{Kind: kind}).Error)
	}

	var rows []pageRow
	p, err := orm.Paginate(context.Background(), db.Model(&pageRow{}).Order("id"), orm.NewPagination(3, 20), &rows)
	require.NoError(t, err)
	assert.EqualValues(t, 45, p.Total)
	assert.Equal(t, 3, p.TotalPages)
	assert.Len(t, rows, 5)
	assert.EqualValues(t, 41, rows[0].ID)

	rows = nil
	p, err = orm.Paginate(context.Background(), db.Model(&pageRow{}).Where("kind = ?", "b"), orm.NewPagination(1, 10), &rows)
	require.NoError(t, err)
	assert.EqualValues(t, 15, p.Total)
	assert.Len(t, rows, 10)
}

func TestNewPaginationClamps(t *testing.T) {
	p := orm.NewPagination(0, 500)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, orm.MaxPerPage, p.PerPage)
	assert.Equal(t, 0, p.Offset())
}
