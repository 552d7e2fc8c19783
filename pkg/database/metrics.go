package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/vastra/pkg/metrics"
)

const startKey = "vastra:query_start"

// RegisterMetrics times every gorm operation into
// vastra_db_query_duration_seconds{operation,table}.
func RegisterMetrics(db *gorm.DB) error {
	before := func(tx *gorm.DB) { tx.InstanceSet(startKey, time.Now()) }
	after := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(startKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "raw"
			}
			metrics.ObserveDBQuery(op, table, start)
		}
	}

	cb := db.Callback()
	steps := []struct {
		op     string
		before func(string) error
		after  func(string) error
	}{
		{"create",
			func(n string) error { return cb.Create().Before("gorm:create").Register(n, before) },
			func(n string) error { return cb.Create().After("gorm:create").Register(n, after("create")) }},
		{"query",
			func(n string) error { return cb.Query().Before("gorm:query").Register(n, before) },
			func(n string) error { return cb.Query().After("gorm:query").Register(n, after("query")) }},
		{"update",
			func(n string) error { return cb.Update().Before("gorm:update").Register(n, before) },
			func(n string) error { return cb.Update().After("gorm:update").Register(n, after("update")) }},
		{"delete",
			func(n string) error { return cb.Delete().Before("gorm:delete").Register(n, before) },
			func(n string) error { return cb.Delete().After("gorm:delete").Register(n, after("delete")) }},
		{"row",
			func(n string) error { return cb.Row().Before("gorm:row").Register(n, before) },
			func(n string) error { return cb.Row().After("gorm:row").Register(n, after("row")) }},
		{"raw",
			func(n string) error { return cb.Raw().Before("gorm:raw").Register(n, before) },
			func(n string) error { return cb.Raw().After("gorm:raw").Register(n, after("raw")) }},
	}

	for _, s := range steps {
		if err := s.before("metrics:before_" + s.op); err != nil {
			return fmt.Errorf("database: register %s metrics: %w", s.op, err)
		}
		if err := s.after("metrics:after_" + s.op); err != nil {
			return fmt.Errorf("database: register %s metrics: %w", s.op, err)
		}
	}
	return nil
}
