package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/pkg/migration"
	"github.com/shashiranjanraj/vastra/pkg/queue"
)

func init() {
	migration.Register("20260101000000_create_users_table", tables{&models.User{}})
	migration.Register("20260101000001_create_catalog_tables", tables{&models.Brand{}, &models.Category{}, &models.Product{}})
	migration.Register("20260101000002_create_collections_tables", tables{&models.Collection{}, &models.CollectionProduct{}})
	migration.Register("20260101000003_create_reviews_table", tables{&models.Review{}})
	migration.Register("20260101000004_create_shipping_methods_table", tables{&models.ShippingMethod{}})
	migration.Register("20260101000005_create_cart_tables", tables{&models.CartItem{}, &models.WishlistItem{}})
	migration.Register("20260101000006_create_orders_tables", tables{&models.PaymentIntent{}, &models.Order{}, &models.OrderItem{}})
	migration.Register("20260101000007_create_failed_jobs_table", &CreateFailedJobsTable{})
}

// CreateFailedJobsTable backs queue.WithFailedJobStore.
type CreateFailedJobsTable struct{}

func (m *CreateFailedJobsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&queue.FailedJobRecord{})
}

func (m *CreateFailedJobsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("failed_jobs")
}
