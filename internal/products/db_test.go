package product

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/angelmondragon/listingz-backend/pkg/db/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB uses LISTINGZ_TEST_DB_DSN (postgres) when set and a private
// in-memory sqlite database otherwise.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	var dialector gorm.Dialector
	if dsn := os.Getenv("LISTINGZ_TEST_DB_DSN"); dsn != "" {
		dialector = postgres.Open(dsn)
	} else {
		name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
		dialector = sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	}

	conn, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}, &models.OwnerStatus{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	if conn.Dialector.Name() == "postgres" {
		t.Cleanup(func() {
			conn.Exec("DELETE FROM products")
			conn.Exec("DELETE FROM owner_statuses")
		})
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}
