package product

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/origen-putumayo/storefront/pkg/db"
	"github.com/origen-putumayo/storefront/pkg/db/models"
	"github.com/origen-putumayo/storefront/pkg/enums"
)

func setupCatalogDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS company (
  company_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS product (
  product_id TEXT PRIMARY KEY,
  company_id TEXT,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'COP',
  category TEXT,
  location TEXT,
  availability TEXT NOT NULL DEFAULT 'available',
  is_top INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  variant_group TEXT,
  weight_value NUMERIC,
  weight_unit TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS product_image (
  image_id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  url TEXT NOT NULL,
  order_index INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func newTestCatalog(t *testing.T) (*gorm.DB, *Repository, Service) {
	t.Helper()
	conn := setupCatalogDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, db.Wrap(conn))
	require.NoError(t, err)
	return conn, repo, svc
}

func mustCreateCompany(t *testing.T, conn *gorm.DB, name string, active bool) *models.Company {
	t.Helper()
	company := &models.Company{Name: name, IsActive: true}
	require.NoError(t, conn.Create(company).Error)
	if !active {
		require.NoError(t, conn.Model(company).Update("is_active", false).Error)
		company.IsActive = false
	}
	return company
}

func mustCreateProduct(t *testing.T, conn *gorm.DB, name string, companyID *uuid.UUID, active bool, urls ...string) *models.Product {
	t.Helper()
	product := &models.Product{
		CompanyID:    companyID,
		Name:         name,
		Price:        decimal.NewFromInt(25000),
		Currency:     "COP",
		Availability: enums.ProductAvailabilityAvailable,
		IsActive:     true,
	}
	require.NoError(t, conn.Omit("Images").Create(product).Error)
	if !active {
		require.NoError(t, conn.Model(product).Update("is_active", false).Error)
		product.IsActive = false
	}
	require.NoError(t, NewRepository(conn).InsertImages(context.Background(), product.ID, urls))
	return product
}
