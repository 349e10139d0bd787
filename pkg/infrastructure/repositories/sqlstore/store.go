package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/vsinha/cockpit/pkg/domain/entities"
	"github.com/vsinha/cockpit/pkg/domain/repositories"
	"github.com/vsinha/cockpit/pkg/domain/services"
	"github.com/vsinha/cockpit/pkg/infrastructure/config"
)

const insertBatchSize = 500

// Open opens a gorm connection for driver sqlite, mysql or postgres
func Open(driver, dsn string) (*gorm.DB, error) {
	return open(config.DatabaseConfig{Driver: driver, DSN: dsn})
}

// OpenWithConfig opens a connection and applies the pool settings of cfg
func OpenWithConfig(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return open(cfg)
}

func open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite", "sqlite3":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres", "postgresql":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", cfg.Driver)
	}

	logMode := logger.Silent
	if cfg.LogQueries {
		logMode = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db: get sql.DB: %w", err)
	}
	// every connection to an in-memory sqlite database sees its own empty database
	if strings.Contains(cfg.DSN, ":memory:") {
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}

// AutoMigrate creates or updates the supply tables
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// Store implements repositories.DataSource on a SQL database
type Store struct {
	db        *gorm.DB
	batchSize int
}

var _ repositories.DataSource = (*Store)(nil)

// NewStore wraps an open, migrated database
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, batchSize: repositories.DefaultBatchSize}
}

// Ping checks the underlying connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("db: get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) LoadBOMByProduct(ctx context.Context, productCode entities.MaterialCode) ([]entities.BOMEdge, error) {
	var rows []BOMEdgeRow
	err := s.db.WithContext(ctx).
		Where("product_code = ?", string(productCode)).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("db: load BOM of %s: %w", productCode, err)
	}

	edges := make([]entities.BOMEdge, len(rows))
	for i, row := range rows {
		edges[i] = row.toEntity()
	}
	return services.SelectLatestVersion(edges), nil
}

func (s *Store) LoadMaterialsByCode(ctx context.Context, codes []entities.MaterialCode) ([]entities.MaterialRecord, error) {
	return findIn(ctx, s, "code", "code", codes, MaterialRow.toEntity)
}

func (s *Store) LoadPurchaseRequests(ctx context.Context, codes []entities.MaterialCode) ([]entities.PurchaseRequest, error) {
	return findIn(ctx, s, "material_number", "id", codes, PurchaseRequestRow.toEntity)
}

func (s *Store) LoadPurchaseOrders(ctx context.Context, codes []entities.MaterialCode) ([]entities.PurchaseOrder, error) {
	return findIn(ctx, s, "material_number", "id", codes, PurchaseOrderRow.toEntity)
}

func (s *Store) LoadInventoryByCode(ctx context.Context, codes []entities.MaterialCode) ([]entities.InventoryRecord, error) {
	return findIn(ctx, s, "material_code", "id", codes, InventoryRow.toEntity)
}

func (s *Store) GetMRPByProduct(ctx context.Context, productCode entities.MaterialCode) ([]entities.MRPDemand, error) {
	var rows []MRPDemandRow
	err := s.db.WithContext(ctx).
		Where("product_code = ?", string(productCode)).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("db: load MRP of %s: %w", productCode, err)
	}

	demands := make([]entities.MRPDemand, len(rows))
	for i, row := range rows {
		demands[i] = row.toEntity()
	}
	return demands, nil
}

// findIn runs one IN query per batch of distinct codes
func findIn[R any, T any](
	ctx context.Context,
	s *Store,
	column, order string,
	codes []entities.MaterialCode,
	convert func(R) T,
) ([]T, error) {
	var out []T
	for _, batch := range repositories.ChunkCodes(repositories.UniqueCodes(codes), s.batchSize) {
		values := make([]string, len(batch))
		for i, code := range batch {
			values[i] = string(code)
		}

		var rows []R
		if err := s.db.WithContext(ctx).Where(column+" IN ?", values).Order(order).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("db: lookup by %s: %w", column, err)
		}
		for _, row := range rows {
			out = append(out, convert(row))
		}
	}
	return out, nil
}

// ImportStats counts the rows written by Import
type ImportStats struct {
	BOMEdges         int
	Materials        int
	PurchaseRequests int
	PurchaseOrders   int
	MRPDemands       int
	Inventory        int
}

// Import writes a snapshot in one transaction. BOM and MRP rows of the
// snapshot's products replace the stored ones, as do the stock lines of every
// material the snapshot carries stock for; materials and procurement
// documents are upserted.
func (s *Store) Import(ctx context.Context, snapshot *repositories.Snapshot) (ImportStats, error) {
	var stats ImportStats
	if snapshot == nil {
		return stats, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for product, edges := range snapshot.BOM {
			if err := tx.Where("product_code = ?", string(product)).Delete(&BOMEdgeRow{}).Error; err != nil {
				return fmt.Errorf("db: clear BOM of %s: %w", product, err)
			}
			rows := make([]BOMEdgeRow, len(edges))
			for i, e := range edges {
				rows[i] = BOMEdgeRow{
					ProductCode:  string(product),
					MaterialCode: string(e.MaterialCode),
					MaterialName: e.MaterialName,
					ParentCode:   string(e.ParentCode),
					BOMLevel:     e.BOMLevel,
					AltPart:      e.AltPart,
					Version:      e.Version,
					Quantity:     e.Quantity,
					AltGroupNo:   e.AltGroupNo,
					AltPriority:  e.AltPriority,
				}
			}
			if err := createAll(tx, rows, nil); err != nil {
				return fmt.Errorf("db: insert BOM of %s: %w", product, err)
			}
			stats.BOMEdges += len(rows)
		}

		for product, demands := range snapshot.MRP {
			if err := tx.Where("product_code = ?", string(product)).Delete(&MRPDemandRow{}).Error; err != nil {
				return fmt.Errorf("db: clear MRP of %s: %w", product, err)
			}
			rows := make([]MRPDemandRow, len(demands))
			for i, d := range demands {
				rows[i] = MRPDemandRow{
					ProductCode:    string(product),
					MainMaterial:   string(d.MainMaterial),
					DemandQuantity: d.DemandQuantity,
				}
			}
			if err := createAll(tx, rows, nil); err != nil {
				return fmt.Errorf("db: insert MRP of %s: %w", product, err)
			}
			stats.MRPDemands += len(rows)
		}

		materials := make([]MaterialRow, len(snapshot.Materials))
		for i, m := range snapshot.Materials {
			materials[i] = MaterialRow{
				Code:                  string(m.Code),
				Name:                  m.Name,
				Attr:                  m.Attr,
				PurchaseFixedLeadTime: m.PurchaseFixedLeadTime,
				ProductFixedLeadTime:  m.ProductFixedLeadTime,
				Unit:                  m.Unit,
				MinOrderQty:           m.MinOrderQty,
			}
		}
		materials = lastByKey(materials, func(r MaterialRow) string { return r.Code })
		if err := createAll(tx, materials, &clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			UpdateAll: true,
		}); err != nil {
			return fmt.Errorf("db: upsert materials: %w", err)
		}
		stats.Materials = len(materials)

		documentConflict := &clause.OnConflict{
			Columns:   []clause.Column{{Name: "material_number"}, {Name: "bill_no"}},
			UpdateAll: true,
		}

		requests := make([]PurchaseRequestRow, len(snapshot.PurchaseRequests))
		for i, pr := range snapshot.PurchaseRequests {
			requests[i] = PurchaseRequestRow{
				MaterialNumber: string(pr.MaterialNumber),
				BillNo:         pr.BillNo,
				BizTime:        pr.BizTime,
			}
		}
		requests = lastByKey(requests, func(r PurchaseRequestRow) string { return r.MaterialNumber + "\x00" + r.BillNo })
		if err := createAll(tx, requests, documentConflict); err != nil {
			return fmt.Errorf("db: upsert purchase requests: %w", err)
		}
		stats.PurchaseRequests = len(requests)

		orders := make([]PurchaseOrderRow, len(snapshot.PurchaseOrders))
		for i, po := range snapshot.PurchaseOrders {
			orders[i] = PurchaseOrderRow{
				MaterialNumber: string(po.MaterialNumber),
				BillNo:         po.BillNo,
				BizTime:        po.BizTime,
				DeliverDate:    po.DeliverDate,
			}
		}
		orders = lastByKey(orders, func(r PurchaseOrderRow) string { return r.MaterialNumber + "\x00" + r.BillNo })
		if err := createAll(tx, orders, documentConflict); err != nil {
			return fmt.Errorf("db: upsert purchase orders: %w", err)
		}
		stats.PurchaseOrders = len(orders)

		stock := make([]InventoryRow, len(snapshot.Inventory))
		stocked := make([]entities.MaterialCode, 0, len(snapshot.Inventory))
		for i, line := range snapshot.Inventory {
			stock[i] = InventoryRow{
				MaterialCode: string(line.MaterialCode),
				Warehouse:    line.Warehouse,
				BatchNo:      line.BatchNo,
				AvailableQty: line.AvailableQty,
				BaseQty:      line.BaseQty,
				UnitPrice:    line.UnitPrice,
			}
			stocked = append(stocked, line.MaterialCode)
		}
		for _, batch := range repositories.ChunkCodes(repositories.UniqueCodes(stocked), s.batchSize) {
			values := make([]string, len(batch))
			for i, code := range batch {
				values[i] = string(code)
			}
			if err := tx.Where("material_code IN ?", values).Delete(&InventoryRow{}).Error; err != nil {
				return fmt.Errorf("db: clear stock lines: %w", err)
			}
		}
		if err := createAll(tx, stock, nil); err != nil {
			return fmt.Errorf("db: insert stock lines: %w", err)
		}
		stats.Inventory = len(stock)

		return nil
	})
	if err != nil {
		return ImportStats{}, err
	}
	return stats, nil
}

func createAll[R any](tx *gorm.DB, rows []R, conflict *clause.OnConflict) error {
	if len(rows) == 0 {
		return nil
	}
	if conflict != nil {
		tx = tx.Clauses(*conflict)
	}
	return tx.CreateInBatches(rows, insertBatchSize).Error
}

// lastByKey keeps the last row per conflict key
func lastByKey[R any](rows []R, key func(R) string) []R {
	last := make(map[string]int, len(rows))
	for i, row := range rows {
		last[key(row)] = i
	}
	if len(last) == len(rows) {
		return rows
	}
	out := make([]R, 0, len(last))
	for i, row := range rows {
		if last[key(row)] == i {
			out = append(out, row)
		}
	}
	return out
}
