package ontology

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/cockpit/pkg/domain/entities"
	"github.com/vsinha/cockpit/pkg/domain/repositories"
	"github.com/vsinha/cockpit/pkg/domain/services"
	"github.com/vsinha/cockpit/pkg/infrastructure/logging"
)

// ObjectTypes names the object type of each record kind
type ObjectTypes struct {
	BOM             string
	Material        string
	PurchaseRequest string
	PurchaseOrder   string
	MRP             string
	Inventory       string
}

// Fields names the filter fields used in query conditions
type Fields struct {
	BOMProduct     string // product whose expansion a BOM row belongs to
	MaterialCode   string
	MaterialNumber string
	MRPProduct     string
}

// DefaultFields returns the field names of the supply-chain knowledge network
func DefaultFields() Fields {
	return Fields{
		BOMProduct:     "product_code",
		MaterialCode:   "material_code",
		MaterialNumber: "material_number",
		MRPProduct:     "product_code",
	}
}

// RepositoryConfig configures a Repository
type RepositoryConfig struct {
	Types       ObjectTypes
	Fields      Fields
	BatchSize   int
	Concurrency int
}

// Repository implements repositories.DataSource on the query API
type Repository struct {
	client *Client
	cfg    RepositoryConfig
	logger *zap.Logger
}

var _ repositories.DataSource = (*Repository)(nil)

// NewRepository creates an ontology-backed supply repository
func NewRepository(client *Client, cfg RepositoryConfig, logger *zap.Logger) *Repository {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = repositories.DefaultBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Fields == (Fields{}) {
		cfg.Fields = DefaultFields()
	}
	return &Repository{client: client, cfg: cfg, logger: logging.OrNop(logger)}
}

func (r *Repository) LoadBOMByProduct(ctx context.Context, productCode entities.MaterialCode) ([]entities.BOMEdge, error) {
	records, err := r.client.QueryAll(ctx, r.cfg.Types.BOM, Eq(r.cfg.Fields.BOMProduct, string(productCode)))
	if err != nil {
		return nil, fmt.Errorf("load BOM of %s: %w", productCode, err)
	}

	edges := normalizeAll(records, NormalizeBOMEdge)
	latest := services.SelectLatestVersion(edges)
	r.logger.Debug("BOM loaded",
		zap.String("product", string(productCode)),
		zap.Int("rows", len(records)),
		zap.Int("latest_version_edges", len(latest)),
	)
	return latest, nil
}

func (r *Repository) LoadMaterialsByCode(ctx context.Context, codes []entities.MaterialCode) ([]entities.MaterialRecord, error) {
	return loadBatched(ctx, r, r.cfg.Types.Material, r.cfg.Fields.MaterialCode, codes, NormalizeMaterial)
}

func (r *Repository) LoadPurchaseRequests(ctx context.Context, codes []entities.MaterialCode) ([]entities.PurchaseRequest, error) {
	return loadBatched(ctx, r, r.cfg.Types.PurchaseRequest, r.cfg.Fields.MaterialNumber, codes, NormalizePurchaseRequest)
}

func (r *Repository) LoadPurchaseOrders(ctx context.Context, codes []entities.MaterialCode) ([]entities.PurchaseOrder, error) {
	return loadBatched(ctx, r, r.cfg.Types.PurchaseOrder, r.cfg.Fields.MaterialNumber, codes, NormalizePurchaseOrder)
}

func (r *Repository) GetMRPByProduct(ctx context.Context, productCode entities.MaterialCode) ([]entities.MRPDemand, error) {
	records, err := r.client.QueryAll(ctx, r.cfg.Types.MRP, Eq(r.cfg.Fields.MRPProduct, string(productCode)))
	if err != nil {
		return nil, fmt.Errorf("load MRP of %s: %w", productCode, err)
	}
	return normalizeAll(records, NormalizeMRPDemand), nil
}

// LoadInventoryByCode returns the stock lines of every warehouse and batch
func (r *Repository) LoadInventoryByCode(ctx context.Context, codes []entities.MaterialCode) ([]entities.InventoryRecord, error) {
	if r.cfg.Types.Inventory == "" {
		return nil, nil
	}
	return loadBatched(ctx, r, r.cfg.Types.Inventory, r.cfg.Fields.MaterialCode, codes, NormalizeInventory)
}

// loadBatched queries codes in batches, a bounded number at a time. Results keep
// batch order; the first failing batch fails the whole lookup.
func loadBatched[T any](
	ctx context.Context,
	r *Repository,
	objectType, field string,
	codes []entities.MaterialCode,
	normalize func(Record) (T, bool),
) ([]T, error) {
	batches := repositories.ChunkCodes(repositories.UniqueCodes(codes), r.cfg.BatchSize)
	results := make([][]T, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			values := make([]string, len(batch))
			for j, code := range batch {
				values[j] = string(code)
			}

			records, err := r.client.QueryAll(gctx, objectType, In(field, values))
			if err != nil {
				return fmt.Errorf("load %s batch %d/%d: %w", objectType, i+1, len(batches), err)
			}
			results[i] = normalizeAll(records, normalize)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []T
	for _, batch := range results {
		merged = append(merged, batch...)
	}
	r.logger.Debug("Batched lookup complete",
		zap.String("object_type", objectType),
		zap.Int("codes", len(codes)),
		zap.Int("batches", len(batches)),
		zap.Int("records", len(merged)),
	)
	return merged, nil
}

func normalizeAll[T any](records []Record, normalize func(Record) (T, bool)) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if v, ok := normalize(rec); ok {
			out = append(out, v)
		}
	}
	return out
}
