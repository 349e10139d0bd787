package gantt

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/cockpit/pkg/application/dto"
	"github.com/vsinha/cockpit/pkg/domain/entities"
	"github.com/vsinha/cockpit/pkg/domain/services"
)

// MaxTreeProducts bounds the products of one inventory tree request
const MaxTreeProducts = 50

// treeConcurrency is how many products are expanded at once
const treeConcurrency = 4

// TreeRequest selects the products of an inventory tree run
type TreeRequest struct {
	ProductCodes       []entities.MaterialCode
	IncludeSubstitutes bool
	IncludeInventory   bool
}

// Validate checks the request fields
func (r TreeRequest) Validate() error {
	if len(r.ProductCodes) == 0 {
		return invalidRequest("at least one product code is required")
	}
	if len(r.ProductCodes) > MaxTreeProducts {
		return invalidRequest("at most %d products per request, got %d", MaxTreeProducts, len(r.ProductCodes))
	}
	for i, code := range r.ProductCodes {
		if code == "" {
			return invalidRequest("product code %d is empty", i+1)
		}
	}
	return nil
}

// BuildInventoryTrees expands each product's BOM with stock levels and
// substitutes. Products with neither a BOM nor master data are reported as
// missing; any failed lookup fails the whole run with a *FetchError.
func (s *Service) BuildInventoryTrees(ctx context.Context, req TreeRequest) (*dto.InventoryTreeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	started := s.now()
	today := entities.DateOf(started)

	trees := make([]*entities.InventoryTree, len(req.ProductCodes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(treeConcurrency)
	for i, product := range req.ProductCodes {
		i, product := i, product
		g.Go(func() error {
			tree, err := s.buildInventoryTree(gctx, product, req, today)
			if err != nil {
				return err
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	finished := s.now()
	result := &dto.InventoryTreeResult{
		RunID:       uuid.New().String(),
		GeneratedAt: finished,
		Trees:       make([]*entities.InventoryTree, 0, len(trees)),
		Missing:     []entities.MaterialCode{},
	}
	for i, tree := range trees {
		if tree == nil {
			s.logger.Warn("Product not found", zap.String("product", string(req.ProductCodes[i])))
			result.Missing = append(result.Missing, req.ProductCodes[i])
			continue
		}
		result.Trees = append(result.Trees, tree)
	}
	result.ProcessingMS = finished.Sub(started).Milliseconds()

	s.logger.Info("Inventory trees built",
		zap.String("run_id", result.RunID),
		zap.Int("products", len(result.Trees)),
		zap.Int("missing", len(result.Missing)),
		zap.Bool("inventory", req.IncludeInventory),
		zap.Bool("substitutes", req.IncludeSubstitutes),
	)
	return result, nil
}

// buildInventoryTree returns nil without error for an unknown product
func (s *Service) buildInventoryTree(ctx context.Context, product entities.MaterialCode, req TreeRequest, today entities.Date) (*entities.InventoryTree, error) {
	edges, err := s.repo.LoadBOMByProduct(ctx, product)
	if err != nil {
		return nil, &FetchError{Source: "bom", Err: err}
	}
	tree := services.BuildBOMTree(product, edges)

	var substitutes *services.SubstituteIndex
	codes := tree.Codes()
	if req.IncludeSubstitutes {
		substitutes = services.NewSubstituteIndex(product, edges)
		codes = append(codes, substitutes.Codes()...)
	}

	var materials []entities.MaterialRecord
	var stock []entities.InventoryRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := s.repo.LoadMaterialsByCode(gctx, codes)
		if err != nil {
			return &FetchError{Source: "materials", Err: err}
		}
		materials = records
		return nil
	})
	if req.IncludeInventory {
		g.Go(func() error {
			records, err := s.repo.LoadInventoryByCode(gctx, codes)
			if err != nil {
				return &FetchError{Source: "inventory", Err: err}
			}
			stock = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	index := services.NewMaterialIndex(materials)
	if len(edges) == 0 {
		if _, known := index[product]; !known {
			return nil, nil
		}
	}

	in := services.InventoryTreeInput{
		ProductCode: product,
		Tree:        tree,
		Substitutes: substitutes,
		Materials:   index,
	}
	if req.IncludeInventory {
		in.Stock = services.AggregateInventory(stock, today)
	}
	built := (&services.InventoryTreeBuilder{NodeLimit: s.cfg.NodeLimit}).Build(in)
	if built.Truncated {
		s.logger.Warn("Inventory tree truncated",
			zap.String("product", string(product)),
			zap.Int("node_limit", s.cfg.NodeLimit),
		)
	}
	return built, nil
}
