// Package gantt builds backward-scheduled gantt trees from a supply repository.
package gantt

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/cockpit/pkg/application/dto"
	"github.com/vsinha/cockpit/pkg/domain/entities"
	"github.com/vsinha/cockpit/pkg/domain/repositories"
	"github.com/vsinha/cockpit/pkg/domain/services"
	"github.com/vsinha/cockpit/pkg/infrastructure/logging"
)

// Config holds the scheduling options of a Service
type Config struct {
	NodeLimit       int
	DefaultLeadTime int
	SortSiblings    bool
}

// GanttRequest selects a product and its production window
type GanttRequest struct {
	ProductCode     entities.MaterialCode
	ProductName     string
	ProductionStart entities.Date
	ProductionEnd   entities.Date
}

// Validate checks the request fields
func (r GanttRequest) Validate() error {
	if r.ProductCode == "" {
		return invalidRequest("product code is required")
	}
	if r.ProductionStart.IsZero() || r.ProductionEnd.IsZero() {
		return invalidRequest("production start and end are required")
	}
	if r.ProductionEnd.Before(r.ProductionStart) {
		return invalidRequest("production end %s is before start %s", r.ProductionEnd, r.ProductionStart)
	}
	return nil
}

// Service runs the fetch, join and schedule pipeline for one product at a time
type Service struct {
	repo   repositories.DataSource
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a gantt service over the given data source
func NewService(repo repositories.DataSource, cfg Config, logger *zap.Logger) *Service {
	if cfg.NodeLimit <= 0 {
		cfg.NodeLimit = services.DefaultNodeLimit
	}
	if cfg.DefaultLeadTime <= 0 {
		cfg.DefaultLeadTime = entities.DefaultLeadTimeDays
	}
	return &Service{
		repo:   repo,
		cfg:    cfg,
		logger: logging.OrNop(logger),
		now:    time.Now,
	}
}

// WithClock replaces the clock used for risk checks and timestamps
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// supplyData is the joined lookup state of one run
type supplyData struct {
	materials []entities.MaterialRecord
	requests  []entities.PurchaseRequest
	orders    []entities.PurchaseOrder
	mrp       []entities.MRPDemand
}

// BuildGantt fetches the product's supply data and returns its backward schedule.
// A failed lookup fails the whole run with a *FetchError.
func (s *Service) BuildGantt(ctx context.Context, req GanttRequest) (*dto.GanttResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	started := s.now()
	logger := s.logger.With(zap.String("product", string(req.ProductCode)))

	edges, err := s.repo.LoadBOMByProduct(ctx, req.ProductCode)
	if err != nil {
		return nil, &FetchError{Source: "bom", Err: err}
	}
	tree := services.BuildBOMTree(req.ProductCode, edges)
	codes := tree.Codes()

	data, err := s.fetchSupply(ctx, req.ProductCode, codes)
	if err != nil {
		return nil, err
	}

	scheduler := &services.BackwardScheduler{
		NodeLimit:       s.cfg.NodeLimit,
		DefaultLeadTime: s.cfg.DefaultLeadTime,
		SortSiblings:    s.cfg.SortSiblings,
		Now:             s.now,
	}
	scheduled := scheduler.Schedule(services.ScheduleInput{
		ProductCode:     req.ProductCode,
		ProductName:     req.ProductName,
		ProductionStart: req.ProductionStart,
		ProductionEnd:   req.ProductionEnd,
		Tree:            tree,
		Materials:       services.NewMaterialIndex(data.materials),
		Procurement:     services.NewProcurementIndex(data.requests, data.orders),
		Shortages:       services.NewShortageIndex(data.mrp),
	})
	for _, warning := range scheduled.Warnings {
		logger.Warn("Schedule incomplete", zap.String("warning", warning), zap.Int("nodes", scheduled.NodeCount))
	}

	bars := services.Flatten(scheduled.Root)
	finished := s.now()
	result := &dto.GanttResult{
		RunID:           uuid.New().String(),
		GeneratedAt:     finished,
		ProductCode:     req.ProductCode,
		ProductionStart: req.ProductionStart,
		ProductionEnd:   req.ProductionEnd,
		Root:            scheduled.Root,
		TimeRange:       services.TimeRange(bars, finished),
		Statistics:      services.Summarize(bars),
		CriticalChain:   services.FindCriticalChain(scheduled.Root),
		NodeCount:       scheduled.NodeCount,
		Truncated:       scheduled.Truncated,
		Warnings:        append([]string{}, scheduled.Warnings...),
		ProcessingMS:    finished.Sub(started).Milliseconds(),
		Bars:            bars,
	}

	logger.Info("Gantt built",
		zap.String("run_id", result.RunID),
		zap.Int("bom_edges", tree.EdgeCount()),
		zap.Int("alternates", tree.AlternateCount()),
		zap.Int("nodes", result.NodeCount),
		zap.Int("shortages", result.Statistics.ShortageCount),
		zap.Bool("truncated", result.Truncated),
	)
	return result, nil
}

// fetchSupply runs the four code and product lookups concurrently
func (s *Service) fetchSupply(ctx context.Context, product entities.MaterialCode, codes []entities.MaterialCode) (*supplyData, error) {
	data := &supplyData{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		materials, err := s.repo.LoadMaterialsByCode(gctx, codes)
		if err != nil {
			return &FetchError{Source: "materials", Err: err}
		}
		data.materials = materials
		return nil
	})
	g.Go(func() error {
		requests, err := s.repo.LoadPurchaseRequests(gctx, codes)
		if err != nil {
			return &FetchError{Source: "purchase_requests", Err: err}
		}
		data.requests = requests
		return nil
	})
	g.Go(func() error {
		orders, err := s.repo.LoadPurchaseOrders(gctx, codes)
		if err != nil {
			return &FetchError{Source: "purchase_orders", Err: err}
		}
		data.orders = orders
		return nil
	})
	g.Go(func() error {
		mrp, err := s.repo.GetMRPByProduct(gctx, product)
		if err != nil {
			return &FetchError{Source: "mrp", Err: err}
		}
		data.mrp = mrp
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

// ValidateBOM loads a product's BOM and reports structural problems
func (s *Service) ValidateBOM(ctx context.Context, productCode entities.MaterialCode) (*services.ValidationResult, error) {
	if productCode == "" {
		return nil, invalidRequest("product code is required")
	}
	edges, err := s.repo.LoadBOMByProduct(ctx, productCode)
	if err != nil {
		return nil, &FetchError{Source: "bom", Err: err}
	}
	return services.NewBOMValidator().Validate(productCode, edges), nil
}

// ShortageRows returns the export rows of the bars with a shortage
func ShortageRows(result *dto.GanttResult) []dto.ShortageRow {
	if result == nil {
		return nil
	}
	return dto.NewShortageRows(result.Bars)
}
