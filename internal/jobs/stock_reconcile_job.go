package jobs

import (
	"context"
	"math"
	"time"

	"github.com/merkur-erp/erp-api/internal/datawarehouse"
	"github.com/merkur-erp/erp-api/internal/domain"
	"go.uber.org/zap"
)

// StockReconcileJobName is the name of the stock reconciliation job
const StockReconcileJobName = "stock_reconcile"

// reconcileTolerance is the quantity difference below which a pair of figures
// counts as equal. Accounting rounds to three decimals.
const reconcileTolerance = 0.0005

// StockFigureSource provides the accounting system's stock quantities
type StockFigureSource interface {
	IsEnabled() bool
	GetStockFigures(ctx context.Context) ([]datawarehouse.StockFigure, error)
}

// StockLevelLister provides the local warehouse stock levels
type StockLevelLister interface {
	List(ctx context.Context, warehouseCode, productCode string, skip, take int) ([]domain.StockLevel, int64, error)
}

// StockReconcileJob compares the local stock levels with the accounting data
// warehouse figures and logs every discrepancy. It never writes: the
// accounting system stays the source of truth for bookkeeping, the ERP for
// logistics, and a human resolves the differences.
type StockReconcileJob struct {
	source  StockFigureSource
	levels  StockLevelLister
	logger  *zap.Logger
	timeout time.Duration
}

// NewStockReconcileJob creates a new reconciliation job
func NewStockReconcileJob(source StockFigureSource, levels StockLevelLister, logger *zap.Logger, timeout time.Duration) *StockReconcileJob {
	return &StockReconcileJob{
		source:  source,
		levels:  levels,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one reconciliation pass. Called by the scheduler.
func (j *StockReconcileJob) Run() {
	if j.source == nil || !j.source.IsEnabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting stock reconciliation")

	figures, err := j.source.GetStockFigures(ctx)
	if err != nil {
		j.logger.Error("failed to read data warehouse stock figures",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	local, err := j.loadLocalLevels(ctx)
	if err != nil {
		j.logger.Error("failed to read local stock levels",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	type key struct{ warehouse, product string }

	remote := make(map[key]float64, len(figures))
	for _, f := range figures {
		remote[key{f.WarehouseCode, f.ProductCode}] = f.Quantity
	}

	discrepancies := 0
	seen := make(map[key]bool, len(local))

	for _, level := range local {
		k := key{level.WarehouseCode, level.ProductCode}
		seen[k] = true

		remoteQty, ok := remote[k]
		if !ok {
			remoteQty = 0
		}
		if math.Abs(level.Quantity-remoteQty) > reconcileTolerance {
			discrepancies++
			j.logger.Warn("stock discrepancy",
				zap.String("warehouseCode", level.WarehouseCode),
				zap.String("productCode", level.ProductCode),
				zap.Float64("localQuantity", level.Quantity),
				zap.Float64("accountingQuantity", remoteQty),
			)
		}
	}

	// Figures the accounting system has but we never booked locally
	for k, remoteQty := range remote {
		if seen[k] {
			continue
		}
		discrepancies++
		j.logger.Warn("stock discrepancy",
			zap.String("warehouseCode", k.warehouse),
			zap.String("productCode", k.product),
			zap.Float64("localQuantity", 0),
			zap.Float64("accountingQuantity", remoteQty),
		)
	}

	j.logger.Info("stock reconciliation completed",
		zap.Int("local_levels", len(local)),
		zap.Int("accounting_figures", len(figures)),
		zap.Int("discrepancies", discrepancies),
		zap.Duration("duration", time.Since(start)))
}

// loadLocalLevels pages through every local stock level row
func (j *StockReconcileJob) loadLocalLevels(ctx context.Context) ([]domain.StockLevel, error) {
	const pageSize = 500

	var all []domain.StockLevel
	for skip := 0; ; skip += pageSize {
		page, _, err := j.levels.List(ctx, "", "", skip, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

// RegisterStockReconcileJob registers the reconciliation job with the
// scheduler. The cronExpr should be a valid cron expression.
func RegisterStockReconcileJob(scheduler *Scheduler, source StockFigureSource, levels StockLevelLister, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewStockReconcileJob(source, levels, logger, timeout)
	return scheduler.AddJob(StockReconcileJobName, cronExpr, job.Run)
}
