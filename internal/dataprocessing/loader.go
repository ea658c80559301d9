package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"shopmetrics/pkg/contracts/domain"
)

// Loader owns the raw and processed tables of one data directory
type Loader struct {
	dataDir   string
	logger    *slog.Logger
	raw       *RawTables
	processed *ProcessedTables
}

// NewLoader creates a loader reading from dataDir
func NewLoader(dataDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		dataDir: dataDir,
		logger:  logger.With(slog.String("component", "data_loader")),
	}
}

// DataDir returns the directory the loader reads from
func (l *Loader) DataDir() string {
	return l.dataDir
}

// LoadRawData reads every source file concurrently. Payments are optional:
// a missing payments file yields an empty table. The loader's raw state is
// replaced only when all reads succeed, and processed state is discarded.
func (l *Loader) LoadRawData(ctx context.Context) (*RawTables, error) {
	start := time.Now()
	var raw RawTables

	g, gctx := errgroup.WithContext(ctx)
	path := func(file string) string { return filepath.Join(l.dataDir, file) }

	g.Go(func() (err error) {
		if err = gctx.Err(); err != nil {
			return err
		}
		raw.Orders, err = readTable(path(domain.FileOrders), domain.TableOrders,
			domain.OrdersRequiredColumns, parseRawOrder)
		return err
	})
	g.Go(func() (err error) {
		if err = gctx.Err(); err != nil {
			return err
		}
		raw.OrderItems, err = readTable(path(domain.FileOrderItems), domain.TableOrderItems,
			domain.OrderItemsRequiredColumns, parseRawOrderItem)
		return err
	})
	g.Go(func() (err error) {
		if err = gctx.Err(); err != nil {
			return err
		}
		raw.Products, err = readTable(path(domain.FileProducts), domain.TableProducts,
			domain.ProductsRequiredColumns, parseProduct)
		return err
	})
	g.Go(func() (err error) {
		if err = gctx.Err(); err != nil {
			return err
		}
		raw.Customers, err = readTable(path(domain.FileCustomers), domain.TableCustomers,
			domain.CustomersRequiredColumns, parseCustomer)
		return err
	})
	g.Go(func() (err error) {
		if err = gctx.Err(); err != nil {
			return err
		}
		raw.Reviews, err = readTable(path(domain.FileReviews), domain.TableReviews,
			domain.ReviewsRequiredColumns, parseRawReview)
		return err
	})
	g.Go(func() (err error) {
		if err = gctx.Err(); err != nil {
			return err
		}
		p := path(domain.FilePayments)
		if _, statErr := os.Stat(p); errors.Is(statErr, fs.ErrNotExist) {
			raw.Payments = domain.NewTable[domain.Payment](domain.TablePayments, nil, nil)
			return nil
		}
		raw.Payments, err = readTable(p, domain.TablePayments,
			domain.PaymentsRequiredColumns, parsePayment)
		return err
	})

	if err := g.Wait(); err != nil {
		l.logger.ErrorContext(ctx, "failed to load raw data",
			slog.String("data_dir", l.dataDir),
			slog.String("error", err.Error()))
		return nil, err
	}

	l.raw = &raw
	l.processed = nil

	attrs := []any{slog.String("data_dir", l.dataDir), slog.Duration("duration", time.Since(start))}
	for name, n := range raw.Counts() {
		attrs = append(attrs, slog.Int(name, n))
	}
	l.logger.InfoContext(ctx, "raw data loaded", attrs...)

	return &raw, nil
}

// SetRawData replaces the raw tables directly, bypassing the file system.
// Tables left nil count as not loaded.
func (l *Loader) SetRawData(raw RawTables) {
	l.raw = &raw
	l.processed = nil
}

// RawData returns the loaded raw tables, or nil before the first load
func (l *Loader) RawData() *RawTables {
	return l.raw
}

// ProcessedData returns the processed tables, or nil before processing
func (l *Loader) ProcessedData() *ProcessedTables {
	return l.processed
}

// ProcessAllData runs every cleaner in dependency order and replaces the
// processed tables with the result. Payments are cleaned only when loaded.
func (l *Loader) ProcessAllData() (*ProcessedTables, error) {
	var out ProcessedTables
	var err error

	if out.Orders, err = l.CleanOrders(); err != nil {
		return nil, err
	}
	if out.OrderItems, err = l.CleanOrderItems(); err != nil {
		return nil, err
	}
	if out.Products, err = l.CleanProducts(); err != nil {
		return nil, err
	}
	if out.Customers, err = l.CleanCustomers(); err != nil {
		return nil, err
	}
	if out.Reviews, err = l.CleanReviews(); err != nil {
		return nil, err
	}
	if l.raw.Payments != nil {
		if out.Payments, err = l.CleanPayments(); err != nil {
			return nil, err
		}
	}

	l.processed = &out
	l.logger.Info("data processed", slog.Any("rows", out.Counts()))
	return &out, nil
}

// LoadAndProcessData loads and processes dataDir in one step
func LoadAndProcessData(ctx context.Context, dataDir string, logger *slog.Logger) (*Loader, *ProcessedTables, error) {
	loader := NewLoader(dataDir, logger)
	if _, err := loader.LoadRawData(ctx); err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", dataDir, err)
	}
	processed, err := loader.ProcessAllData()
	if err != nil {
		return nil, nil, fmt.Errorf("process %s: %w", dataDir, err)
	}
	return loader, processed, nil
}
