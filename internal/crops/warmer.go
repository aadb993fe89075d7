package crops

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Goopi7/crop-connect/internal/metrics"
)

// cronParser accepts standard five-field expressions and descriptors such as @every 10m
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Refresher reloads a cached catalogue
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Warmer refreshes the catalogue cache on a cron schedule
type Warmer struct {
	cron      *cron.Cron
	refresher Refresher
	schedule  string
	timeout   time.Duration
	logger    *zap.Logger
	mu        sync.Mutex
	running   bool
	entryID   cron.EntryID
}

// NewWarmer creates a warmer for refresher on the given cron schedule
func NewWarmer(refresher Refresher, schedule string, logger *zap.Logger) *Warmer {
	return &Warmer{
		cron:      cron.New(cron.WithParser(cronParser)),
		refresher: refresher,
		schedule:  schedule,
		timeout:   30 * time.Second,
		logger:    logger,
	}
}

// Start performs an initial refresh and schedules the periodic ones
func (w *Warmer) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("catalogue warmer already running")
	}

	entryID, err := w.cron.AddFunc(w.schedule, func() {
		runCtx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()
		w.Run(runCtx)
	})
	if err != nil {
		return fmt.Errorf("failed to add warm job: %w", err)
	}
	w.entryID = entryID

	w.Run(ctx)
	w.cron.Start()
	w.running = true

	w.logger.Info("Catalogue warmer started", zap.String("schedule", w.schedule))
	return nil
}

// Run refreshes the catalogue once
func (w *Warmer) Run(ctx context.Context) {
	count, err := w.refresher.Refresh(ctx)
	metrics.RecordCatalogWarm(err)
	if err != nil {
		w.logger.Error("Failed to refresh crop catalogue", zap.Error(err))
		return
	}
	w.logger.Info("Crop catalogue refreshed", zap.Int("crops", count))
}

// NextRun returns the next scheduled refresh, or the zero time when not running
func (w *Warmer) NextRun() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return time.Time{}
	}
	return w.cron.Entry(w.entryID).Next
}

// Stop stops the scheduler and waits for a running refresh to finish
func (w *Warmer) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	w.logger.Info("Stopping catalogue warmer")
	<-w.cron.Stop().Done()
	w.running = false
}

// ValidateSchedule validates a warm schedule expression
func ValidateSchedule(expr string) error {
	_, err := cronParser.Parse(expr)
	return err
}
