package recorder

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dozersim/dozersim/game"
	"github.com/dozersim/dozersim/mpm"
	"github.com/dozersim/dozersim/oerror"
	"github.com/dozersim/dozersim/session"
	"github.com/dozersim/dozersim/worker"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// closeTimeout bounds how long Close waits for pending writes.
	closeTimeout = 5 * time.Second
	// positionPrecision is the number of decimals kept for positions and speeds, a millimetre.
	positionPrecision = 3
	// frameQueueSize is the number of frame writes that may wait for the database. Frames
	// recorded while the queue is full are dropped.
	frameQueueSize = 1024
)

// Recorder persists run telemetry to a SQLite database. Writes are queued on a single worker so
// they keep their order. Frames are dropped rather than stalling the simulation when the
// database falls behind.
type Recorder struct {
	db      *gorm.DB
	log     *logrus.Logger
	pool    *worker.Pool
	run     Run
	dropped *atomic.Uint64
}

// Open opens the database at path, or an in-memory database when path is empty, and migrates
// the schema.
func Open(path string, log *logrus.Logger) (*Recorder, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        2000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open recorder database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	// SQLite allows a single writer, the simulation and the write worker share one connection.
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}
	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("migrate recorder schema: %w", err)
	}
	if path == "" {
		log.Info("Recording to an in-memory database")
	} else {
		log.Infof("Recording to %s", path)
	}
	return &Recorder{db: db, log: log, pool: worker.NewBuffered(1, frameQueueSize), dropped: atomic.NewUint64(0)}, nil
}

// StartRun creates a new run for the map with the given hash. Frames recorded afterwards belong
// to it.
func (r *Recorder) StartRun(mapHash uint64) (Run, error) {
	run := Run{MapHash: strconv.FormatUint(mapHash, 16), StartedAt: time.Now()}
	if err := r.db.Create(&run).Error; err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}
	r.run = run
	return run, nil
}

// Run returns the current run.
func (r *Recorder) Run() Run {
	return r.run
}

// RecordSeeding queues the seeding summary of ctx.
func (r *Recorder) RecordSeeding(ctx *mpm.Context) {
	summary := SeedingSummary{
		RunID:     r.run.ID,
		Total:     len(ctx.Particles) + ctx.Removed,
		Removed:   ctx.Removed,
		Simulated: len(ctx.Particles),
		Coupled:   len(ctx.Coupling),
	}
	r.pool.Submit(func() {
		if err := r.db.Create(&summary).Error; err != nil {
			r.log.Errorf("recorder: save seeding summary: %v", err)
		}
	})
}

// RecordFrame queues a row per vehicle of the frame.
func (r *Recorder) RecordFrame(f session.Frame) {
	if len(f.Vehicles) == 0 {
		return
	}
	rows := make([]VehicleFrame, 0, len(f.Vehicles))
	for _, v := range f.Vehicles {
		row := VehicleFrame{
			RunID:     r.run.ID,
			Tick:      f.Tick,
			VehicleID: uint32(v.ID),
			Kind:      v.Kind,
			Selected:  v.Selected,
			X:         game.Round32(v.Position.X(), positionPrecision),
			Y:         game.Round32(v.Position.Y(), positionPrecision),
			Z:         game.Round32(v.Position.Z(), positionPrecision),
			Speed:     game.Round32(v.Speed, positionPrecision),
		}
		for _, w := range v.Wheels {
			if w.InContact {
				row.Contacts++
			}
		}
		rows = append(rows, row)
	}
	queued := r.pool.TrySubmit(func() {
		if err := r.db.CreateInBatches(rows, 500).Error; err != nil {
			r.log.Errorf("recorder: save %d vehicle frames: %v", len(rows), err)
		}
	})
	if !queued {
		if n := r.dropped.Inc(); n == 1 || n%100 == 0 {
			r.log.Warnf("recorder: write queue full, %d frames dropped so far", n)
		}
	}
}

// Dropped returns the number of frames that were not recorded because the write queue was full.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Flush blocks until every queued write is done.
func (r *Recorder) Flush() {
	r.pool.Wait()
}

// Frames returns the vehicle frames of a run ordered by tick and vehicle.
func (r *Recorder) Frames(runID uint) ([]VehicleFrame, error) {
	var frames []VehicleFrame
	if err := r.db.Where("run_id = ?", runID).Order("tick, vehicle_id").Find(&frames).Error; err != nil {
		return nil, fmt.Errorf("query vehicle frames: %w", err)
	}
	return frames, nil
}

// Seeding returns the seeding summary of a run.
func (r *Recorder) Seeding(runID uint) (SeedingSummary, error) {
	var summary SeedingSummary
	if err := r.db.Where("run_id = ?", runID).First(&summary).Error; err != nil {
		return SeedingSummary{}, fmt.Errorf("query seeding summary: %w", err)
	}
	return summary, nil
}

// Runs returns every recorded run, oldest first.
func (r *Recorder) Runs() ([]Run, error) {
	var runs []Run
	if err := r.db.Order("id").Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return runs, nil
}

// Close waits for pending writes and closes the database.
func (r *Recorder) Close() error {
	done := make(chan struct{})
	go func() {
		r.pool.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(closeTimeout):
		return oerror.New("recorder: timed out flushing pending writes")
	}

	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}
