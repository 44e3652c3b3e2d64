package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dozersim/dozersim/mapdef"
	"github.com/dozersim/dozersim/mpm"
	"github.com/dozersim/dozersim/recorder"
	"github.com/dozersim/dozersim/session"
	"github.com/dozersim/dozersim/settings"
	"github.com/dozersim/dozersim/transport"
	"github.com/dozersim/dozersim/vehicle"
	"github.com/dozersim/dozersim/worker"
	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/sirupsen/logrus"
)

const configPath = "config.toml"

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})

	conf, err := settings.LoadOrCreate(configPath)
	if err != nil {
		log.Fatalf("error reading config: %v", err)
	}
	if conf.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			log.Errorf("unable to initialise sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if conf.Pprof || os.Getenv("PPROF_ENABLED") != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr("localhost:8080"))
		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	asset, err := openMap(conf, log)
	if err != nil {
		log.Fatalf("error loading map: %v", err)
	}

	sess := session.New(log, session.ConfigFromSettings(conf))
	sess.AddMap(asset)

	var rec *recorder.Recorder
	if conf.Recorder.Enabled {
		if rec, err = recorder.Open(conf.Recorder.SqlitePath, log); err != nil {
			log.Fatalf("error opening recorder: %v", err)
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.Errorf("error closing recorder: %v", err)
			}
		}()
	}

	var srv *transport.Server
	if conf.Transport.Enabled {
		srv = transport.NewServer(log)
		go func() {
			defer sentry.Recover()
			if err := srv.ListenAndServe(ctx, conf.Transport.Address); err != nil {
				log.Errorf("transport stopped: %v", err)
			}
		}()
	}

	run(ctx, log, conf, sess, asset, srv, rec)
	log.Info("sandbox stopped")
}

// openMap returns the map the sandbox runs on. TOML maps are loaded on the worker pool, the
// simulation keeps ticking with an empty world until the load completes.
func openMap(conf settings.Settings, log *logrus.Logger) (*mapdef.Asset, error) {
	switch {
	case conf.Map.Path != "":
		asset := mapdef.PendingAsset(conf.Map.Path)
		worker.Submit(func() {
			if err := asset.LoadNow(); err != nil {
				log.Errorf("unable to load map %s: %v", asset.Path, err)
			}
		})
		return asset, nil
	case conf.Map.BrokenRocksCSV != "" && conf.Map.UnbrokenRocksCSV != "":
		rocks, blocks, err := mapdef.LoadAllRocks(conf.Map.UnbrokenRocksCSV, conf.Map.BrokenRocksCSV)
		if err != nil {
			return nil, err
		}
		d, err := mapdef.FromBlocks(rocks, blocks, float32(conf.Map.SamplingInterval))
		if err != nil {
			return nil, err
		}
		log.Infof("generated %dx%d heightmap from %d blocks and %d rocks", d.VerticesWidth, d.VerticesLength, len(blocks), len(rocks))
		return mapdef.NewAsset(d), nil
	default:
		size := float32(conf.Map.FlatSize)
		return mapdef.NewAsset(mapdef.Flat(size, size)), nil
	}
}

// run ticks the session at the configured rate until ctx is cancelled.
func run(ctx context.Context, log *logrus.Logger, conf settings.Settings, sess *session.Session, asset *mapdef.Asset, srv *transport.Server, rec *recorder.Recorder) {
	ticker := time.NewTicker(time.Second / time.Duration(conf.Simulation.TickRate))
	defer ticker.Stop()

	var (
		populated bool
		recorded  bool
		last      = time.Now()
	)
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !populated {
				if def := asset.Def(); def != nil {
					populate(log, sess, def)
					if rec != nil {
						if _, err := rec.StartRun(def.Hash()); err != nil {
							log.Errorf("unable to start recording: %v", err)
							rec = nil
						}
					}
					populated = true
				}
			}

			var input vehicle.InputState
			if srv != nil {
				input = srv.Input()
			}
			frame := sess.Tick(input, float32(now.Sub(last).Seconds()))
			last = now

			if srv != nil {
				srv.Broadcast(frame)
			}
			if rec != nil && populated {
				if !recorded && sess.Seeder().State() == mpm.StateReady {
					rec.RecordSeeding(sess.Seeder().Context())
					recorded = true
				}
				rec.RecordFrame(frame)
			}
		}
	}
}

// populate builds the terrain of def and spawns one vehicle of every kind next to the spawn
// point, facing the centre of the map.
func populate(log *logrus.Logger, sess *session.Session, def *mapdef.MapDef) {
	mapdef.Build(sess.World, def)
	presets := []vehicle.Preset{vehicle.Bulldozer(), vehicle.Excavator(), vehicle.Truck()}
	for i, pos := range spawnPositions(def, len(presets)) {
		id := sess.SpawnVehicle(presets[i], pos, spawnRotation)
		log.Infof("spawned %s %d at %v", presets[i].Kind, id, pos)
	}
}
