package runtimeinit

import (
	"fmt"
	"log"
	"os"

	"motion-overlay/src/ambient"
	"motion-overlay/src/config"
	"motion-overlay/src/controller"
	"motion-overlay/src/notification"
	"motion-overlay/src/overlay"
	"motion-overlay/src/permission"
	"motion-overlay/src/prefs"
)

type Options struct {
	LoadOptions              config.LoadOptions
	SetupLogging             func(enable bool, dir string)
	ShowBlockingBackendError bool
	// LookupEnv overrides permission probe flags; nil uses the process env.
	LookupEnv permission.LookupEnvFunc
}

// Runtime is everything the resident builds before its event loop starts.
type Runtime struct {
	Config  *config.Config
	Prefs   *prefs.Store
	Gate    *permission.Gate
	Backend overlay.Backend
	Sensor  *ambient.Monitor
	Pause   controller.PauseBehavior
}

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := os.MkdirAll(cfg.StateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state dir %s: %w", cfg.StateDir, err)
	}
	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging, cfg.StateDir)
	}

	store, err := prefs.Open(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open preferences: %w", err)
	}

	pause, err := controller.ParsePauseBehavior(cfg.PauseBehavior)
	if err != nil {
		return nil, err
	}

	backend, err := overlay.NewBackend(cfg.Backend)
	if err != nil {
		if opts.ShowBlockingBackendError {
			notification.ShowBlockingError("Overlay unavailable", fmt.Sprintf("No overlay backend: %v\n\nSet OVERLAY_BACKEND=headless to run without a display.", err))
		}
		return nil, fmt.Errorf("overlay backend: %w", err)
	}

	source, err := ambient.NewSource(cfg.AmbientSource, cfg.AmbientPoll)
	if err != nil {
		return nil, err
	}

	gate := permission.NewGate(permission.DefaultProbes(opts.LookupEnv), cfg.RequireWriteSettings)

	log.Printf("runtime: backend=%s ambient=%s pause=%s state=%s level=%d",
		backend.Name(), cfg.AmbientSource, pause, cfg.StateDir, store.Level())
	if missing := gate.Missing(); len(missing) > 0 {
		log.Printf("runtime: missing permissions at startup: %s", permission.Describe(missing))
	}

	return &Runtime{
		Config:  cfg,
		Prefs:   store,
		Gate:    gate,
		Backend: backend,
		Sensor:  ambient.NewMonitor(source),
		Pause:   pause,
	}, nil
}
