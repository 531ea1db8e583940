package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"motion-overlay/src/ambient"
	"motion-overlay/src/background"
	"motion-overlay/src/brightness"
	"motion-overlay/src/config"
	"motion-overlay/src/controller"
	"motion-overlay/src/eventloop"
	"motion-overlay/src/hotkey"
	"motion-overlay/src/logutil"
	"motion-overlay/src/messages"
	"motion-overlay/src/overlay"
	"motion-overlay/src/permission"
	"motion-overlay/src/popup"
	"motion-overlay/src/router"
	"motion-overlay/src/runtimeinit"
	"motion-overlay/src/session"
	"motion-overlay/src/singleinstance"
	"motion-overlay/src/tray"
)

type mainOptions struct {
	pauseBehavior string
	ambientSource string
	backend       string
	mode          string
	noBackground  bool
}

func main() {
	// Ensure DPI awareness before creating any windows or querying metrics
	enableDPIAwareness()

	// Lock main goroutine to its own OS thread so the tray keeps its
	// message queue to itself
	runtime.LockOSThread()

	if err := runWithArgs(normalizeLegacyArgs(os.Args)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"motion-overlay"}
	}
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "motion-overlay",
		Short:         "Warm translucent screen overlay against motion sickness",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.mode != "" {
				if _, err := controller.ParseMode(opts.mode); err != nil {
					return err
				}
			}
			return runResident(*opts)
		},
	}

	cmd.Flags().StringVar(&opts.pauseBehavior, "pause-behavior", "", "What to do on host sleep: persist or teardown")
	cmd.Flags().StringVar(&opts.ambientSource, "ambient-source", "", "Light sensor source: auto, dbus, sysfs or none")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "Overlay backend: auto, x11, windows or headless")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "Enable the overlay at start: manual or sensor")
	cmd.Flags().BoolVar(&opts.noBackground, "no-background", false, "Do not run the accessibility-bound background overlay")

	return cmd
}

// normalizeLegacyArgs maps single-dash long flags (-mode) to cobra's --mode.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	normalized := make([]string, len(args))
	copy(normalized, args)

	long := []string{"pause-behavior", "ambient-source", "backend", "mode", "no-background"}
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range long {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}
	return normalized
}

func runResident(opts mainOptions) error {
	// Load .env early so SINGLEINSTANCE_PORT_* are available for pre-flight
	_, _ = config.Load()
	detectCtx, detectCancel := context.WithTimeout(context.Background(), time.Second)
	port, running := singleinstance.DetectResidentPort(detectCtx)
	detectCancel()
	if running {
		log.Printf("Pre-flight: resident answered on port %d", port)
		return fmt.Errorf("motion-overlay is already running on port %d", port)
	}
	startPort, _ := singleinstance.PortRange()

	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			PauseBehaviorOverride: opts.pauseBehavior,
			AmbientSourceOverride: opts.ambientSource,
			BackendOverride:       opts.backend,
			DisableBackground:     opts.noBackground,
		},
		SetupLogging:             logutil.Setup,
		ShowBlockingBackendError: true,
	})
	if err != nil {
		return err
	}
	cfg := rt.Config
	logMonitorConfiguration()
	log.Printf("Motion overlay initialized")
	log.Printf("Hotkeys: toggle=%s filter=%s dim=%s brighten=%s", cfg.ToggleHotkey, cfg.FilterHotkey, cfg.DimHotkey, cfg.BrightenHotkey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notify := func(msg string) { _ = popup.Show(msg) }

	var loop *eventloop.Loop
	post := func(m messages.Message) bool { return loop.Post(m) }

	ctl := controller.New(controller.Options{
		Surface:    overlay.NewSurface("foreground", rt.Backend, rt.Gate.CanDrawOverlay),
		Gate:       rt.Gate,
		Store:      rt.Prefs,
		Sensor:     rt.Sensor,
		Pause:      rt.Pause,
		SampleSink: func(s ambient.Sample) { loop.PostSample(s) },
		Notify:     notify,
	})

	var bg *background.Service
	if cfg.BackgroundOverlay {
		bg = background.New(overlay.NewSurface("background", rt.Backend, rt.Gate.CanDrawOverlay), notify)
	}

	trayIcon, err := tray.New(tray.Config{
		Title:   "Motion Overlay",
		Tooltip: fmt.Sprintf("Motion Overlay - %s to toggle", cfg.ToggleHotkey),
		Post:    post,
		OnExit:  cancel,
	})
	if err != nil {
		return err
	}

	srv := singleinstance.NewServer()
	loop = eventloop.New(eventloop.Options{
		Controller: ctl,
		Background: bg,
		Router:     router.NewRouter(brightness.Default()),
		Server:     srv,
		Notify:     notify,
		OnChange:   trayIcon.Update,
	})
	trayIcon.SetAboutExtra(fmt.Sprintf("Resident TCP port: %d", startPort))
	trayIcon.SetAboutExtra("Hotkeys: " + cfg.ToggleHotkey + " toggle, " + cfg.FilterHotkey + " filter")

	go trayIcon.Run()
	defer trayIcon.Destroy()

	stopHotkeys := hotkey.Listen(hotkeyBindings(cfg, opts.mode, post))
	defer stopHotkeys()

	if err := session.Watch(ctx, session.Handlers{
		OnSleep: func() { post(messages.HostPaused{}) },
		OnWake:  func() { post(messages.HostResumed{}) },
	}); err != nil {
		log.Printf("Sleep/wake tracking disabled: %v", err)
	}

	if bg != nil {
		a11y := permission.DefaultProbes(nil).Accessibility
		go background.Watch(ctx, a11y, background.DefaultPollInterval, func(on bool) {
			post(messages.AccessibilityChanged{Enabled: on})
		})
	}

	if opts.mode != "" {
		post(messages.EnableRequested{Mode: opts.mode})
	}

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	if err := loop.Run(ctx); err != nil && err != context.Canceled {
		log.Printf("event loop stopped: %v", err)
		return err
	}
	return nil
}

// hotkeyBindings maps the configured combinations to loop messages. The
// toggle hotkey enables in mode (manual when empty).
func hotkeyBindings(cfg *config.Config, mode string, post func(messages.Message) bool) []hotkey.Binding {
	if mode == "" {
		mode = "manual"
	}
	bind := func(combo string, msg messages.Message) hotkey.Binding {
		return hotkey.Binding{Combo: combo, Callback: func() { post(msg) }}
	}
	return []hotkey.Binding{
		bind(cfg.ToggleHotkey, messages.ToggleRequested{Mode: mode}),
		bind(cfg.FilterHotkey, messages.ActionRequested{Action: messages.ActionAdjustFilter}),
		bind(cfg.DimHotkey, messages.LevelChanged{Level: -10, Delta: true}),
		bind(cfg.BrightenHotkey, messages.LevelChanged{Level: 10, Delta: true}),
	}
}
