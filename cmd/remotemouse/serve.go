package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"remotemouse/internal/accel"
	"remotemouse/internal/api"
	"remotemouse/internal/config"
	"remotemouse/internal/input"
	"remotemouse/internal/logging"
	"remotemouse/internal/metrics"
	"remotemouse/internal/network"
	"remotemouse/internal/osutils"
	"remotemouse/internal/session"
	"remotemouse/internal/tray"
)

// serveFlags are the command line overrides of the config file
type serveFlags struct {
	listen           string
	backend          string
	api              bool
	apiAddr          string
	tray             bool
	logFile          string
	idleTimeout      time.Duration
	fatalOnBadHeader bool
	noAccel          bool
	openFirewall     bool
}

func serveCmd(configPath *string) *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay (default)",
		Long: `Listen for a client and inject its pointer commands locally.

Clients are served one at a time. Settings come from the config file, then
REMOTEMOUSE_* environment variables, then these flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			cfg := mgr.Get()
			applyServeFlags(cmd.Flags(), &flags, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runServe(cfg, flags.openFirewall)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&flags.listen, "listen", "l", "", "relay listen address (default \":1978\")")
	fs.StringVarP(&flags.backend, "backend", "b", "", "input backend: native or log")
	fs.BoolVar(&flags.api, "api", false, "enable the local status API")
	fs.StringVar(&flags.apiAddr, "api-addr", "", "status API address (default \"127.0.0.1:19780\")")
	fs.BoolVar(&flags.tray, "tray", false, "show a system tray icon")
	fs.StringVar(&flags.logFile, "log-file", "", "also write the log to this file, rotated by size")
	fs.DurationVar(&flags.idleTimeout, "idle-timeout", 0, "drop a client silent for this long (0 = never)")
	fs.BoolVar(&flags.fatalOnBadHeader, "fatal-on-bad-header", false, "exit when a client sends an undecodable frame header")
	fs.BoolVar(&flags.noAccel, "no-accel", false, "relay motion without acceleration")
	fs.BoolVar(&flags.openFirewall, "open-firewall", false, "add an inbound firewall rule for the relay port (Windows)")

	return cmd
}

// applyServeFlags copies the flags the user set over cfg
func applyServeFlags(fs *pflag.FlagSet, flags *serveFlags, cfg *config.Config) {
	if fs.Changed("listen") {
		cfg.ListenAddr = flags.listen
	}
	if fs.Changed("backend") {
		cfg.Backend = flags.backend
	}
	if fs.Changed("api") {
		cfg.API.Enabled = flags.api
	}
	if fs.Changed("api-addr") {
		cfg.API.Addr = flags.apiAddr
		cfg.API.Enabled = true
	}
	if fs.Changed("tray") {
		cfg.Tray = flags.tray
	}
	if fs.Changed("log-file") {
		cfg.Log.File = flags.logFile
	}
	if fs.Changed("idle-timeout") {
		cfg.IdleTimeout = config.Duration{Duration: flags.idleTimeout}
	}
	if fs.Changed("fatal-on-bad-header") {
		cfg.FatalOnBadHeader = flags.fatalOnBadHeader
	}
	if fs.Changed("no-accel") {
		cfg.Accel.Enabled = !flags.noAccel
	}
}

func runServe(cfg *config.Config, openFirewall bool) error {
	closer, err := logging.Setup(logging.Options{
		File:      cfg.Log.File,
		MaxSizeKB: int64(cfg.Log.MaxSizeKB),
		MaxRolls:  cfg.Log.MaxRolls,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	log.Printf("remotemouse %s starting (backend=%s, accel=%v)", version, cfg.Backend, cfg.Accel.Enabled)

	if openFirewall {
		if err := osutils.EnsureFirewallRule(listenPort(cfg.ListenAddr)); err != nil {
			log.Printf("Warning: %v", err)
		}
	}

	inj, err := input.Open(cfg.Backend, cfg.DeviceName)
	if err != nil {
		return fmt.Errorf("open input backend: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := newRelay(cfg, inj)
	defer r.close()

	if !cfg.Tray {
		return r.run(ctx)
	}

	// systray owns the main goroutine; the relay runs beside it
	t := tray.New("remotemouse")
	t.AddMenuItem("Quit", stop)
	r.tray = t

	errc := make(chan error, 1)
	go func() {
		errc <- r.run(ctx)
		t.Stop()
	}()
	t.Run()
	stop()
	return <-errc
}

// relay wires the listener, input device, status API and tray together
type relay struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	device  *input.Device
	server  *network.Server
	api     *api.Server
	apiLn   net.Listener
	tray    *tray.Tray
}

func newRelay(cfg *config.Config, inj input.Injector) *relay {
	r := &relay{
		cfg:     cfg,
		metrics: metrics.New(),
		device:  input.NewDevice(inj),
	}

	var opts []accel.Option
	if !cfg.Accel.Enabled {
		opts = append(opts, accel.Disabled())
	}
	disp := session.NewDispatcher(accel.New(cfg.AccelParams(), opts...), r.metrics)

	r.server = network.NewServer(cfg.ListenAddr, disp, r.device, session.Options{
		IdleTimeout: cfg.IdleTimeout.Duration,
		Metrics:     r.metrics,
	})
	r.server.FatalOnBadHeader = cfg.FatalOnBadHeader
	r.server.OnConnect = func(remote string) { r.sessionChanged(remote, true, nil) }
	r.server.OnDisconnect = func(remote string, err error) { r.sessionChanged(remote, false, err) }

	if cfg.API.Enabled {
		r.api = api.NewServer(cfg.API.Addr, r.server, r.metrics)
	}

	r.device.OnFlush(func(events []input.Event) {
		for _, ev := range events {
			r.metrics.InputEvent(ev.Type)
		}
		if r.api != nil {
			r.api.BroadcastInput(events)
		}
	})
	return r
}

func (r *relay) sessionChanged(remote string, connected bool, err error) {
	if r.tray != nil {
		r.tray.SetStatus(tray.StatusLine(remote, connected))
	}
	if r.api != nil {
		r.api.BroadcastSession(remote, connected, err)
	}
}

// bind opens the relay and API sockets so their addresses are known
// before serving
func (r *relay) bind(ctx context.Context) error {
	if _, err := r.server.Listen(ctx); err != nil {
		return err
	}
	if r.api != nil && r.apiLn == nil {
		var lc net.ListenConfig
		ln, err := lc.Listen(ctx, "tcp", r.cfg.API.Addr)
		if err != nil {
			// the relay works without its status API
			log.Printf("API: failed to listen on %s: %v", r.cfg.API.Addr, err)
			r.api = nil
		} else {
			r.apiLn = ln
		}
	}
	return nil
}

// run serves until ctx is cancelled or the listener fails
func (r *relay) run(ctx context.Context) error {
	if err := r.bind(ctx); err != nil {
		return err
	}
	if r.tray != nil {
		r.tray.SetStatus(tray.StatusLine("", false))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.server.Serve(ctx)
	})
	if r.api != nil {
		g.Go(func() error {
			if err := r.api.Serve(ctx, r.apiLn); err != nil {
				log.Printf("Warning: status API stopped: %v", err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (r *relay) close() {
	if r.api != nil {
		r.api.Close()
	}
	if err := r.device.Close(); err != nil {
		log.Printf("Warning: closing input device: %v", err)
	}
}

// listenPort extracts the port of a listen address, defaulting to the
// relay's well-known port
func listenPort(addr string) int {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return network.DefaultPort
	}
	p, err := strconv.Atoi(port)
	if err != nil || p == 0 {
		return network.DefaultPort
	}
	return p
}
