package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sioled/sioled/internal/config"
	"github.com/sioled/sioled/internal/light"
	"github.com/sioled/sioled/internal/nct6795d"
	"github.com/sioled/sioled/internal/superio"
	"github.com/sioled/sioled/internal/superio/siotest"
	"github.com/sioled/sioled/internal/ws"
)

const deviceName = "nct6795d"

func main() {
	// ---- Flags (config.yaml can override most) ----
	var (
		addr       = flag.String("addr", ":8089", "HTTP listen address")
		driver     = flag.String("driver", "sio", "driver: sio | sim")
		basePort   = flag.Uint("base-port", 0, "probe only this base port (default: 0x4e then 0x2e)")
		red        = flag.Uint("r", 0, "initial red intensity (0..15)")
		green      = flag.Uint("g", 0, "initial green intensity (0..15)")
		blue       = flag.Uint("b", 0, "initial blue intensity (0..15)")
		configPath = flag.String("config", "", "path to config.yaml")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Load config.yaml (optional) ----
	var cfg *config.Config
	if *configPath != "" {
		if c, err := config.Load(*configPath); err != nil {
			log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
		} else {
			cfg = c
		}
	}

	// ---- Effective params (config overrides flags where set) ----
	eAddr := *addr
	eDriver := *driver
	eR, eG, eB := uint8(*red), uint8(*green), uint8(*blue)
	ports := nct6795d.DefaultPorts
	if *basePort != 0 {
		ports = []uint16{uint16(*basePort)}
	}
	if cfg != nil {
		if cfg.Listen != "" {
			eAddr = cfg.Listen
		}
		if cfg.Driver != "" {
			eDriver = cfg.Driver
		}
		if len(cfg.Ports) > 0 {
			ports = cfg.Ports
		}
		eR, eG, eB = cfg.Red, cfg.Green, cfg.Blue
	}

	// ---- Bus backend: real port I/O or simulated chip ----
	var io superio.PortIO
	switch eDriver {
	case "sio":
		io = superio.Ports{}
	case "sim":
		io = siotest.Board{siotest.New(ports[0], 0xd351)}
		log.Info().Msg("using simulated chip; no hardware will be touched")
	default:
		log.Fatal().Str("driver", eDriver).Msg("unknown driver")
	}
	bus := superio.New(io)

	// ---- Detection ----
	port, variant, err := nct6795d.Detect(bus, ports)
	if err != nil {
		log.Fatal().Err(err).Msg("chip detection failed")
	}
	log.Info().Str("variant", variant.String()).Uint16("port", port).Msg("chip detected")

	// ---- Controller ----
	prog := nct6795d.NewProgrammer(bus, port, variant)
	ctrl, err := light.New(prog, light.Config{
		Initial: [nct6795d.NumChannels]uint8{eR, eG, eB},
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("controller init failed")
	}

	// ---- HTTP routes ----
	state := ws.NewState(ctrl, deviceName, port, variant.String())
	mux := http.NewServeMux()
	mux.HandleFunc("/control", state.HandleControlWS)
	mux.HandleFunc("/health", state.HandleHealth)

	srv := &http.Server{
		Addr:         eAddr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", eAddr).Str("driver", eDriver).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Signals: SIGUSR1 as the resume hook, INT/TERM to quit ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	for s := range ch {
		if s == syscall.SIGUSR1 {
			log.Info().Msg("resume signal; reprogramming chip")
			if err := ctrl.Resume(); err != nil {
				log.Error().Err(err).Msg("resume reprogram failed")
			}
			continue
		}
		log.Info().Str("signal", s.String()).Msg("shutting down")
		break
	}
	_ = srv.Close()
}
