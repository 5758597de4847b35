// Command matrix-clock drives a network-synchronized clock on an LED matrix
// panel, with remote configuration and message injection over MQTT.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/matrix-clock/internal/buttons"
	"github.com/sweeney/matrix-clock/internal/clock"
	"github.com/sweeney/matrix-clock/internal/config"
	"github.com/sweeney/matrix-clock/internal/display"
	"github.com/sweeney/matrix-clock/internal/light"
	"github.com/sweeney/matrix-clock/internal/msgqueue"
	"github.com/sweeney/matrix-clock/internal/mqtt"
	"github.com/sweeney/matrix-clock/internal/render"
	"github.com/sweeney/matrix-clock/internal/sched"
	"github.com/sweeney/matrix-clock/internal/status"
	"github.com/sweeney/matrix-clock/internal/web"
)

// buttonPoll is the brightness button sampling cadence. At one Step per
// poll this sweeps the full range in about ten seconds.
const buttonPoll = 100 * time.Millisecond

func main() {
	provPath := flag.String("provisioning", "/etc/matrix-clock/provisioning.yaml", "Provisioning file path")
	confPath := flag.String("config", "/var/lib/matrix-clock/config.json", "Runtime config record path")
	driverName := flag.String("display", "term", `Display driver: "term" or "null"`)
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	noLight := flag.Bool("no-light", false, "Run without the ambient light sensor")
	noButtons := flag.Bool("no-buttons", false, "Run without the brightness buttons")
	printConfig := flag.Bool("print-config", false, "Print the effective config and exit")

	flag.Parse()

	if err := run(*provPath, *confPath, *driverName, *httpAddr, *noLight, *noButtons, *printConfig); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(provPath, confPath, driverName, httpAddr string, noLight, noButtons, printConfig bool) error {
	prov, err := config.LoadProvisioning(provPath)
	if err != nil {
		return fmt.Errorf("load provisioning: %w", err)
	}

	store := config.NewStore(confPath, prov.Defaults())
	cfg, err := store.Load()
	if err != nil {
		if !errors.Is(err, config.ErrCorruptConfig) {
			return fmt.Errorf("load config: %w", err)
		}
		// Corrupt record: the store already fell back to defaults.
		log.Printf("config: %v, running with defaults", err)
	}

	if printConfig {
		data, _ := json.MarshalIndent(cfg, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	driver, err := newDriver(driverName)
	if err != nil {
		return err
	}
	defer driver.Close()

	var lightReader light.Reader
	if !noLight {
		r, err := light.NewRealReader(prov.Sensor.Path)
		if err != nil {
			// Degraded: brightness stays at the middle of the range.
			log.Printf("light sensor unavailable, using mid-range brightness: %v", err)
		} else {
			lightReader = r
			defer r.Close()
		}
	}

	var buttonReader buttons.Reader
	if !noButtons {
		r, err := buttons.NewRealReader(prov.Buttons.Chip, prov.Buttons.PinUp, prov.Buttons.PinDown)
		if err != nil {
			log.Printf("brightness buttons unavailable: %v", err)
		} else {
			buttonReader = r
			defer r.Close()
		}
	}

	src := clock.New(clock.NTPQuery, prov.SyncInterval(), prov.Tuning.StaleThreshold,
		prov.BackoffFloor(), prov.BackoffCap())

	backoff := mqtt.NewBackoff(prov.BackoffFloor(), prov.BackoffCap())
	link := mqtt.NewRealLink(cfg.Broker, prov.DeviceID, cfg.Username, cfg.Password, backoff)
	defer link.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		DeviceID:  prov.DeviceID,
		Broker:    cfg.Broker,
		NTPServer: cfg.NTPServer,
		FrameMs:   prov.FramePeriod().Milliseconds(),
		SensorMs:  prov.SensorInterval().Milliseconds(),
		HTTPAddr:  httpAddr,
	})

	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: device=%s broker=%s ntp=%s frame=%v sensor=%v",
		prov.DeviceID, cfg.Broker, cfg.NTPServer, prov.FramePeriod(), prov.SensorInterval())

	frameTicker := time.NewTicker(prov.FramePeriod())
	defer frameTicker.Stop()
	sensorTicker := time.NewTicker(prov.SensorInterval())
	defer sensorTicker.Stop()
	buttonTicker := time.NewTicker(buttonPoll)
	defer buttonTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	s := sched.New(sched.Deps{
		Store:    store,
		Clock:    src,
		Meter:    light.NewMeter(light.DefaultAlpha),
		Light:    lightReader,
		Queue:    msgqueue.New(prov.Tuning.QueueCapacity),
		Link:     link,
		Renderer: render.New(),
		Driver:   driver,
		Buttons:  buttonReader,
		Tracker:  tracker,
	})
	return s.Run(time.Now, frameTicker.C, sensorTicker.C, buttonTicker.C, sigCh)
}

func newDriver(name string) (display.Driver, error) {
	switch name {
	case "term":
		return display.NewTermDriver(os.Stdout), nil
	case "null":
		return display.NullDriver{}, nil
	default:
		return nil, fmt.Errorf("unknown display driver %q", name)
	}
}
