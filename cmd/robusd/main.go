// Command robusd runs a single robus node against a real RS-485 serial
// line, bridging it to Redis/Prometheus telemetry and an optional frame
// recording file (SPEC_FULL.md component C12). It is the runnable analogue of the
// demonstration button/LED/sniffer nodes that spec.md §1 declares out of
// scope for the core itself.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robus-bus/robus/pkg/physical"
	"github.com/robus-bus/robus/pkg/recorder"
	"github.com/robus-bus/robus/pkg/robus"
	"github.com/robus-bus/robus/pkg/telemetry"
)

var (
	serialDevice = flag.String("serial", "/dev/ttyUSB0", "Serial device path")
	baudRate     = flag.Int("baud", 57600, "Serial baud rate")
	driverEnable = flag.String("de-pin", "GPIO17", "Driver-enable GPIO pin name")
	receiverEnable = flag.String("re-pin", "GPIO27", "Receiver-enable GPIO pin name")

	nodeAlias = flag.String("alias", "gate", "Alias of this node's own gateway module")
	nodeID    = flag.Uint("id", 1, "Bus id of this node's gateway module")

	redisAddr = flag.String("redis-addr", "localhost:6379", "Redis server address")
	redisPass = flag.String("redis-pass", "", "Redis password")
	redisDB   = flag.Int("redis-db", 0, "Redis database number")

	metricsAddr = flag.String("metrics-addr", ":9100", "Prometheus metrics listen address")

	recordPath = flag.String("record", "", "If set, append every frame the sniffer module receives (broadcast and id-addressed) as CBOR to this file")
)

func main() {
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Printf("Starting robus node daemon")
	log.Printf("Serial device: %s at %d baud", *serialDevice, *baudRate)
	log.Printf("DE pin: %s, RE pin: %s", *driverEnable, *receiverEnable)

	sink, err := telemetry.NewSink(*redisAddr, *redisPass, *redisDB, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer sink.Close()
	log.Printf("Connected to Redis at %s", *redisAddr)

	adapter, err := physical.NewAdapter(physical.Config{
		Device:            *serialDevice,
		Baud:              *baudRate,
		DriverEnablePin:   *driverEnable,
		ReceiverEnablePin: *receiverEnable,
	})
	if err != nil {
		log.Fatalf("Failed to open serial line: %v", err)
	}
	defer adapter.Close()
	log.Printf("Serial line open")

	core := robus.Init(adapter)
	core.SetTelemetry(sink)

	gate, err := core.CreateModule(*nodeAlias, robus.Gate, func(msg robus.Message) {
		log.Printf("gate: received command=%s from=%d data=%v", msg.Header.Command, msg.Header.Source, msg.Data)
	})
	if err != nil {
		log.Fatalf("Failed to create gate module: %v", err)
	}
	core.SetModuleID(gate, uint16(*nodeID))

	if *recordPath != "" {
		f, err := os.OpenFile(*recordPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("Failed to open record file: %v", err)
		}
		defer f.Close()

		rec := recorder.New(f)
		sniffer, err := core.CreateModule("sniffer", robus.Sniffer, rec.Observe)
		if err != nil {
			log.Fatalf("Failed to create sniffer module: %v", err)
		}
		core.SetModuleID(sniffer, 0)
		log.Printf("Recording sniffed frames to %s", *recordPath)
	}

	go physical.Pump(adapter, core)

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.Printf("Metrics listening on %s", *metricsAddr)
		if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("Shutting down...")
}
