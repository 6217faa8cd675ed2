// Command emnrd runs the spectral noise-reduction engine against a WAV
// capture, optionally exposing Prometheus metrics and republishing
// per-frame telemetry over MQTT.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cwsl/emnr/emnr"
	"github.com/cwsl/emnr/internal/wav"
)

func main() {
	configPath := flag.String("config", "", "path to emnrd YAML config (optional, defaults used if absent)")
	inPath := flag.String("in", "", "input WAV file to process")
	outPath := flag.String("out", "out.wav", "output WAV file to write")
	debug := flag.Bool("debug", false, "set logging.debug (emnrd logs the same messages either way)")
	flag.Parse()

	if *inPath == "" {
		log.Fatal("emnrd: -in is required")
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("emnrd: %v", err)
		}
		cfg = loaded
	}
	if *debug {
		cfg.Logging.Debug = true
	}

	instanceID := uuid.New().String()
	log.Printf("emnrd starting, instance=%s", instanceID)

	engineCfg := cfg.EngineConfig()
	if cfg.Tables.GainSurfacesPath != "" || cfg.Tables.ZetaHatPath != "" {
		tables, err := loadTables(cfg.Tables)
		if err != nil {
			log.Printf("emnrd: loading sidecar tables: %v (falling back to defaults)", err)
		} else {
			engineCfg.Tables = tables
		}
	}

	eng, err := emnr.NewEngine(engineCfg)
	if err != nil {
		log.Fatalf("emnrd: building engine: %v", err)
	}

	var metrics *Metrics
	if cfg.Prometheus.Enabled {
		metrics = NewMetrics()
		metrics.SetActiveMethods(int(engineCfg.GainMethod), int(engineCfg.NoiseMethod))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{Addr: cfg.Prometheus.Listen, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("emnrd: prometheus server: %v", err)
			}
		}()
		log.Printf("emnrd: prometheus metrics listening on %s", cfg.Prometheus.Listen)
	}

	var telemetry *TelemetryPublisher
	if cfg.MQTT.Enabled {
		telemetry, err = NewTelemetryPublisher(cfg.MQTT)
		if err != nil {
			log.Printf("emnrd: mqtt disabled: %v", err)
		} else {
			defer telemetry.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, eng, engineCfg, *inPath, *outPath, metrics, telemetry); err != nil {
		log.Fatalf("emnrd: %v", err)
	}
}

// run drives the engine over the input WAV file one host block at a time
// until the capture is exhausted or ctx is cancelled.
func run(ctx context.Context, eng *emnr.Engine, cfg emnr.EngineConfig, inPath, outPath string, metrics *Metrics, telemetry *TelemetryPublisher) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	samples, rate, err := wav.Read(data)
	if err != nil {
		return err
	}
	if rate != cfg.SampleRate {
		log.Printf("emnrd: input sample rate %d differs from configured %d; processing unchanged", rate, cfg.SampleRate)
	}

	block := make([]float64, cfg.BlockSize)
	out := make([]float64, cfg.BlockSize)
	var processed []float64

	for pos := 0; pos+cfg.BlockSize <= len(samples); pos += cfg.BlockSize {
		select {
		case <-ctx.Done():
			log.Print("emnrd: interrupted, flushing partial output")
			return os.WriteFile(outPath, wav.Write(processed, rate), 0o644)
		default:
		}

		copy(block, samples[pos:pos+cfg.BlockSize])
		eng.Push(0, block)
		eng.Pull(out)
		processed = append(processed, out...)

		if metrics != nil {
			metrics.ObserveFrame(meanAbs(out), 0, cfg.OutputGain)
		}
		if telemetry != nil {
			telemetry.Publish(meanAbs(out), 0, cfg.OutputGain, int(cfg.GainMethod), int(cfg.NoiseMethod))
		}
	}

	return os.WriteFile(outPath, wav.Write(processed, rate), 0o644)
}

func meanAbs(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range xs {
		if v < 0 {
			v = -v
		}
		sum += v
	}
	return sum / float64(len(xs))
}

func loadTables(t TablesSection) (*emnr.TableStore, error) {
	var gg, zh io.Reader
	if t.GainSurfacesPath != "" {
		f, err := os.Open(t.GainSurfacesPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		gg = f
	}
	if t.ZetaHatPath != "" {
		f, err := os.Open(t.ZetaHatPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		zh = f
	}
	return emnr.LoadTables(gg, zh), nil
}
