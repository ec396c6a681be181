package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tallworlds/cubicgen/server"
	"github.com/tallworlds/cubicgen/server/block/cube"
)

func main() {
	path := flag.String("config", "config.toml", "path to the TOML configuration file")
	x := flag.Int("x", 0, "x coordinate of the cube to generate around")
	y := flag.Int("y", 4, "y coordinate of the cube to generate around")
	z := flag.Int("z", 0, "z coordinate of the cube to generate around")
	flag.Parse()

	log := slog.Default()
	uc, err := readConfig(*path)
	if err != nil {
		log.Error("read config: " + err.Error())
		os.Exit(1)
	}
	conf, err := uc.Config(log)
	if err != nil {
		log.Error("config: " + err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if uc.Metrics.Enabled {
		go serveMetrics(ctx, log, uc.Metrics.Address)
	}

	srv := conf.New()
	srv.Move(cube.CubePos{X: int32(*x), Y: int32(*y), Z: int32(*z)})
	if err := srv.Run(ctx); err != nil {
		log.Error("run: " + err.Error())
		os.Exit(1)
	}
}

// serveMetrics serves the Prometheus metrics at /metrics on the address passed until ctx is cancelled.
func serveMetrics(ctx context.Context, log *slog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	s := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
	log.Info("Serving metrics.", "addr", addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("serve metrics: " + err.Error())
	}
}

// readConfig reads the configuration from the file at path. If the file does not exist, it is created with
// the default configuration.
func readConfig(path string) (server.UserConfig, error) {
	c := server.DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		data, err := toml.Marshal(c)
		if err != nil {
			return c, fmt.Errorf("encode default config: %v", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return c, fmt.Errorf("create default config: %v", err)
		}
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %v", err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode config: %v", err)
	}
	return c, nil
}
