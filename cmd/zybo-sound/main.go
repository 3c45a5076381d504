// Command zybo-sound brings up the ZYBO SSM2602 sound card on the host
// framework, negotiates the configured smoke-test rates and holds the card
// until interrupted.
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
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zybo-sound/drivers/ssm2602"
	"zybo-sound/errcode"
	"zybo-sound/hwdesc"
	"zybo-sound/services/card"
	"zybo-sound/services/config"
	"zybo-sound/soc"
	"zybo-sound/x/logx"
	"zybo-sound/x/metrics"
)

func main() {
	board := flag.String("board", "zybo", "built-in board configuration")
	cfgPath := flag.String("config", "", "YAML file overriding the board configuration")
	flag.Parse()

	cfg, err := config.Load(*board, *cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logx.New(logx.FromEnv(cfg.Log), os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("zybo-sound failed", "err", err, "code", string(errcode.Of(err)))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	doc, err := hwdesc.Load(cfg.HWDesc)
	if err != nil {
		return err
	}
	nodes := doc.FindCompatible(cfg.Card.Compatible)
	if len(nodes) == 0 {
		return &errcode.E{C: errcode.MissingHardwareReference, Op: "probe", Msg: "no node compatible with " + cfg.Card.Compatible}
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if cfg.Metrics.Listen != "" {
		srv := serveMetrics(cfg.Metrics.Listen, reg, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	core := soc.NewCore()
	var resolver hwdesc.Phandles
	var controllers []*card.Controller
	bound := map[*hwdesc.Node]bool{}
	defer func() {
		for _, c := range controllers {
			if err := c.Teardown(); err != nil {
				log.Warn("teardown", "card", c.Card().Name, "err", err)
				continue
			}
			log.Info("card unregistered", "card", c.Card().Name)
		}
	}()

	for i, n := range nodes {
		if codecNode, ok := resolver.ResolveReference(n, card.PropCodec); ok && !bound[codecNode] {
			if err := bindCodec(core, codecNode, cfg.Codec.Address, log); err != nil {
				return err
			}
			bound[codecNode] = true
		}
		name := cfg.Card.Name
		if i > 0 {
			name += " #" + strconv.Itoa(i)
		}
		c := card.NewController(core, card.Config{
			CardName: name,
			Resolver: resolver,
			Metrics:  m,
			Log:      log,
		})
		if err := c.Probe(n); err != nil {
			return err
		}
		controllers = append(controllers, c)
		log.Info("card registered", "card", name, "node", n.Name)

		for _, rate := range cfg.Rates {
			err := core.HWParams(name, soc.HWParams{Stream: soc.Playback, Rate: rate, Channels: 2})
			if err != nil {
				log.Error("hw_params", "card", name, "rate", rate, "err", err, "code", string(errcode.Of(err)))
				continue
			}
			log.Info("hw_params", "card", name, "rate", rate, "family", card.FamilyOf(rate).String())
		}
	}

	<-ctx.Done()
	return nil
}

// bindCodec stands in for the codec driver's own probe.
func bindCodec(core *soc.Core, node *hwdesc.Node, addr uint16, log *slog.Logger) error {
	dev := ssm2602.New(traceI2C{log: log})
	if err := dev.Configure(ssm2602.Config{Address: addr}); err != nil {
		return fmt.Errorf("ssm2602 %s: %w", node, err)
	}
	return core.AddCodec(node, dev)
}

// traceI2C is the host stand-in for the board's I2C controller: every
// transfer is logged and acknowledged.
type traceI2C struct{ log *slog.Logger }

func (t traceI2C) Tx(addr uint16, w, r []byte) error {
	t.log.Debug("i2c tx", "addr", addr, "w", w, "rlen", len(r))
	for i := range r {
		r[i] = 0
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", "addr", addr, "err", err)
		}
	}()
	return srv
}
