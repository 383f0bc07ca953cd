package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flexfleet/flexdispatch/app"
	"github.com/flexfleet/flexdispatch/config"
	"github.com/flexfleet/flexdispatch/core/model"
	"github.com/flexfleet/flexdispatch/infra/logger"
	"github.com/flexfleet/flexdispatch/infra/mqtt"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Collect shortfalls from the broker, then dispatch on shutdown",
	Long: "Subscribes to the shortfall topic and accumulates call-ins for the " +
		"process day. On SIGINT or SIGTERM the collected orders are dispatched " +
		"and the run outputs are written.",
	RunE: listen,
}

func init() {
	rootCmd.AddCommand(listenCmd)
}

func listen(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.MQTT.Broker == "" {
		return fmt.Errorf("mqtt: broker is required for listen mode")
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Disconnect(250)
	feed, err := mqtt.NewShortfallFeed(client, cfg.MQTT)
	if err != nil {
		return fmt.Errorf("shortfall feed: %w", err)
	}
	defer feed.Close()
	svc.ServeMetrics(ctx)

	log := logger.New("listen")
	log.Infof("listening for shortfalls on %s", cfg.MQTT.ShortfallTopic)

	var orders []*model.Order
	for {
		select {
		case rec := <-feed.Records():
			order, err := rec.ToOrder(svc.Day(), svc.Classes())
			if err != nil {
				log.Warnf("dropping shortfall %s -> %s: %v", rec.Origin, rec.Destination, err)
				continue
			}
			orders = append(orders, order)
			log.Infof("shortfall received: %d rollcages %s -> %s",
				order.Total, order.Origin, order.Destination)
		case <-ctx.Done():
			if len(orders) == 0 {
				log.Infof("no shortfalls collected, nothing to dispatch")
				return nil
			}
			return svc.Dispatch(context.Background(), orders)
		}
	}
}
