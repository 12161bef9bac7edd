package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/devfolio-io/devfolio/internal/config"
	"github.com/devfolio-io/devfolio/internal/infra/logger"
	mq "github.com/devfolio-io/devfolio/internal/infra/queue"
	"github.com/devfolio-io/devfolio/internal/modules/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var EventsCmd = NewEventsCmd()

func NewEventsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "events",
		Short: "Inspect project lifecycle events",
	}
	root.AddCommand(newEventsWatchCmd())
	return root
}

func newEventsWatchCmd() *cobra.Command {
	var (
		amqpURL  string
		exchange string
		binding  string
		queue    string
	)
	c := &cobra.Command{
		Use:   "watch",
		Short: "Print project events as they are published",
		Long: `Bind a queue to the project events exchange and print every event.

Connection settings default to the server configuration (config.yaml and
DEVFOLIO_RABBITMQ_* variables). Without --queue a temporary queue is used.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if amqpURL == "" {
				amqpURL = cfg.RabbitMQ.URL
			}
			if exchange == "" {
				exchange = cfg.RabbitMQ.ExchangeName.ProjectEvents
			}

			log, err := logger.New(cfg.Log.Level)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			conn, err := mq.Dialer(amqpURL, cfg.RabbitMQ.EnableTLS)()
			if err != nil {
				return fmt.Errorf("connect rabbitmq: %w", err)
			}
			defer conn.Close()

			consumer, err := mq.NewConsumer(conn, exchange, queue, binding, 0, log, "devfolioctl")
			if err != nil {
				return err
			}
			defer consumer.Close()

			ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := c.OutOrStdout()
			fmt.Fprintln(out, MutedStyle.Render(fmt.Sprintf("watching %s (%s), ctrl-c to stop", exchange, binding)))
			err = consumer.Handle(ctx, func(ctx context.Context, routingKey string, body []byte) error {
				printEvent(out, log, routingKey, body)
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	c.Flags().StringVar(&amqpURL, "amqp-url", "", "RabbitMQ URL")
	c.Flags().StringVar(&exchange, "exchange", "", "events exchange")
	c.Flags().StringVar(&binding, "binding", "project.#", "routing key pattern")
	c.Flags().StringVar(&queue, "queue", "", "durable queue name")
	return c
}

// printEvent never fails so malformed messages are acked instead of requeued forever.
func printEvent(w io.Writer, log *zap.Logger, routingKey string, body []byte) {
	var ev service.ProjectEvent
	if err := sonic.Unmarshal(body, &ev); err != nil {
		log.Warn("skip malformed event", zap.String("routing_key", routingKey), zap.Error(err))
		fmt.Fprintln(w, RenderWarning(routingKey+" "+string(body)))
		return
	}
	fmt.Fprintf(w, "%s %s %s %s %s\n",
		MutedStyle.Render(ev.OccurredAt.Format("15:04:05")),
		HeaderStyle.Render(ev.Type),
		ev.ProjectID,
		ev.Slug,
		ev.Visibility,
	)
}
