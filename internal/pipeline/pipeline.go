package pipeline

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/javierturcios2607/Proyecto-Tifon/internal/config"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/consumer"
)

// Broker is the slice of the RabbitMQ connection the pipeline needs.
type Broker interface {
	SetQoS(prefetchCount, prefetchSize int, global bool) error
	ConsumeMessages(queue, consumer string, autoAck, exclusive, noLocal, noWait bool) (<-chan amqp.Delivery, error)
	GetChannel() *amqp.Channel
	IsHealthy() bool
}

// Pipeline consumes raw event payloads from the ingress queue and routes each
// one through the dual-path router.
type Pipeline struct {
	cfg         *config.PipelineConfig
	conn        Broker
	router      *Router
	logger      *zap.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	consumerTag string
	started     bool
}

// New creates a pipeline instance with dependencies.
func New(cfg *config.PipelineConfig, conn Broker, router *Router, logger *zap.Logger) *Pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		cfg:         cfg,
		conn:        conn,
		router:      router,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		consumerTag: fmt.Sprintf("ad-events-pipeline-%d", time.Now().Unix()),
	}
}

// Start begins consuming from the events queue. Assumes the queue already
// exists; fails otherwise.
func (p *Pipeline) Start() error {
	if p.cfg.EventsQueue == "" {
		return fmt.Errorf("events queue is required")
	}

	// Before startConsuming: the restart loop in processMessages reads it.
	p.started = true

	if err := p.startConsuming(); err != nil {
		p.started = false
		return err
	}

	p.logger.Info("Pipeline started and consuming events",
		zap.String("events_queue", p.cfg.EventsQueue),
		zap.String("consumer_tag", p.consumerTag),
		zap.Int("prefetch_count", p.cfg.PrefetchCount),
	)
	return nil
}

// startConsuming registers the consumer on the current channel. QoS is set
// here, not in Start: a broker reconnect hands us a fresh channel with the
// default unlimited prefetch, so every (re)subscription must apply it again.
func (p *Pipeline) startConsuming() error {
	if err := p.conn.SetQoS(p.cfg.PrefetchCount, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	messages, err := p.conn.ConsumeMessages(
		p.cfg.EventsQueue,
		p.consumerTag,
		false, // autoAck (we ACK manually)
		false, // exclusive
		false, // noLocal
		false, // noWait
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming from queue %s: %w", p.cfg.EventsQueue, err)
	}

	go p.processMessages(messages)

	return nil
}

// Stop gracefully stops the pipeline.
func (p *Pipeline) Stop() error {
	p.logger.Info("Stopping pipeline",
		zap.String("consumer_tag", p.consumerTag),
	)
	p.cancel()

	ch := p.conn.GetChannel()
	if ch != nil {
		if err := ch.Cancel(p.consumerTag, false); err != nil {
			p.logger.Error("Failed to cancel consumer",
				zap.String("consumer_tag", p.consumerTag),
				zap.Error(err),
			)
		}
	}

	p.logger.Info("Pipeline stopped")
	return nil
}

func (p *Pipeline) processMessages(messages <-chan amqp.Delivery) {
	for {
		select {
		case <-p.ctx.Done():
			p.logger.Info("Pipeline context cancelled, stopping message processing")
			return
		case msg, ok := <-messages:
			if !ok {
				p.logger.Warn("Message channel closed, attempting to restart consumer...",
					zap.String("events_queue", p.cfg.EventsQueue),
				)
				// The connection reconnects on its own; keep retrying the
				// consumer until it sticks or we are told to stop.
				for p.started {
					select {
					case <-p.ctx.Done():
						return
					default:
					}

					time.Sleep(2 * time.Second)

					if !p.conn.IsHealthy() {
						continue
					}

					if err := p.startConsuming(); err != nil {
						p.logger.Error("Failed to restart consuming after channel close, will retry",
							zap.String("events_queue", p.cfg.EventsQueue),
							zap.Error(err),
						)
						time.Sleep(5 * time.Second)
						continue
					}

					p.logger.Info("Successfully restarted consumer after channel close",
						zap.String("events_queue", p.cfg.EventsQueue),
					)
					return
				}
				return
			}
			consumer.ProcessMessage(p.logger, p.cfg.EventsQueue, msg, p)
		}
	}
}

// HandleEvent implements consumer.EventHandler. A non-nil error NACKs the
// message (no requeue; broker DLX policy decides what happens next), nil ACKs.
func (p *Pipeline) HandleEvent(body []byte) error {
	return p.router.Dispatch(p.ctx, body)
}
