// Package relay wires inbound Instagram messages to the completion client
// and sends the resulting reply back to the user.
package relay

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/antoniostano/luna/internal/completion"
	"github.com/antoniostano/luna/internal/observability"
	"github.com/antoniostano/luna/internal/policy"
	"github.com/antoniostano/luna/internal/protocol"
	"github.com/antoniostano/luna/internal/reliability"
	"github.com/antoniostano/luna/internal/webhook"
)

// Outcomes recorded per relayed message.
const (
	OutcomeCompleted      = "completed"
	OutcomeFallback       = "fallback"
	OutcomeDeliveryFailed = "delivery_failed"
	OutcomeDropped        = "dropped"
	OutcomeAbandoned      = "abandoned"
)

type ReplyGenerator interface {
	GenerateReply(ctx context.Context, userID, text string) completion.Reply
}

type MessageSender interface {
	Send(ctx context.Context, recipientID, text string) error
}

// Publisher receives relay outcome events, e.g. for the operator feed.
type Publisher interface {
	Publish(ev protocol.RelayEvent)
}

type Controller struct {
	replies ReplyGenerator
	sender  MessageSender
	events  Publisher
	metrics *observability.Metrics
	log     zerolog.Logger
}

func NewController(replies ReplyGenerator, sender MessageSender, events Publisher, metrics *observability.Metrics, log zerolog.Logger) *Controller {
	return &Controller{
		replies: replies,
		sender:  sender,
		events:  events,
		metrics: metrics,
		log:     log.With().Str("component", "relay").Logger(),
	}
}

// Handle generates a reply for msg and delivers it. Delivery failures are
// logged and counted; they never affect the user's session.
func (c *Controller) Handle(ctx context.Context, msg webhook.Message) {
	start := time.Now()
	logger := c.log.With().Str("user_id", msg.SenderID).Str("mid", msg.MID).Logger()
	logger.Debug().Str("text", policy.Preview(msg.Text, 80)).Msg("relaying message")

	reply := c.replies.GenerateReply(ctx, msg.SenderID, msg.Text)
	if reply.Abandoned {
		logger.Warn().Str("class", reply.ErrorClass).Msg("relay abandoned before a reply was produced")
		c.metrics.ObserveRelay(time.Since(start), OutcomeAbandoned)
		c.publish(protocol.TypeRelayAbandoned, msg, reply.ErrorClass, time.Since(start))
		return
	}

	sendStart := time.Now()
	err := c.sender.Send(ctx, msg.SenderID, reply.Text)
	c.metrics.ObserveDelivery(time.Since(sendStart), err)

	outcome := OutcomeCompleted
	evType := protocol.TypeRelayCompleted
	errClass := reply.ErrorClass
	switch {
	case err != nil:
		outcome = OutcomeDeliveryFailed
		evType = protocol.TypeDeliveryFailed
		errClass = reliability.Classify(err)
		logger.Error().Err(err).Str("class", errClass).Bool("transient", reliability.IsTransient(err)).Msg("unable to send message")
	case reply.Fallback:
		outcome = OutcomeFallback
		evType = protocol.TypeRelayFallback
		logger.Warn().Str("class", errClass).Msg("fallback reply sent")
	default:
		logger.Info().Dur("completion", reply.Latency).Msg("message sent")
	}

	total := time.Since(start)
	c.metrics.ObserveRelay(total, outcome)
	c.publish(evType, msg, errClass, total)
}

// Dropped records a message the dispatcher could not accept.
func (c *Controller) Dropped(msg webhook.Message, err error) {
	c.log.Warn().Err(err).Str("user_id", msg.SenderID).Str("mid", msg.MID).Msg("inbound message dropped")
	c.metrics.ObserveRelay(0, OutcomeDropped)
	c.metrics.ObserveIndicator(observability.IndicatorEventDropped)
	c.publish(protocol.TypeEventDropped, msg, "", 0)
}

func (c *Controller) publish(t protocol.MessageType, msg webhook.Message, errClass string, latency time.Duration) {
	if c.events == nil {
		return
	}
	ev := protocol.NewRelayEvent(t, msg.SenderID, msg.MID, latency)
	ev.ErrorClass = errClass
	c.events.Publish(ev)
}
