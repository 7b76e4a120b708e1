// Package services – WebhookService
//
// WebhookService drives the end-to-end pipeline for incoming WhatsApp
// events: filter by event name and message type, extract sender and text,
// apply the authorization gate and the trigger word, produce a grounded
// answer, and deliver it back through the messaging gateway. Every event
// resolves to exactly one Outcome; short-circuits are normal dispositions,
// not errors.

package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	eventMessagesUpsert = "messages.upsert"

	typeConversation = "conversation"
	typeExtendedText = "extendedTextMessage"
)

// WebhookPayload mirrors the gateway's event envelope. Unknown fields are
// ignored on decode; absent fields decode to zero values and fall out of the
// pipeline as short-circuits rather than decode errors.
type WebhookPayload struct {
	Event    string      `json:"event"`
	Instance string      `json:"instance"`
	Data     WebhookData `json:"data"`
}

// WebhookData is the message portion of the envelope.
type WebhookData struct {
	Key         WebhookKey     `json:"key"`
	MessageType string         `json:"messageType"`
	Message     WebhookMessage `json:"message"`
}

// WebhookKey identifies the conversation the message belongs to.
type WebhookKey struct {
	RemoteJid string `json:"remoteJid"`
}

// WebhookMessage carries the text in one of two shapes depending on type.
type WebhookMessage struct {
	Conversation        string        `json:"conversation"`
	ExtendedTextMessage *ExtendedText `json:"extendedTextMessage"`
}

// ExtendedText is the wrapper used for quoted and link-preview messages.
type ExtendedText struct {
	Text string `json:"text"`
}

// Text returns the message text for the given type, or "" when the type does
// not carry text.
func (m *WebhookMessage) Text(messageType string) string {
	switch messageType {
	case typeConversation:
		return m.Conversation
	case typeExtendedText:
		if m.ExtendedTextMessage != nil {
			return m.ExtendedTextMessage.Text
		}
	}
	return ""
}

// Sender extracts the bare sender number from the remote JID, the part
// before the "@" server suffix.
func (d *WebhookData) Sender() string {
	jid := d.Key.RemoteJid
	if at := strings.IndexByte(jid, '@'); at >= 0 {
		return jid[:at]
	}
	return jid
}

// Result reports how the pipeline disposed of an event. Err is set only for
// OutcomeAnswerFailed and OutcomeDeliveryFailed.
type Result struct {
	Outcome Outcome
	Reply   string
	Err     error
}

// Sender delivers a text message to a recipient number through a gateway
// instance. An empty instance means the gateway's configured default.
type Sender interface {
	SendTextVia(ctx context.Context, instance, number, text string) error
}

// WebhookService coordinates the webhook pipeline.
type WebhookService struct {
	Settings *SettingsService
	Answers  *AnswerService
	Gateway  Sender
}

// Process runs one event through the pipeline and returns its disposition.
// It never returns an error: failures are encoded in the Result so the
// handler can acknowledge the gateway while logging the cause.
func (s *WebhookService) Process(ctx context.Context, p *WebhookPayload) Result {
	tr := otel.Tracer("services/WebhookService")
	ctx, span := tr.Start(ctx, "Process",
		trace.WithAttributes(attribute.String("webhook.event", p.Event)),
	)
	defer span.End()

	log := zerolog.Ctx(ctx)

	if p.Event != eventMessagesUpsert {
		return s.done(span, Result{Outcome: OutcomeIgnoredEvent})
	}
	if p.Data.MessageType != typeConversation && p.Data.MessageType != typeExtendedText {
		return s.done(span, Result{Outcome: OutcomeIgnoredType})
	}

	text := strings.TrimSpace(p.Data.Message.Text(p.Data.MessageType))
	if text == "" {
		return s.done(span, Result{Outcome: OutcomeNoText})
	}

	sender := p.Data.Sender()
	snap := s.Settings.Current()

	if !IsAuthorized(sender, snap.AllowList) {
		log.Debug().Str("outcome", OutcomeUnauthorized.String()).Msg("sender not on allow list")
		return s.done(span, Result{Outcome: OutcomeUnauthorized})
	}

	query, ok := ParseTrigger(text, snap.TriggerFor(sender))
	if !ok {
		return s.done(span, Result{Outcome: OutcomeNoTrigger})
	}

	reply, err := s.Answers.Answer(ctx, query)
	if err != nil {
		log.Error().Err(err).Msg("answer pipeline failed")
		return s.done(span, Result{Outcome: OutcomeAnswerFailed, Err: err})
	}

	// Reply through the instance that received the inbound message.
	if err := s.Gateway.SendTextVia(ctx, p.Instance, sender, reply); err != nil {
		log.Error().Err(err).Msg("reply delivery failed")
		return s.done(span, Result{Outcome: OutcomeDeliveryFailed, Reply: reply, Err: err})
	}

	return s.done(span, Result{Outcome: OutcomeSent, Reply: reply})
}

func (s *WebhookService) done(span trace.Span, r Result) Result {
	span.SetAttributes(attribute.String("webhook.outcome", r.Outcome.String()))
	return r
}
