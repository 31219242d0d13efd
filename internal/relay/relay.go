// Package relay runs one fetch, render and post cycle.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/global-trade-alert/ms-teams-push/internal/card"
	"github.com/global-trade-alert/ms-teams-push/internal/metrics"
	"github.com/global-trade-alert/ms-teams-push/internal/model"
	"github.com/global-trade-alert/ms-teams-push/internal/sink"
)

type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Intervention, error)
}

type Sender interface {
	Send(ctx context.Context, msg card.Message) (*sink.Delivery, error)
}

type Outcome string

const (
	OutcomeNoInterventions Outcome = "no_interventions"
	OutcomeSent            Outcome = "sent"
	OutcomeSendFailed      Outcome = "send_failed"
	OutcomeDryRun          Outcome = "dry_run"
)

// Result describes what a run did. Message is nil when nothing was fetched;
// Delivery is nil unless the webhook accepted the message.
type Result struct {
	Outcome      Outcome
	Intervention model.Intervention
	Message      *card.Message
	Delivery     *sink.Delivery
}

type Relay struct {
	fetcher Fetcher
	sender  Sender
	build   func(model.Intervention) card.Message
	out     io.Writer
	log     zerolog.Logger
	metrics *metrics.Metrics
	dryRun  bool
}

type Option func(*Relay)

// WithOutput sets where the rendered message JSON is printed. nil disables it.
func WithOutput(w io.Writer) Option { return func(r *Relay) { r.out = w } }

func WithLogger(l zerolog.Logger) Option { return func(r *Relay) { r.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(r *Relay) { r.metrics = m } }

// WithDryRun builds and prints the message but never calls the sender.
func WithDryRun(on bool) Option { return func(r *Relay) { r.dryRun = on } }

func WithBuilder(fn func(model.Intervention) card.Message) Option {
	return func(r *Relay) {
		if fn != nil {
			r.build = fn
		}
	}
}

func New(f Fetcher, s Sender, opts ...Option) *Relay {
	r := &Relay{
		fetcher: f,
		sender:  s,
		build:   card.BuildMessage,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run executes one cycle. Fetch and send failures are logged here and folded
// into the returned Outcome; Run itself never fails.
func (r *Relay) Run(ctx context.Context) Result {
	start := time.Now()
	res := r.run(ctx)
	r.metrics.ObserveRun(string(res.Outcome), time.Since(start), res.Outcome == OutcomeSent)
	return res
}

func (r *Relay) run(ctx context.Context) Result {
	records, err := r.fetcher.Fetch(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("Error retrieving interventions")
		records = nil
	}
	if len(records) == 0 {
		r.log.Info().Msg("No interventions found.")
		return Result{Outcome: OutcomeNoInterventions}
	}

	rec := records[0]
	log := r.log.With().Str("intervention_id", rec.ID()).Logger()
	msg := r.build(rec)
	res := Result{Intervention: rec, Message: &msg}

	if err := r.print(msg); err != nil {
		log.Warn().Err(err).Msg("print message")
	}

	if r.dryRun {
		log.Info().Msg("Dry run: message not sent.")
		res.Outcome = OutcomeDryRun
		return res
	}
	if r.sender == nil {
		log.Error().Err(errors.New("no sender configured")).Msg("Error sending message to Teams")
		log.Error().Msg("Failed to send message. Check the logs above for details.")
		res.Outcome = OutcomeSendFailed
		return res
	}

	d, err := r.sender.Send(ctx, msg)
	if err != nil || d == nil {
		r.metrics.ObserveSend(metrics.StatusError)
		log.Error().Err(err).Msg("Error sending message to Teams")
		log.Error().Msg("Failed to send message. Check the logs above for details.")
		res.Outcome = OutcomeSendFailed
		return res
	}

	r.metrics.ObserveSend(metrics.StatusOK)
	log.Info().Msg("Message sent successfully!")
	log.Debug().Int("status", d.StatusCode).Str("response", d.Body).Msg("Response Text")
	res.Delivery = d
	res.Outcome = OutcomeSent
	return res
}

func (r *Relay) print(msg card.Message) error {
	if r.out == nil {
		return nil
	}
	enc := json.NewEncoder(r.out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(msg)
}
