package webhook

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/b1rdex/slalog/pkg/config"
	"github.com/b1rdex/slalog/pkg/output"
)

// Result pairs a configured webhook with the outcome of sending to it.
type Result struct {
	Name     string
	Response *Response
}

// Dispatcher sends a report to every configured webhook whose trigger matches.
type Dispatcher struct {
	client *Client
	logger zerolog.Logger
}

// NewDispatcher creates a dispatcher that logs each delivery.
func NewDispatcher(client *Client, logger zerolog.Logger) *Dispatcher {
	if client == nil {
		client = NewClient()
	}
	return &Dispatcher{client: client, logger: logger}
}

// Dispatch sends report to hooks in order. Delivery failures are logged and
// returned but never stop the remaining hooks.
func (d *Dispatcher) Dispatch(ctx context.Context, hooks []config.WebhookConfig, report *output.Report) []Result {
	if len(hooks) == 0 {
		return nil
	}

	payload := NewPayload(report)
	results := make([]Result, 0, len(hooks))

	for _, wh := range hooks {
		if !ShouldFire(wh.Trigger, report.HasPeriods()) {
			d.logger.Debug().Str("webhook", displayName(wh)).Str("trigger", string(wh.Trigger)).Msg("webhook skipped")
			continue
		}

		resp := d.client.Send(ctx, payload, SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		name := displayName(wh)
		if resp.Success() {
			d.logger.Info().
				Str("webhook", name).
				Int("status", resp.StatusCode).
				Dur("duration", resp.Duration).
				Msg("webhook sent")
		} else {
			d.logger.Error().
				Err(resp.Error).
				Str("webhook", name).
				Msg("webhook failed")
		}

		results = append(results, Result{Name: name, Response: resp})
	}

	return results
}

// ShouldFire determines if a webhook fires for a trigger given whether any
// failure period was reported. Unknown triggers behave like on_breach.
func ShouldFire(trigger config.WebhookTrigger, breached bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return breached
	}
}

func displayName(wh config.WebhookConfig) string {
	if wh.Name != "" {
		return wh.Name
	}
	return wh.URL
}
