package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/go-go-golems/msghub/pkg/hub"
)

// Announcer periodically publishes a presence envelope through the hub so
// other participants on the topic see who is online.
type Announcer struct {
	Hub      *hub.Hub
	Nick     string
	Interval time.Duration
	Logger   zerolog.Logger
}

func (a *Announcer) Run(ctx context.Context) error {
	if a.Hub == nil {
		return errors.New("missing Hub")
	}
	if a.Interval <= 0 {
		a.Interval = 30 * time.Second
	}

	t := time.NewTicker(a.Interval)
	defer t.Stop()

	for {
		if err := a.announce(); err != nil {
			if errors.Is(err, hub.ErrNotAttached) {
				// Hub discarded or passivated under us; nothing to announce.
				a.Logger.Debug().Msg("presence stopped, hub offline")
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

func (a *Announcer) announce() error {
	return a.Hub.SendObject(Envelope{
		Type: envelopePresence,
		Nick: a.Nick,
		At:   time.Now(),
	})
}
