package server

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Autosaver periodically saves every open project with unsaved changes.
type Autosaver struct {
	cron    *cron.Cron
	hub     *Hub
	timeout time.Duration
	log     *zap.Logger
}

// NewAutosaver schedules hub.SaveAll on a standard cron expression or a
// descriptor such as "@every 5m".
func NewAutosaver(hub *Hub, schedule string, log *zap.Logger) (*Autosaver, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Autosaver{
		cron:    cron.New(),
		hub:     hub,
		timeout: 30 * time.Second,
		log:     log,
	}
	if _, err := a.cron.AddFunc(schedule, a.run); err != nil {
		return nil, fmt.Errorf("server: autosave schedule %q: %w", schedule, err)
	}
	return a, nil
}

// Start begins the schedule in the background.
func (a *Autosaver) Start() {
	a.cron.Start()
	a.log.Info("autosave started")
}

// Stop halts the schedule and waits for a running save to finish.
func (a *Autosaver) Stop() {
	<-a.cron.Stop().Done()
	a.log.Info("autosave stopped")
}

func (a *Autosaver) run() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	n, err := a.hub.SaveAll(ctx)
	if err != nil {
		a.log.Error("autosave failed", zap.Int("saved", n), zap.Error(err))
		return
	}
	if n > 0 {
		a.log.Info("autosaved", zap.Int("projects", n))
	}
}
