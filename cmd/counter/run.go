package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/davidroman0O/firm-counter/internal/app"
	"github.com/davidroman0O/firm-counter/internal/scheduler"
	"github.com/davidroman0O/firm-counter/internal/storage"
	"github.com/davidroman0O/firm-counter/internal/ui"
)

func newCounterApp(loop app.Loop, store storage.Store) *app.App {
	return app.New(app.Config{
		Initial:      cfg.Counter.Initial,
		StartRunning: cfg.Counter.StartRunning,
		Period:       cfg.GetInterval(),
	}, loop,
		app.WithCache(storage.NewIntCache(store, cfg.GetStorageKey())),
		app.WithLogger(logger),
	)
}

// runCounter runs the terminal UI until the user quits or a signal arrives.
func runCounter(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}()

	loop := scheduler.NewLoop(scheduler.RealClock{}, scheduler.WithLogger(logger))
	counterApp := newCounterApp(loop, store)

	model := ui.New(counterApp, counterApp.Snapshot(), ui.DefaultStyles())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	counterApp.OnChange(func(s app.Snapshot) {
		p.Send(ui.SnapshotMsg(s))
	})
	loop.Post(counterApp.Mount)

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, stopLoop := context.WithCancel(gctx)

	g.Go(func() error {
		if err := loop.Run(loopCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer stopLoop()
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("terminal UI failed: %w", err)
		}
		return nil
	})

	err = g.Wait()

	// The loop goroutine has exited, so teardown runs here.
	counterApp.Close()
	logger.Info("counter stopped", zap.Int("count", counterApp.Snapshot().Direct))
	return err
}
