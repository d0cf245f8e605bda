package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"clipcart/internal/downloader"
	"clipcart/internal/notifications"
	"clipcart/internal/render"
	"clipcart/internal/resolver"
	"clipcart/internal/uploader"
	"clipcart/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline continuously",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "clipcart.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire pipeline lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another clipcart instance is already running")
			}
			defer func() {
				_ = lock.Unlock()
			}()

			res := resolver.New(logger, resolver.DefaultStrategies(cfg, nil, nil)...)
			dl := downloader.New(cfg, logger)
			notifier := notifications.NewService(cfg)

			downloadStage := downloader.NewStage(cfg, st, dl, res, newPageFetcher(cfg), logger)
			downloadStage.WithNotifier(notifier)
			renderStage := render.NewStage(cfg, st, nil, logger)
			renderStage.WithNotifier(notifier)
			scheduler := uploader.NewScheduler(cfg, st, uploader.NewHTTPPublisher(cfg), logger)
			scheduler.WithNotifier(notifier)

			manager := workflow.NewManager(cfg, st, logger, notifier,
				downloadStage, renderStage, scheduler)

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if once {
				manager.RunOnce(runCtx)
				return manager.LastError()
			}

			if err := manager.Start(runCtx); err != nil {
				return err
			}
			fmt.Println("Pipeline running; press Ctrl-C to stop")
			<-runCtx.Done()
			manager.Stop()
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run a single pass of every stage and exit")
	return cmd
}
