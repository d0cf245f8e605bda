package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipcart/internal/downloader"
	"clipcart/internal/render"
	"clipcart/internal/resolver"
	"clipcart/internal/uploader"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Run one acquisition pass over the download queue",
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

			res := resolver.New(logger, resolver.DefaultStrategies(cfg, nil, nil)...)
			dl := downloader.New(cfg, logger)
			stage := downloader.NewStage(cfg, st, dl, res, newPageFetcher(cfg), logger)
			return stage.RunPass(cmd.Context())
		},
	}
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Run one render pass over collected assets",
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

			stage := render.NewStage(cfg, st, nil, logger)
			return stage.RunPass(cmd.Context())
		},
	}
}

func newUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Run one upload pass over processed assets",
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

			scheduler := uploader.NewScheduler(cfg, st, uploader.NewHTTPPublisher(cfg), logger)
			return scheduler.RunPass(cmd.Context())
		},
	}
}

func newRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <asset-id>",
		Short: "Clear terminal upload failures so an asset is attempted again",
		Args:  cobra.ExactArgs(1),
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

			scheduler := uploader.NewScheduler(cfg, st, uploader.NewHTTPPublisher(cfg), logger)
			if err := scheduler.Retry(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Asset %s queued for retry\n", args[0])
			return nil
		},
	}
}
