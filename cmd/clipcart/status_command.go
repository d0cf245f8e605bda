package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"clipcart/internal/downloader"
	"clipcart/internal/render"
	"clipcart/internal/resolver"
	"clipcart/internal/stage"
	"clipcart/internal/store"
	"clipcart/internal/uploader"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pipeline counts and stage health",
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

			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return err
			}

			colorize := shouldColorize(os.Stdout)

			for _, line := range renderSectionHeader("Products", colorize) {
				fmt.Println(line)
			}
			rows := make([][]string, 0, len(store.ProductStatuses()))
			for _, status := range store.ProductStatuses() {
				rows = append(rows, []string{string(status), strconv.Itoa(stats.Products[status])})
			}
			fmt.Println(renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

			for _, line := range renderSectionHeader("Video Assets", colorize) {
				fmt.Println(line)
			}
			rows = rows[:0]
			for _, status := range store.AssetStatuses() {
				rows = append(rows, []string{string(status), strconv.Itoa(stats.Assets[status])})
			}
			fmt.Println(renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

			for _, line := range renderSectionHeader("Upload Attempts", colorize) {
				fmt.Println(line)
			}
			rows = rows[:0]
			for _, result := range []store.UploadResult{store.UploadPending, store.UploadSuccess, store.UploadFailed} {
				rows = append(rows, []string{string(result), strconv.Itoa(stats.Uploads[result])})
			}
			fmt.Println(renderTable([]string{"Result", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

			for _, line := range renderSectionHeader("Stage Health", colorize) {
				fmt.Println(line)
			}
			res := resolver.New(logger, resolver.DefaultStrategies(cfg, nil, nil)...)
			dl := downloader.New(cfg, logger)
			handlers := []stage.Handler{
				downloader.NewStage(cfg, st, dl, res, newPageFetcher(cfg), logger),
				render.NewStage(cfg, st, nil, logger),
				uploader.NewScheduler(cfg, st, uploader.NewHTTPPublisher(cfg), logger),
			}
			for _, handler := range handlers {
				health := handler.HealthCheck(cmd.Context())
				kind := statusOK
				if !health.Ready {
					kind = statusError
				}
				fmt.Println(renderStatusLine(health.Name, kind, health.Detail, colorize))
			}
			return nil
		},
	}
}
