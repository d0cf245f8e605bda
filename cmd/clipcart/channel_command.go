package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipcart/internal/store"
)

func newChannelCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Manage publishing channels",
	}
	cmd.AddCommand(newChannelAddCommand(ctx))
	cmd.AddCommand(newChannelListCommand(ctx))
	cmd.AddCommand(newChannelEnableCommand(ctx, true))
	cmd.AddCommand(newChannelEnableCommand(ctx, false))
	return cmd
}

func newChannelAddCommand(ctx *commandContext) *cobra.Command {
	var (
		platform      string
		limit         int
		tone          string
		subtitleStyle string
		hashtags      string
		prefix        string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a publishing channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			channel, err := st.CreateChannel(cmd.Context(), store.Channel{
				Name:             args[0],
				Platform:         platform,
				DailyUploadLimit: limit,
				Tone:             tone,
				SubtitleStyle:    subtitleStyle,
				HashtagTemplate:  hashtags,
				TitlePrefix:      prefix,
				Active:           true,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Channel %s created (%s)\n", channel.Name, channel.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "youtube", "Target platform")
	cmd.Flags().IntVar(&limit, "limit", 5, "Daily upload quota (0 = channel is not scheduled)")
	cmd.Flags().StringVar(&tone, "tone", "", "Presentation tone (INFORMAL, FORMAL, SALES)")
	cmd.Flags().StringVar(&subtitleStyle, "subtitle-style", "", "Subtitle placement (TOP, BOTTOM, BOTH)")
	cmd.Flags().StringVar(&hashtags, "hashtags", "", "Hashtag template, e.g. \"{title} shorts\"")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Title prefix for published videos")
	return cmd
}

func newChannelListCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List publishing channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			channels, err := st.Channels(cmd.Context(), !all)
			if err != nil {
				return err
			}
			if len(channels) == 0 {
				fmt.Println("No channels configured")
				return nil
			}

			rows := make([][]string, 0, len(channels))
			for _, channel := range channels {
				limit := "none"
				if channel.DailyUploadLimit > 0 {
					limit = strconv.Itoa(channel.DailyUploadLimit)
				}
				rows = append(rows, []string{
					channel.Name,
					channel.Platform,
					limit,
					channel.Tone,
					yesNo(channel.Active),
				})
			}
			fmt.Println(renderTable(
				[]string{"Name", "Platform", "Daily Limit", "Tone", "Active"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include disabled channels")
	return cmd
}

func newChannelEnableCommand(ctx *commandContext, enable bool) *cobra.Command {
	use, short := "enable <name>", "Enable a channel for scheduling"
	if !enable {
		use, short = "disable <name>", "Disable a channel without deleting it"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			channel, err := st.ChannelByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if channel == nil {
				return fmt.Errorf("no channel named %s", args[0])
			}
			if err := st.SetChannelActive(cmd.Context(), channel.ID, enable); err != nil {
				return err
			}
			state := "enabled"
			if !enable {
				state = "disabled"
			}
			fmt.Printf("Channel %s %s\n", channel.Name, state)
			return nil
		},
	}
}
