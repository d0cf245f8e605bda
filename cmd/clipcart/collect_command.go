package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"clipcart/internal/store"
)

func newCollectCommand(ctx *commandContext) *cobra.Command {
	var (
		title    string
		category string
		site     string
		price    string
		urlFile  string
		tags     []string
		priority bool
	)

	cmd := &cobra.Command{
		Use:   "collect [origin-url]",
		Short: "Register product listings for video sourcing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && urlFile == "" {
				return fmt.Errorf("provide an origin URL or --file")
			}
			_, st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			status := store.ProductReadyToDownload
			if priority {
				status = store.ProductPriorityDownload
			}

			urls := make([]string, 0, 1)
			if len(args) == 1 {
				urls = append(urls, strings.TrimSpace(args[0]))
			}
			if urlFile != "" {
				fromFile, err := readURLFile(urlFile)
				if err != nil {
					return err
				}
				urls = append(urls, fromFile...)
			}

			for _, url := range urls {
				product, created, err := st.CollectProduct(cmd.Context(), store.Product{
					Title:      title,
					Category:   category,
					OriginURL:  url,
					OriginSite: site,
					PriceInfo:  price,
					Tags:       tags,
					Status:     status,
				})
				if err != nil {
					return err
				}
				if created {
					fmt.Printf("Collected %s (%s)\n", product.Title, product.ID)
				} else {
					fmt.Printf("Already collected: %s (%s)\n", product.Title, product.ID)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Product title (defaults to the URL)")
	cmd.Flags().StringVar(&category, "category", "", "Product category")
	cmd.Flags().StringVar(&site, "site", "", "Origin site label")
	cmd.Flags().StringVar(&price, "price", "", "Price info")
	cmd.Flags().StringVar(&urlFile, "file", "", "File of origin URLs, one per line")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Product tag (repeatable)")
	cmd.Flags().BoolVar(&priority, "priority", false, "Queue ahead of regular downloads")
	return cmd
}

func readURLFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

func newAffiliateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "affiliate",
		Short: "Manage affiliate links",
	}
	cmd.AddCommand(newAffiliateSetCommand(ctx))
	cmd.AddCommand(newAffiliateImportCommand(ctx))
	return cmd
}

func newAffiliateSetCommand(ctx *commandContext) *cobra.Command {
	var (
		network  string
		campaign string
	)
	cmd := &cobra.Command{
		Use:   "set <origin-url> <affiliate-url>",
		Short: "Attach an affiliate link to a collected product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			product, err := st.GetProductByOriginURL(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("no product collected for %s", args[0])
			}
			if _, err := st.UpsertAffiliateLink(cmd.Context(), store.AffiliateLink{
				ProductID:    product.ID,
				AffiliateURL: strings.TrimSpace(args[1]),
				Network:      network,
				CampaignCode: campaign,
				Active:       true,
			}); err != nil {
				return err
			}
			product.AffiliateURL = strings.TrimSpace(args[1])
			if err := st.UpdateProduct(cmd.Context(), product); err != nil {
				return err
			}
			fmt.Printf("Affiliate link set for %s\n", product.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&network, "network", "", "Affiliate network name")
	cmd.Flags().StringVar(&campaign, "campaign", "", "Campaign code")
	return cmd
}

// newAffiliateImportCommand bulk-updates affiliate URLs from a tab-separated
// file of origin-url, affiliate-url pairs.
func newAffiliateImportCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Bulk-import affiliate URLs from a TSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			mapping := make(map[string]string)
			scanner := bufio.NewScanner(file)
			line := 0
			for scanner.Scan() {
				line++
				text := strings.TrimSpace(scanner.Text())
				if text == "" || strings.HasPrefix(text, "#") {
					continue
				}
				fields := strings.Split(text, "\t")
				if len(fields) < 2 {
					return fmt.Errorf("line %d: expected origin-url<TAB>affiliate-url", line)
				}
				mapping[strings.TrimSpace(fields[0])] = strings.TrimSpace(fields[1])
			}
			if err := scanner.Err(); err != nil {
				return err
			}

			updated, err := st.BulkUpdateAffiliateURLs(cmd.Context(), mapping)
			if err != nil {
				return err
			}
			fmt.Printf("Updated %d of %d products\n", updated, len(mapping))
			return nil
		},
	}
	return cmd
}
