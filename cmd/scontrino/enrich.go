package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gbarzaghi/scontrino/internal/barcode"
	"github.com/gbarzaghi/scontrino/internal/cli"
	"github.com/gbarzaghi/scontrino/internal/enrich"
	"github.com/gbarzaghi/scontrino/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func enrichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Resolve missing product names through barcode lookup",
		Long: `Queue a barcode lookup for every item on a shopping list that still
has no product name, and back-fill the names as lookups complete.

With an explicit barcode argument only that barcode is queued.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runEnrich,
	}

	cmd.Flags().Int64P("list", "l", 0, "Shopping list id to enrich")
	cmd.Flags().Bool("wait", true, "Wait for the lookup queue to drain")

	return cmd
}

func runEnrich(cmd *cobra.Command, args []string) error {
	listID, _ := cmd.Flags().GetInt64("list")
	wait, _ := cmd.Flags().GetBool("wait")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	svc := newEnrichService(store)
	queued := 0

	if len(args) == 1 {
		svc.Enqueue(args[0], nil, nil)
		queued++
	} else {
		if listID == 0 {
			return fmt.Errorf("either a barcode argument or --list is required")
		}
		items, err := store.GetListItems(ctx, listID)
		if err != nil {
			return fmt.Errorf("failed to load list items: %w", err)
		}
		for i := range items {
			if !items[i].NeedsEnrichment() {
				continue
			}
			id := items[i].ID
			svc.Enqueue(items[i].Barcode, &id, &listID)
			queued++
		}
	}

	if queued == 0 {
		fmt.Println(cli.FormatInfo("Nothing to enrich"))
		return nil
	}

	fmt.Println(cli.FormatInfo(fmt.Sprintf("Queued %d lookup(s)", queued)))
	if wait {
		waitForDrain(ctx, svc)
		svc.Stop()
		fmt.Println(cli.FormatSuccess("Enrichment finished"))
	}
	return nil
}

func queueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show the enrichment backlog for a shopping list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			listID, _ := cmd.Flags().GetInt64("list")

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			items, err := store.GetListItems(ctx, listID)
			if err != nil {
				return fmt.Errorf("failed to load list items: %w", err)
			}

			pending := 0
			for i := range items {
				if items[i].NeedsEnrichment() {
					pending++
					fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("  %s [%s]", items[i].Name, items[i].Barcode)))
				}
			}

			if pending == 0 {
				fmt.Println(cli.FormatSuccess("All items have product names"))
			} else {
				fmt.Println(cli.FormatInfo(fmt.Sprintf("%d item(s) awaiting enrichment", pending)))
			}
			return nil
		},
	}

	cmd.Flags().Int64P("list", "l", 0, "Shopping list id")
	_ = cmd.MarkFlagRequired("list")

	return cmd
}

// newEnrichService wires the background lookup worker to the Open Food
// Facts client and the storage back-fill.
func newEnrichService(store service.Storage) *enrich.Service {
	baseURL := viper.GetString("barcode.url")
	if baseURL == "" {
		baseURL = barcode.DefaultBaseURL
	}
	return enrich.New(store, barcode.NewClient(baseURL))
}

// waitForDrain polls the worker until its queue is empty or the context is
// canceled. The final Stop() waits out the in-flight task.
func waitForDrain(ctx context.Context, svc *enrich.Service) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if svc.Status().QueueSize == 0 {
				return
			}
		}
	}
}
