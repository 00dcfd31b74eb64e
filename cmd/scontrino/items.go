package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gbarzaghi/scontrino/internal/cli"
	"github.com/spf13/cobra"
)

func itemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Correct or confirm scanned receipt items",
	}

	cmd.AddCommand(itemsCorrectCmd())
	cmd.AddCommand(itemsConfirmCmd())

	return cmd
}

func itemsCorrectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "correct <item-id> <name>",
		Short: "Override the parsed name of a receipt item",
		Long: `Store a corrected name for a badly recognized receipt item. The
correction takes precedence on the next reconcile pass; the raw OCR
text is kept untouched.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q: %w", args[0], err)
			}
			name := strings.Join(args[1:], " ")

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.CorrectReceiptItem(ctx, itemID, name); err != nil {
				return fmt.Errorf("failed to correct item: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Item %d corrected to %q", itemID, name)))
			return nil
		},
	}
}

func itemsConfirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <item-id>",
		Short: "Mark a receipt item as verified",
		Long: `Confirm a receipt item so a re-scan of the same receipt never
regenerates it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q: %w", args[0], err)
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.ConfirmReceiptItem(ctx, itemID); err != nil {
				return fmt.Errorf("failed to confirm item: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Item %d confirmed", itemID)))
			return nil
		},
	}
}
