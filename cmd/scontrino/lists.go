package main

import (
	"fmt"
	"strings"

	"github.com/gbarzaghi/scontrino/internal/cli"
	"github.com/gbarzaghi/scontrino/internal/model"
	"github.com/spf13/cobra"
)

func listsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Manage shopping lists",
	}

	cmd.AddCommand(listsCreateCmd())
	cmd.AddCommand(listsShowCmd())
	cmd.AddCommand(listsAddCmd())

	return cmd
}

func listsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new shopping list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			name := strings.Join(args, " ")
			id, err := store.CreateList(ctx, name)
			if err != nil {
				return fmt.Errorf("failed to create list: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created list %d: %s", id, name)))
			return nil
		},
	}
}

func listsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a shopping list and its items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			listID, _ := cmd.Flags().GetInt64("list")

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			list, err := store.GetList(ctx, listID)
			if err != nil {
				return fmt.Errorf("shopping list %d: %w", listID, err)
			}
			items, err := store.GetListItems(ctx, listID)
			if err != nil {
				return fmt.Errorf("failed to load list items: %w", err)
			}

			fmt.Println(cli.RenderListItems(list, items))
			return nil
		},
	}

	cmd.Flags().Int64P("list", "l", 0, "Shopping list id")
	_ = cmd.MarkFlagRequired("list")

	return cmd
}

func listsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an item to a shopping list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID, _ := cmd.Flags().GetInt64("list")
			barcode, _ := cmd.Flags().GetString("barcode")
			quantity, _ := cmd.Flags().GetFloat64("quantity")
			unit, _ := cmd.Flags().GetString("unit")

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			item := &model.ShoppingListItem{
				ListID:   listID,
				Name:     strings.Join(args, " "),
				Barcode:  barcode,
				Quantity: quantity,
				Unit:     unit,
			}
			id, err := store.AddListItem(ctx, item)
			if err != nil {
				return fmt.Errorf("failed to add list item: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added item %d: %s", id, item.Name)))
			return nil
		},
	}

	cmd.Flags().Int64P("list", "l", 0, "Shopping list id")
	cmd.Flags().StringP("barcode", "b", "", "Product barcode for background enrichment")
	cmd.Flags().Float64P("quantity", "q", 1, "Quantity to buy")
	cmd.Flags().StringP("unit", "u", "", "Unit (kg, l, piece, ...)")
	_ = cmd.MarkFlagRequired("list")

	return cmd
}
