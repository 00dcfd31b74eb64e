package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gbarzaghi/scontrino/internal/cli"
	"github.com/gbarzaghi/scontrino/internal/common"
	"github.com/gbarzaghi/scontrino/internal/model"
	"github.com/gbarzaghi/scontrino/internal/service"
	"github.com/spf13/cobra"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Re-run matching for a stored receipt",
		Long: `Match a receipt's items against its shopping list again. Useful after
correcting item names or editing the list.`,
		RunE: runReconcile,
	}

	cmd.Flags().Int64P("receipt", "r", 0, "Receipt id to reconcile")
	cmd.Flags().Bool("review", false, "Interactively review suggested matches")
	_ = cmd.MarkFlagRequired("receipt")

	return cmd
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	receiptID, _ := cmd.Flags().GetInt64("receipt")
	review, _ := cmd.Flags().GetBool("review")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	rcpt, err := store.GetReceipt(ctx, receiptID)
	if err != nil {
		return fmt.Errorf("receipt %d: %w", receiptID, err)
	}

	return reconcileReceipt(ctx, store, rcpt.ID, rcpt.ListID, review)
}

// reconcileReceipt runs one matching pass over a stored receipt, persists
// the results, and prints the styled summary. With review enabled, each
// suggestion is offered to the user first and any accepted or corrected
// item triggers a second pass.
func reconcileReceipt(ctx context.Context, store service.Storage, receiptID, listID int64, review bool) error {
	results, summary, err := matchAndPersist(ctx, store, receiptID, listID)
	if err != nil {
		return err
	}

	if review {
		changed, reviewErr := reviewSuggestions(ctx, store, receiptID, results)
		if reviewErr != nil && !errors.Is(reviewErr, cli.ErrInputCancelled) {
			return reviewErr
		}
		if changed {
			results, summary, err = matchAndPersist(ctx, store, receiptID, listID)
			if err != nil {
				return err
			}
		}
	}

	items, err := store.GetReceiptItems(ctx, receiptID)
	if err != nil {
		return fmt.Errorf("failed to load receipt items: %w", err)
	}

	fmt.Println(cli.RenderSummary(&summary, results, items))
	return nil
}

// matchAndPersist loads the receipt and list, runs the engine, and writes
// the match results back.
func matchAndPersist(ctx context.Context, store service.Storage, receiptID, listID int64) ([]model.MatchResult, model.ReconciliationSummary, error) {
	items, err := store.GetReceiptItems(ctx, receiptID)
	if err != nil {
		return nil, model.ReconciliationSummary{}, fmt.Errorf("failed to load receipt items: %w", err)
	}
	if len(items) == 0 {
		return nil, model.ReconciliationSummary{}, common.ErrNoReceiptItems
	}

	listItems, err := store.GetListItems(ctx, listID)
	if err != nil {
		return nil, model.ReconciliationSummary{}, fmt.Errorf("failed to load list items: %w", err)
	}

	results, summary := initEngine().Reconcile(items, listItems)
	if err := store.UpdateMatchResults(ctx, results); err != nil {
		return nil, model.ReconciliationSummary{}, fmt.Errorf("failed to save match results: %w", err)
	}

	return results, summary, nil
}

// reviewSuggestions walks the suggestion-band results through the prompter.
// Accepting confirms the item and claims the suggested list item; correcting
// stores the user's name for the next pass. Returns whether anything changed.
func reviewSuggestions(ctx context.Context, store service.Storage, receiptID int64, results []model.MatchResult) (bool, error) {
	items, err := store.GetReceiptItems(ctx, receiptID)
	if err != nil {
		return false, fmt.Errorf("failed to load receipt items: %w", err)
	}
	byID := make(map[int64]*model.ReceiptItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}

	prompter := cli.NewPrompter(os.Stdin, os.Stdout)
	changed := false

	for i := range results {
		result := &results[i]
		if !result.IsSuggestion() {
			continue
		}

		item, ok := byID[result.ReceiptItemID]
		if !ok {
			continue
		}

		decision, err := prompter.ReviewSuggestion(ctx, item, result)
		if err != nil {
			return changed, err
		}

		switch decision.Action {
		case cli.ReviewAccept:
			// Accepting adopts the suggested name as a correction; the next
			// matching pass then claims the list item outright.
			if err := store.CorrectReceiptItem(ctx, decision.ReceiptItemID, result.MatchedName); err != nil {
				return changed, fmt.Errorf("failed to accept suggestion: %w", err)
			}
			if err := store.ConfirmReceiptItem(ctx, decision.ReceiptItemID); err != nil {
				return changed, fmt.Errorf("failed to confirm item: %w", err)
			}
			changed = true
		case cli.ReviewCorrect:
			if err := store.CorrectReceiptItem(ctx, decision.ReceiptItemID, decision.CorrectedName); err != nil {
				return changed, fmt.Errorf("failed to correct item: %w", err)
			}
			changed = true
		case cli.ReviewSkip:
		}
	}

	return changed, nil
}
