package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gbarzaghi/scontrino/internal/cli"
	"github.com/gbarzaghi/scontrino/internal/common"
	"github.com/gbarzaghi/scontrino/internal/model"
	"github.com/gbarzaghi/scontrino/internal/ocr"
	"github.com/gbarzaghi/scontrino/internal/receipt"
	"github.com/gbarzaghi/scontrino/internal/service"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Scan a receipt image and reconcile it against a shopping list",
		Long: `Send a receipt photo to the OCR service, parse the recognized lines
into products, and match them against the shopping list.

Confirmed items from a previous scan of the same receipt are preserved.`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().Int64P("list", "l", 0, "Shopping list id to reconcile against")
	cmd.Flags().StringP("store", "s", "", "Store name for the receipt")
	cmd.Flags().Bool("review", false, "Interactively review suggested matches")
	_ = cmd.MarkFlagRequired("list")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	imagePath := args[0]
	listID, _ := cmd.Flags().GetInt64("list")
	storeName, _ := cmd.Flags().GetString("store")
	review, _ := cmd.Flags().GetBool("review")

	interrupt := cli.NewInterruptHandler(os.Stdout)
	ctx := interrupt.HandleInterrupts(cmd.Context())

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if _, err := store.GetList(ctx, listID); err != nil {
		return fmt.Errorf("shopping list %d: %w", listID, err)
	}

	receiptID, err := store.CreateReceipt(ctx, &model.Receipt{
		ListID: listID,
		Store:  storeName,
		Status: model.ReceiptStatusProcessing,
	})
	if err != nil {
		return fmt.Errorf("failed to create receipt: %w", err)
	}

	slog.Info("Extracting text from receipt", "image", imagePath, "receipt_id", receiptID)

	lines, err := extractLines(ctx, imagePath)
	if err != nil {
		if statusErr := store.UpdateReceiptStatus(ctx, receiptID, model.ReceiptStatusError, err.Error()); statusErr != nil {
			slog.Error("Failed to record OCR failure", "error", statusErr)
		}
		return common.NewUserError("OCR extraction failed, is the OCR service running?", err)
	}

	items := parseLines(lines)
	if len(items) == 0 {
		if statusErr := store.UpdateReceiptStatus(ctx, receiptID, model.ReceiptStatusError, "no product lines recognized"); statusErr != nil {
			slog.Error("Failed to record empty scan", "error", statusErr)
		}
		return errors.New("no product lines recognized on the receipt")
	}

	if err := store.SaveReceiptItems(ctx, receiptID, items); err != nil {
		return fmt.Errorf("failed to save receipt items: %w", err)
	}

	if err := reconcileReceipt(ctx, store, receiptID, listID, review); err != nil {
		return err
	}

	if err := store.UpdateReceiptStatus(ctx, receiptID, model.ReceiptStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to complete receipt: %w", err)
	}

	enqueueEnrichment(ctx, store, listID)

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Receipt %d scanned with %d items", receiptID, len(items))))
	return nil
}

// extractLines calls the OCR service, retrying while it is unreachable.
// A processing failure (bad image, non-200) is never retried.
func extractLines(ctx context.Context, imagePath string) ([]model.RawLine, error) {
	ocrURL := viper.GetString("ocr.url")
	if ocrURL == "" {
		ocrURL = "http://localhost:8000"
	}
	client := ocr.NewClient(ocrURL)

	var lines []model.RawLine
	err := common.WithRetry(ctx, func() error {
		var opErr error
		lines, opErr = client.ExtractLines(ctx, imagePath)
		if opErr != nil && !errors.Is(opErr, common.ErrOCRUnavailable) {
			return &common.RetryableError{Err: opErr, Retryable: false}
		}
		return opErr
	}, service.RetryOptions{MaxAttempts: 3})
	return lines, err
}

// parseLines runs classification and parsing over the OCR output with a
// progress bar, one tick per raw line.
func parseLines(lines []model.RawLine) []model.ReceiptItem {
	bar := progressbar.NewOptions(len(lines),
		progressbar.OptionSetDescription("Parsing lines"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)

	items := make([]model.ReceiptItem, 0, len(lines))
	for _, line := range lines {
		_ = bar.Add(1)

		if !receipt.IsProductLine(line.Text) {
			continue
		}
		item, ok := receipt.ParseLine(len(items), line.Text, line.Confidence)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	_ = bar.Finish()

	return items
}

// enqueueEnrichment pushes every list item still missing a product name onto
// the background lookup queue. Best-effort: failures only log.
func enqueueEnrichment(ctx context.Context, store service.Storage, listID int64) {
	items, err := store.GetListItems(ctx, listID)
	if err != nil {
		slog.Warn("Failed to load list items for enrichment", "error", err)
		return
	}

	svc := newEnrichService(store)
	pending := 0
	for i := range items {
		if !items[i].NeedsEnrichment() {
			continue
		}
		id := items[i].ID
		svc.Enqueue(items[i].Barcode, &id, &listID)
		pending++
	}

	if pending == 0 {
		return
	}

	slog.Info("Resolving product names", "pending", pending)
	waitForDrain(ctx, svc)
	svc.Stop()
}
