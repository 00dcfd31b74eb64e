package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gbarzaghi/scontrino/internal/model"
)

// ReviewAction is the user's verdict on one suggested match.
type ReviewAction string

// Review actions.
const (
	ReviewAccept  ReviewAction = "accept"
	ReviewCorrect ReviewAction = "correct"
	ReviewSkip    ReviewAction = "skip"
)

// ReviewDecision records what the user chose for a suggestion in the
// review flow.
type ReviewDecision struct {
	CorrectedName string
	Action        ReviewAction
	ReceiptItemID int64
	ListItemID    int64
}

// Prompter implements the interactive review flow for suggested matches.
type Prompter struct {
	writer io.Writer
	reader *NonBlockingReader
}

// NewPrompter creates a prompter over the given reader and writer.
// Nil arguments default to stdin and stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		reader: NewNonBlockingReader(reader),
		writer: writer,
	}
}

// ReviewSuggestion shows one suggestion-band result and asks the user to
// accept, correct, or skip it.
func (p *Prompter) ReviewSuggestion(ctx context.Context, item *model.ReceiptItem, result *model.MatchResult) (ReviewDecision, error) {
	select {
	case <-ctx.Done():
		return ReviewDecision{}, ctx.Err()
	default:
	}

	content := fmt.Sprintf("Receipt line: %s\nParsed as:    %s\nSuggested:    %s (%.0f%%)",
		item.RawText, item.DisplayName(), WarningStyle.Render(result.MatchedName), result.Confidence)
	if _, err := fmt.Fprintln(p.writer, RenderBox("Possible match", content)); err != nil {
		return ReviewDecision{}, fmt.Errorf("failed to write suggestion box: %w", err)
	}

	options := fmt.Sprintf("  [A] Accept match: %s\n  [C] Correct the item name\n  [S] Skip",
		SuccessStyle.Render(result.MatchedName))
	if _, err := fmt.Fprintln(p.writer, options); err != nil {
		return ReviewDecision{}, fmt.Errorf("failed to write options: %w", err)
	}

	choice, err := p.promptChoice(ctx, "Choice", []string{"a", "c", "s"})
	if err != nil {
		return ReviewDecision{}, err
	}

	decision := ReviewDecision{ReceiptItemID: item.ID}
	switch choice {
	case "a":
		decision.Action = ReviewAccept
		if result.SuggestedItemID != nil {
			decision.ListItemID = *result.SuggestedItemID
		}
	case "c":
		name, promptErr := p.promptText(ctx, "Item name")
		if promptErr != nil {
			return ReviewDecision{}, promptErr
		}
		decision.Action = ReviewCorrect
		decision.CorrectedName = name
	case "s":
		decision.Action = ReviewSkip
	}

	return decision, nil
}

// Confirm asks a yes/no question, defaulting to no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(question+" [y/N]")); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := p.reader.ReadLine(ctx)
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(line)
	return answer == "y" || answer == "yes", nil
}

// promptChoice repeats the prompt until the user enters one of the valid
// single-letter choices.
func (p *Prompter) promptChoice(ctx context.Context, prompt string, valid []string) (string, error) {
	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := p.reader.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			return "", ErrInputCancelled
		}
		if err != nil {
			return "", err
		}

		choice := strings.ToLower(line)
		for _, v := range valid {
			if choice == v {
				return choice, nil
			}
		}

		if _, err := fmt.Fprintln(p.writer, FormatWarning("Please enter one of: "+strings.Join(valid, ", "))); err != nil {
			return "", fmt.Errorf("failed to write retry message: %w", err)
		}
	}
}

// promptText repeats the prompt until the user enters a non-empty line.
func (p *Prompter) promptText(ctx context.Context, prompt string) (string, error) {
	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := p.reader.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			return "", ErrInputCancelled
		}
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatWarning("A name is required")); err != nil {
			return "", fmt.Errorf("failed to write retry message: %w", err)
		}
	}
}
