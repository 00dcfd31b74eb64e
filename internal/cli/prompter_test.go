package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/gbarzaghi/scontrino/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func suggestionFixture() (*model.ReceiptItem, *model.MatchResult) {
	name := "YOG BIANCO"
	listItemID := int64(7)
	item := &model.ReceiptItem{
		ID:         3,
		RawText:    "YOG BIANCO 0,89",
		ParsedName: &name,
	}
	result := &model.MatchResult{
		ReceiptItemID:   3,
		SuggestedItemID: &listItemID,
		MatchedName:     "Yogurt greco",
		Status:          model.MatchStatusUnmatched,
		Confidence:      62,
	}
	return item, result
}

func TestReviewSuggestionAccept(t *testing.T) {
	item, result := suggestionFixture()
	var out bytes.Buffer
	prompter := NewPrompter(strings.NewReader("a\n"), &out)

	decision, err := prompter.ReviewSuggestion(context.Background(), item, result)
	require.NoError(t, err)

	assert.Equal(t, ReviewAccept, decision.Action)
	assert.Equal(t, int64(3), decision.ReceiptItemID)
	assert.Equal(t, int64(7), decision.ListItemID)
	assert.Contains(t, out.String(), "Yogurt greco")
}

func TestReviewSuggestionCorrect(t *testing.T) {
	item, result := suggestionFixture()
	var out bytes.Buffer
	prompter := NewPrompter(strings.NewReader("c\nYogurt bianco\n"), &out)

	decision, err := prompter.ReviewSuggestion(context.Background(), item, result)
	require.NoError(t, err)

	assert.Equal(t, ReviewCorrect, decision.Action)
	assert.Equal(t, "Yogurt bianco", decision.CorrectedName)
}

func TestReviewSuggestionSkip(t *testing.T) {
	item, result := suggestionFixture()
	var out bytes.Buffer
	prompter := NewPrompter(strings.NewReader("s\n"), &out)

	decision, err := prompter.ReviewSuggestion(context.Background(), item, result)
	require.NoError(t, err)
	assert.Equal(t, ReviewSkip, decision.Action)
}

func TestReviewSuggestionRetriesInvalidChoice(t *testing.T) {
	item, result := suggestionFixture()
	var out bytes.Buffer
	prompter := NewPrompter(strings.NewReader("x\ns\n"), &out)

	decision, err := prompter.ReviewSuggestion(context.Background(), item, result)
	require.NoError(t, err)
	assert.Equal(t, ReviewSkip, decision.Action)
	assert.Contains(t, out.String(), "one of")
}

func TestReviewSuggestionCancelledContext(t *testing.T) {
	item, result := suggestionFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prompter := NewPrompter(strings.NewReader("a\n"), &bytes.Buffer{})
	_, err := prompter.ReviewSuggestion(ctx, item, result)
	assert.Error(t, err)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "yes word", input: "YES\n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "default no", input: "\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompter := NewPrompter(strings.NewReader(tt.input), &bytes.Buffer{})
			got, err := prompter.Confirm(context.Background(), "Proceed?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
