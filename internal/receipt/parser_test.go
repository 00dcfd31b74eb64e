package receipt

import (
	"testing"

	"github.com/gbarzaghi/scontrino/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		wantQuantity   *float64
		wantUnitPrice  *float64
		wantTotalPrice *float64
		name           string
		line           string
		wantName       string
		wantUnit       string
		wantOK         bool
	}{
		{
			name:           "name and single price",
			line:           "LAT PS INT 1,29",
			wantOK:         true,
			wantName:       "LAT PS INT",
			wantTotalPrice: floatPtr(1.29),
		},
		{
			name:           "leading quantity pattern",
			line:           "2x YOGURT GRECO 1,99",
			wantOK:         true,
			wantName:       "YOGURT GRECO",
			wantQuantity:   floatPtr(2),
			wantUnit:       UnitPiece,
			wantTotalPrice: floatPtr(1.99),
		},
		{
			name:           "two prices unit and total",
			line:           "ACQUA NAT 0,35 2,10",
			wantOK:         true,
			wantName:       "ACQUA NAT",
			wantUnitPrice:  floatPtr(0.35),
			wantTotalPrice: floatPtr(2.10),
		},
		{
			name:           "weight quantity not mistaken for price",
			line:           "BANANE KG 0,750 1,12",
			wantOK:         true,
			wantName:       "BANANE",
			wantQuantity:   floatPtr(0.75),
			wantUnit:       "kg",
			wantTotalPrice: floatPtr(1.12),
		},
		{
			name:           "count unit token",
			line:           "UOVA CONF 6 2,49",
			wantOK:         true,
			wantName:       "UOVA",
			wantQuantity:   floatPtr(6),
			wantUnit:       UnitPiece,
			wantTotalPrice: floatPtr(2.49),
		},
		{
			name:           "trailing quantity pattern",
			line:           "GRISSINI 1,05 x 3",
			wantOK:         true,
			wantName:       "GRISSINI",
			wantQuantity:   floatPtr(3),
			wantUnit:       UnitPiece,
			wantTotalPrice: floatPtr(1.05),
		},
		{
			name:           "decimal point prices",
			line:           "CAFFE MACINATO 3.79",
			wantOK:         true,
			wantName:       "CAFFE MACINATO",
			wantTotalPrice: floatPtr(3.79),
		},
		{
			name:     "no prices at all",
			line:     "PRODOTTO SENZA PREZZO",
			wantOK:   true,
			wantName: "PRODOTTO SENZA PREZZO",
		},
		{
			name:   "nothing left after stripping",
			line:   "2x 1,99",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := ParseLine(0, tt.line, 0.9)
			require.Equal(t, tt.wantOK, ok)

			// Raw text survives untouched regardless of outcome.
			assert.Equal(t, tt.line, item.RawText)
			assert.Equal(t, model.MatchStatusUnmatched, item.MatchStatus)

			if !tt.wantOK {
				assert.Nil(t, item.ParsedName)
				return
			}

			require.NotNil(t, item.ParsedName)
			assert.Equal(t, tt.wantName, *item.ParsedName)

			if tt.wantQuantity != nil {
				require.NotNil(t, item.ParsedQuantity)
				assert.InDelta(t, *tt.wantQuantity, *item.ParsedQuantity, 0.001)
				require.NotNil(t, item.ParsedUnit)
				assert.Equal(t, tt.wantUnit, *item.ParsedUnit)
			} else {
				assert.Nil(t, item.ParsedQuantity)
			}

			if tt.wantUnitPrice != nil {
				require.NotNil(t, item.ParsedUnitPrice)
				assert.InDelta(t, *tt.wantUnitPrice, *item.ParsedUnitPrice, 0.001)
			} else {
				assert.Nil(t, item.ParsedUnitPrice)
			}

			if tt.wantTotalPrice != nil {
				require.NotNil(t, item.ParsedTotalPrice)
				assert.InDelta(t, *tt.wantTotalPrice, *item.ParsedTotalPrice, 0.001)
			} else {
				assert.Nil(t, item.ParsedTotalPrice)
			}
		})
	}
}

func TestParseLineDefaultQuantity(t *testing.T) {
	item, ok := ParseLine(0, "PANE CASERECCIO 2,20", 0.8)
	require.True(t, ok)
	assert.Nil(t, item.ParsedQuantity)
	assert.Equal(t, 1.0, item.Quantity())
}

func TestClassifyAndParse(t *testing.T) {
	lines := []model.RawLine{
		{Text: "SUPERMERCATO ROSSI CASSA 3", Confidence: 0.95},
		{Text: "LAT PS INT 1,29", Confidence: 0.92},
		{Text: "2x YOGURT GRECO 1,99", Confidence: 0.88},
		{Text: "--------------------", Confidence: 0.99},
		{Text: "TOTALE 23,40", Confidence: 0.97},
		{Text: "CONTANTI 25,00", Confidence: 0.96},
	}

	items := ClassifyAndParse(lines)

	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].Position)
	assert.Equal(t, "LAT PS INT", *items[0].ParsedName)
	assert.Equal(t, 1, items[1].Position)
	assert.Equal(t, "YOGURT GRECO", *items[1].ParsedName)
	assert.InDelta(t, 0.92, items[0].OCRConfidence, 0.001)
}

func TestClassifyAndParseEmpty(t *testing.T) {
	items := ClassifyAndParse(nil)
	assert.Empty(t, items)
}
