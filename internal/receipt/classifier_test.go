package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsProductLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{
			name: "plain product line",
			line: "LAT PS INT 1,29",
			want: true,
		},
		{
			name: "total row rejected",
			line: "TOTALE 23,40",
			want: false,
		},
		{
			name: "subtotal rejected",
			line: "SUBTOTALE 12,00",
			want: false,
		},
		{
			name: "tax row rejected",
			line: "IVA 22% 4,31",
			want: false,
		},
		{
			name: "payment method rejected",
			line: "CONTANTI 25,00",
			want: false,
		},
		{
			name: "card payment rejected",
			line: "CARTA DI CREDITO 23,40",
			want: false,
		},
		{
			name: "change rejected",
			line: "RESTO 1,60",
			want: false,
		},
		{
			name: "fiscal header rejected",
			line: "P.IVA 01234567890",
			want: false,
		},
		{
			name: "date stamp rejected",
			line: "12/03/2024 18:45",
			want: false,
		},
		{
			name: "time only rejected",
			line: "18:45:12",
			want: false,
		},
		{
			name: "separator row rejected",
			line: "--------------------",
			want: false,
		},
		{
			name: "pure numeric row rejected",
			line: "  1,29  ",
			want: false,
		},
		{
			name: "too short after trim",
			line: "  ab ",
			want: false,
		},
		{
			name: "empty line",
			line: "",
			want: false,
		},
		{
			name: "product with quantity prefix",
			line: "2x YOGURT GRECO 1,99",
			want: true,
		},
		{
			name: "abbreviated product survives",
			line: "MOZZ BUF 125G 1,09",
			want: true,
		},
		{
			name: "noise that looks like a product is kept",
			line: "GRAZIE E ARRIVEDERCI",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProductLine(tt.line))
		})
	}
}
