package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/banky/internal/domain"
)

func TestDetectSource(t *testing.T) {
	c := New()

	tests := []struct {
		name  string
		pages []string
		want  domain.Brand
	}{
		{"bbva header", []string{"BBVA Bancomer\nEstado de cuenta"}, domain.BrandBBVA},
		{"accented citibanamex", []string{"Banco Nacional de México, S.A."}, domain.BrandCitibanamex},
		{"santander routing code only", []string{"CLABE 014180001234567890"}, domain.BrandSantander},
		{"banorte routing code only", []string{"cuenta 072180004"}, domain.BrandBanorte},
		{"routing code outweighs a textual mention", []string{"pago a HSBC", "CLABE 012180002"}, domain.BrandBBVA},
		{"no signature", []string{"Lorem ipsum dolor sit amet"}, domain.BrandUnknown},
		{"empty pages", nil, domain.BrandUnknown},
		{"blank pages", []string{"", "   "}, domain.BrandUnknown},
		{"tie broken by enumeration order", []string{"inbursa multiva"}, domain.BrandInbursa},
		{"only first three pages count", []string{"x", "y", "z", "banorte banorte"}, domain.BrandUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.DetectSource(tt.pages))
		})
	}
}

func TestScores_WeightsRoutingCodes(t *testing.T) {
	c := New()

	scores := c.Scores([]string{"banorte 072180004"})
	assert.Equal(t, 4, scores[domain.BrandBanorte])

	scores = c.Scores([]string{"Banco Santander México"})
	// "banco santander" and "santander mexico" both match.
	assert.Equal(t, 2, scores[domain.BrandSantander])
}

func TestEveryBrandHasSignatures(t *testing.T) {
	c := New()
	for _, b := range domain.Brands() {
		require.NotEmpty(t, c.signatures[b], "brand %s has no signatures", b)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDetectPeriod(t *testing.T) {
	c := New()

	tests := []struct {
		name      string
		pages     []string
		wantStart time.Time
		wantEnd   time.Time
		wantNil   bool
	}{
		{
			name:      "slash range",
			pages:     []string{"Periodo: 01/01/2024 - 31/01/2024"},
			wantStart: date(2024, time.January, 1),
			wantEnd:   date(2024, time.January, 31),
		},
		{
			name:      "accented slash range",
			pages:     []string{"PERÍODO 1/2/2024-29/2/2024"},
			wantStart: date(2024, time.February, 1),
			wantEnd:   date(2024, time.February, 29),
		},
		{
			name:      "long form",
			pages:     []string{"Estado de cuenta del 01 de Marzo al 31 de Marzo de 2024"},
			wantStart: date(2024, time.March, 1),
			wantEnd:   date(2024, time.March, 31),
		},
		{
			name:      "long form across new year",
			pages:     []string{"del 15 de diciembre al 14 de enero de 2024"},
			wantStart: date(2023, time.December, 15),
			wantEnd:   date(2024, time.January, 14),
		},
		{
			name:      "abbreviated months",
			pages:     []string{"01-ENE-2024 al 31-ENE-2024"},
			wantStart: date(2024, time.January, 1),
			wantEnd:   date(2024, time.January, 31),
		},
		{
			name:      "iso range",
			pages:     []string{"2024-04-01 a 2024-04-30"},
			wantStart: date(2024, time.April, 1),
			wantEnd:   date(2024, time.April, 30),
		},
		{
			name:      "bad month in first grammar falls through to the next",
			pages:     []string{"del 01 de foo al 31 de bar de 2024\n2024-05-01 a 2024-05-31"},
			wantStart: date(2024, time.May, 1),
			wantEnd:   date(2024, time.May, 31),
		},
		{
			name:      "impossible date is no match",
			pages:     []string{"Periodo: 31/02/2024 - 31/03/2024"},
			wantNil:   true,
		},
		{
			name:    "third page is ignored",
			pages:   []string{"a", "b", "Periodo: 01/01/2024 - 31/01/2024"},
			wantNil: true,
		},
		{
			name:    "no grammar",
			pages:   []string{"nothing to see"},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := c.DetectPeriod(tt.pages)
			if tt.wantNil {
				assert.Nil(t, start)
				assert.Nil(t, end)
				return
			}
			require.NotNil(t, start)
			require.NotNil(t, end)
			assert.True(t, tt.wantStart.Equal(*start), "start = %s", start)
			assert.True(t, tt.wantEnd.Equal(*end), "end = %s", end)
		})
	}
}

func TestDetectScanned(t *testing.T) {
	c := New()

	tests := []struct {
		name  string
		stats []domain.PageStats
		want  bool
	}{
		{"no stats", nil, false},
		{"digital text without images", []domain.PageStats{{Chars: 20}}, false},
		{"image only", []domain.PageStats{{Chars: 0, Images: 1}}, true},
		{"few chars with image", []domain.PageStats{{Chars: 90, Images: 1}}, true},
		{"low density per image", []domain.PageStats{{Chars: 120, Images: 3}}, true},
		{"dense text with logo", []domain.PageStats{{Chars: 2000, Images: 1}}, false},
		{
			name: "only the first three pages count",
			stats: []domain.PageStats{
				{Chars: 2000}, {Chars: 2000}, {Chars: 2000}, {Images: 50},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.DetectScanned(tt.stats))
		})
	}
}

func TestHasMeaningfulText(t *testing.T) {
	assert.False(t, HasMeaningfulText(nil, 50))
	assert.False(t, HasMeaningfulText([]string{"   short   "}, 50))
	assert.True(t, HasMeaningfulText([]string{"", "BBVA estado de cuenta con suficiente texto para contar"}, 50))
}
