// Package classifier detects the issuing bank, statement period and scanned nature of a
// statement from its recovered page text.
package classifier

import (
	"regexp"
	"strings"

	"github.com/iho/banky/internal/domain"
	"github.com/iho/banky/internal/textnorm"
)

const (
	// SourcePages is how many leading pages are scored for brand detection.
	SourcePages = 3
	// PeriodPages is how many leading pages are searched for a statement period.
	PeriodPages = 2
	// ScanSamplePages is how many leading pages feed the scanned heuristic.
	ScanSamplePages = 3

	routingCodeWeight = 3
	textualWeight     = 1

	scannedMaxChars     = 100
	scannedCharsPerPage = 50
)

type signature struct {
	re     *regexp.Regexp
	weight int
}

// textualSignatures are matched against folded (lower-case, accent-free) text.
var textualSignatures = map[domain.Brand][]string{
	domain.BrandBBVA:            {`bbva\s*(?:bancomer|mexico)?`, `bancomer`, `banco\s+bilbao\s+vizcaya`},
	domain.BrandSantander:       {`banco\s+santander`, `santander\s*(?:mexico)?`},
	domain.BrandBanorte:         {`banorte`, `banco\s+del\s+norte`},
	domain.BrandHSBC:            {`hsbc`},
	domain.BrandCitibanamex:     {`citibanamex`, `banamex`, `banco\s+nacional\s+de\s+mexico`},
	domain.BrandScotiabank:      {`scotiabank`},
	domain.BrandInbursa:         {`inbursa`},
	domain.BrandMultiva:         {`multiva`},
	domain.BrandBanregio:        {`banregio`},
	domain.BrandAzteca:          {`banco\s+azteca`, `azteca`},
	domain.BrandAmericanExpress: {`american\s+express`, `amex`},
}

// Classifier holds the compiled detection tables. It is safe for concurrent use.
type Classifier struct {
	signatures map[domain.Brand][]signature
	grammars   []periodGrammar
}

// New compiles the brand signatures and period grammars.
func New() *Classifier {
	sigs := make(map[domain.Brand][]signature, len(textualSignatures))
	for _, brand := range domain.Brands() {
		for _, pattern := range textualSignatures[brand] {
			sigs[brand] = append(sigs[brand], signature{re: regexp.MustCompile(pattern), weight: textualWeight})
		}
		if code := brand.RoutingCode(); code != "" {
			sigs[brand] = append(sigs[brand], signature{re: regexp.MustCompile(regexp.QuoteMeta(code)), weight: routingCodeWeight})
		}
	}

	return &Classifier{
		signatures: sigs,
		grammars:   periodGrammars(),
	}
}

// Scores returns the weighted signature score of every brand with at least one match.
func (c *Classifier) Scores(pages []string) map[domain.Brand]int {
	text := textnorm.Fold(strings.Join(textnorm.Leading(pages, SourcePages), " "))
	scores := make(map[domain.Brand]int)
	if strings.TrimSpace(text) == "" {
		return scores
	}

	for brand, sigs := range c.signatures {
		score := 0
		for _, sig := range sigs {
			score += sig.weight * len(sig.re.FindAllStringIndex(text, -1))
		}
		if score > 0 {
			scores[brand] = score
		}
	}
	return scores
}

// DetectSource returns the brand with the strictly highest score. Ties go to the brand that
// comes first in enumeration order; no match at all yields BrandUnknown.
func (c *Classifier) DetectSource(pages []string) domain.Brand {
	scores := c.Scores(pages)

	best, bestScore := domain.BrandUnknown, 0
	for _, brand := range domain.Brands() {
		if scores[brand] > bestScore {
			best, bestScore = brand, scores[brand]
		}
	}
	return best
}

// DetectScanned reports whether the sampled pages look like images of paper rather than
// digital text. A nil or empty sample is treated as digital.
func (c *Classifier) DetectScanned(stats []domain.PageStats) bool {
	if len(stats) > ScanSamplePages {
		stats = stats[:ScanSamplePages]
	}

	chars, images := 0, 0
	for _, s := range stats {
		chars += s.Chars
		images += s.Images
	}

	if images == 0 {
		return false
	}
	return chars < scannedMaxChars || chars < images*scannedCharsPerPage
}

// HasMeaningfulText reports whether any page carries more than minChars non-blank characters.
func HasMeaningfulText(pages []string, minChars int) bool {
	for _, p := range pages {
		if len([]rune(strings.TrimSpace(p))) > minChars {
			return true
		}
	}
	return false
}
