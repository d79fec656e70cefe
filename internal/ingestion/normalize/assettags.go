package normalize

import (
	"regexp"

	"github.com/cryptoganster/content-pipeline/internal/domain/content"
)

var tickerTokenPattern = regexp.MustCompile(`\b[A-Z]{1,10}\b`)

// knownHighConfidence are well-known tickers that should classify as
// high-confidence even when they appear only once in short text.
var knownHighConfidence = map[string]bool{
	"BTC": true, "ETH": true, "SOL": true, "USDT": true, "USDC": true,
	"BNB": true, "XRP": true, "ADA": true, "DOGE": true,
}

// stopwords are common all-caps words that are not asset tickers and
// should never be tagged.
var stopwords = map[string]bool{
	"I": true, "A": true, "THE": true, "OK": true, "CEO": true, "CFO": true,
	"USA": true, "NFT": true, "API": true, "FAQ": true,
}

// DetectAssetTags scans normalized content for uppercase alphabetic tokens
// up to 10 characters and classifies each as a candidate AssetTag per spec
// §4.4. Confidence is heuristic: known majors score high, repeated
// mentions score medium, single incidental mentions score low.
func DetectAssetTags(normalized string) []content.AssetTag {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, m := range tickerTokenPattern.FindAllString(normalized, -1) {
		if stopwords[m] {
			continue
		}
		if _, seen := counts[m]; !seen {
			order = append(order, m)
		}
		counts[m]++
	}

	tags := make([]content.AssetTag, 0, len(order))
	for _, symbol := range order {
		tags = append(tags, content.AssetTag{
			Symbol:     symbol,
			Confidence: confidenceFor(symbol, counts[symbol]),
		})
	}
	return tags
}

func confidenceFor(symbol string, count int) float64 {
	switch {
	case knownHighConfidence[symbol]:
		return 0.9
	case count >= 2:
		return 0.6
	default:
		return 0.3
	}
}
