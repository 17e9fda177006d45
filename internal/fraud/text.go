package fraud

import (
	"regexp"
	"strings"

	"github.com/halaleco/amanah/internal/domain"
)

// Marketing phrases that correlate with fraudulent listings.
var suspiciousKeywords = []string{
	"guaranteed halal",
	"100% authentic",
	"limited time",
	"urgent sale",
	"no questions asked",
	"cash only",
	"final sale",
	"as seen on tv",
	"miracle",
	"instant results",
	"secret formula",
	"government approved",
}

var claimPatterns = []struct {
	Pattern *regexp.Regexp
	Claim   string
}{
	{regexp.MustCompile(`(?i)100% (halal|authentic|natural|organic)`), "100% guarantee claim"},
	{regexp.MustCompile(`(?i)certified by`), "Certification claim"},
	{regexp.MustCompile(`(?i)award.winning`), "Award winning claim"},
	{regexp.MustCompile(`(?i)doctor recommended`), "Medical endorsement claim"},
}

var (
	positiveWords = []string{"excellent", "amazing", "perfect", "best", "great", "wonderful"}
	negativeWords = []string{"bad", "terrible", "awful", "worst", "horrible", "fake"}
)

var endPunctuation = regexp.MustCompile(`[.!?]$`)

// AnalyzeText scans the listing name and description for suspicious
// phrases, unverifiable claims, and crude quality and sentiment
// signals.
func AnalyzeText(req *domain.FraudRequest) domain.TextAnalysis {
	text := strings.ToLower(req.ProductName + " " + req.Description)

	found := make([]string, 0)
	for _, kw := range suspiciousKeywords {
		if strings.Contains(text, kw) {
			found = append(found, kw)
		}
	}

	claims := make([]domain.ClaimVerification, 0)
	for _, cp := range claimPatterns {
		if cp.Pattern.MatchString(text) {
			claims = append(claims, domain.ClaimVerification{
				Claim:        cp.Claim,
				IsVerifiable: false,
				Confidence:   30,
			})
		}
	}

	return domain.TextAnalysis{
		LanguageQuality:    assessLanguageQuality(text),
		GrammarScore:       assessGrammar(text),
		SuspiciousKeywords: found,
		ClaimsVerification: claims,
		SentimentScore:     analyzeSentiment(text),
	}
}

// assessLanguageQuality penalizes short words, thin descriptions, and
// exclamation spam.
func assessLanguageQuality(text string) int {
	words := strings.Fields(text)
	wordCount := len(words)
	if wordCount == 0 {
		wordCount = 1
	}
	avgWordLen := float64(len(strings.ReplaceAll(text, " ", ""))) / float64(wordCount)

	score := 70
	if avgWordLen < 3 {
		score -= 20
	}
	if wordCount < 10 {
		score -= 15
	}
	if strings.Contains(text, "!!!") || strings.Contains(text, "???") {
		score -= 10
	}

	return clampInt(score, 0, 100)
}

func assessGrammar(text string) int {
	score := 80
	if strings.Contains(text, "  ") {
		score -= 5
	}
	if !endPunctuation.MatchString(strings.TrimSpace(text)) {
		score -= 10
	}
	if len(strings.Split(text, ".")) < 2 {
		score -= 10
	}
	return clampInt(score, 0, 100)
}

func analyzeSentiment(text string) float64 {
	score := 0.0
	for _, w := range positiveWords {
		if strings.Contains(text, w) {
			score += 0.1
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(text, w) {
			score -= 0.1
		}
	}
	if score < -1 {
		score = -1
	}
	if score > 1 {
		score = 1
	}
	return score
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
