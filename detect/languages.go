package detect

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/sebastienrousseau/langweave/detect/common"
	"github.com/sebastienrousseau/langweave/detect/detector"
	"golang.org/x/text/language"
)

var supportedLanguages = []string{
	"en", "fr", "de", "es", "pt", "it", "nl", "ru",
	"ar", "he", "hi", "ja", "ko", "zh", "id",
}

// SupportedLanguages returns the ISO 639-1 codes the default rule set
// recognizes.
func SupportedLanguages() []string {
	return slices.Clone(supportedLanguages)
}

// IsLanguageSupported reports whether code, or the base language of a
// BCP 47 tag such as "fr-CA", is supported. Matching ignores case.
func IsLanguageSupported(code string) bool {
	code = strings.ToLower(strings.TrimSpace(code))
	if slices.Contains(supportedLanguages, code) {
		return true
	}

	tag, err := language.Parse(code)
	if err != nil {
		return false
	}
	base, conf := tag.Base()
	if conf != language.Exact {
		return false
	}
	return slices.Contains(supportedLanguages, base.String())
}

var defaultHybrid = sync.OnceValues(func() (*detector.Hybrid, error) {
	return detector.TryNewHybrid()
})

// DetectLanguage detects the language of text with a process-wide hybrid
// detector, created on first use.
func DetectLanguage(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", common.NewDetectionFailed(nil)
	}
	h, err := defaultHybrid()
	if err != nil {
		return "", err
	}
	return detector.Await(h.DetectAsync(ctx, text))
}
