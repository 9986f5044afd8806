package detector

import (
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/sebastienrousseau/langweave/detect/common"
)

// Classification is a statistical guess for a single word.
// Language is the classifier's own identifier, see NormalizeCode.
type Classification struct {
	Language   string
	Confidence float64
	Reliable   bool
}

// Classifier is the seam between the hybrid detector and a whole-word
// statistical language classifier.
type Classifier interface {
	Classify(word string) (Classification, bool)
}

// ClassifierFunc adapts an ordinary function to Classifier.
type ClassifierFunc func(word string) (Classification, bool)

func (f ClassifierFunc) Classify(word string) (Classification, bool) {
	return f(word)
}

// WhatlangClassifier delegates to whatlanggo. Native identifiers are
// ISO 639-3 codes ("eng", "cmn", ...).
type WhatlangClassifier struct {
	options whatlanggo.Options
}

func NewWhatlangClassifier() *WhatlangClassifier {
	return &WhatlangClassifier{}
}

// NewWhatlangClassifierWithWhitelist restricts whatlanggo to langs.
func NewWhatlangClassifierWithWhitelist(langs ...whatlanggo.Lang) *WhatlangClassifier {
	wl := make(map[whatlanggo.Lang]bool, len(langs))
	for _, l := range langs {
		wl[l] = true
	}
	return &WhatlangClassifier{
		options: whatlanggo.Options{Whitelist: wl},
	}
}

func (c *WhatlangClassifier) Classify(word string) (cl Classification, ok bool) {
	info := whatlanggo.DetectWithOptions(word, c.options)
	if info.Script == nil || info.Lang < 0 {
		return
	}
	code := info.Lang.Iso6393()
	if code == "" {
		return
	}
	return Classification{
		Language:   code,
		Confidence: info.Confidence,
		Reliable:   info.IsReliable(),
	}, true
}

// WhatlangLangs resolves ISO 639-1 or ISO 639-3 codes to whatlanggo languages.
func WhatlangLangs(codes ...string) (langs []whatlanggo.Lang, err error) {
	index := make(map[string]whatlanggo.Lang, 2*len(whatlanggo.Langs))
	for l := range whatlanggo.Langs {
		index[l.Iso6393()] = l
		if c := l.Iso6391(); c != "" {
			index[c] = l
		}
	}

	for _, code := range codes {
		l, ok := index[strings.ToLower(strings.TrimSpace(code))]
		if !ok {
			err = common.NewUnsupportedLanguage(code)
			return
		}
		langs = append(langs, l)
	}
	return
}
