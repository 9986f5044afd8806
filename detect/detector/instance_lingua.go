package detector

import (
	"context"
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
	"github.com/sebastienrousseau/langweave/detect/common"
	"github.com/sirupsen/logrus"
)

const (
	LINGUA = "lingua"
)

func init() {
	registerDetectorInstance(LINGUA, newLinguaInstance)
}

type InstanceLingua struct {
	baseInstance
	detector lingua.LanguageDetector
}

// linguaLanguages resolves lowercase ISO 639-1 codes to lingua languages.
func linguaLanguages(codes []string) (langs []lingua.Language, err error) {
	all := map[string]lingua.Language{}
	for _, l := range lingua.AllLanguages() {
		all[strings.ToLower(l.IsoCode639_1().String())] = l
	}

	for _, code := range codes {
		l, ok := all[strings.ToLower(code)]
		if !ok {
			err = common.NewUnsupportedLanguage(code)
			return
		}
		langs = append(langs, l)
	}
	return
}

func newLinguaInstance(conf DetectorConfig) (instance Instance, err error) {
	ld := &InstanceLingua{
		baseInstance: newBaseInstance(conf),
	}

	langs, err := linguaLanguages(conf.DetectLangs)
	if err != nil {
		return
	}
	if len(langs) < 2 {
		err = fmt.Errorf("%s: %w", conf.Name, errLinguaTooFewLanguages)
		return
	}
	ld.logger.Infof("lingua detect languages: %v", conf.DetectLangs)

	ld.detector = lingua.NewLanguageDetectorBuilder().FromLanguages(langs...).Build()
	return ld, nil
}

// mostConfident returns the lowercase ISO 639-1 code with the highest value.
func mostConfident(detector lingua.LanguageDetector, text string) (lang string, confidence float64) {
	for _, cv := range detector.ComputeLanguageConfidenceValues(text) {
		c := cv.Value()
		if c > confidence {
			lang = strings.ToLower(cv.Language().IsoCode639_1().String())
			confidence = c
		}
	}
	return
}

func (ld *InstanceLingua) Detect(_ context.Context, req DetectRequest) (resp *DetectResponse, err error) {
	lang, confidence := mostConfident(ld.detector, req.Text)
	ld.logger.WithField("trace_id", req.TraceId).Tracef("lingua guess '%s' (confidence: %.2f)", lang, confidence)
	return ld.response(lang, confidence)
}

// LinguaDetector is a LanguageDetector backed only by lingua. It reports the
// most likely language among its configured set when that language reaches
// the minimum confidence.
type LinguaDetector struct {
	detector      lingua.LanguageDetector
	minConfidence float64
	logger        *logrus.Entry
}

func NewLinguaDetector(codes []string, minConfidence float64) (ld *LinguaDetector, err error) {
	langs, err := linguaLanguages(codes)
	if err != nil {
		return
	}
	if len(langs) < 2 {
		err = common.NewUnexpected(errLinguaTooFewLanguages)
		return
	}
	ld = &LinguaDetector{
		detector:      lingua.NewLanguageDetectorBuilder().FromLanguages(langs...).Build(),
		minConfidence: minConfidence,
		logger:        logrus.WithField("detector_name", LINGUA),
	}
	return
}

func (ld *LinguaDetector) GetName() string {
	return LINGUA
}

func (ld *LinguaDetector) Detect(text string) (string, error) {
	normalized := strings.TrimSpace(text)
	if normalized == "" {
		return "", common.NewDetectionFailed(nil)
	}
	lang, confidence := mostConfident(ld.detector, normalized)
	if lang == "" || confidence < ld.minConfidence {
		ld.logger.Debugf("no confident guess (best '%s', confidence: %.2f)", lang, confidence)
		return "", common.NewDetectionFailed(nil)
	}
	return lang, nil
}

func (ld *LinguaDetector) DetectAsync(ctx context.Context, text string) <-chan Result {
	return Offload(ctx, func() (string, error) {
		return ld.Detect(text)
	})
}
