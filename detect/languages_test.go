package detect

import (
	"context"
	"testing"

	"github.com/sebastienrousseau/langweave/detect/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportedLanguages(t *testing.T) {
	langs := SupportedLanguages()
	assert.Len(t, langs, 15)
	assert.ElementsMatch(t,
		[]string{"en", "fr", "de", "es", "pt", "it", "nl", "ru", "ar", "he", "hi", "ja", "ko", "zh", "id"},
		langs)

	// Callers get their own copy
	langs[0] = "xx"
	assert.Equal(t, "en", SupportedLanguages()[0])
}

func TestIsLanguageSupported(t *testing.T) {
	for _, code := range []string{"en", "EN", " fr ", "zh", "fr-CA", "pt-BR", "zh-Hant", "ID"} {
		assert.True(t, IsLanguageSupported(code), code)
	}
	for _, code := range []string{"", "xx", "el", "sv", "english", "123"} {
		assert.False(t, IsLanguageSupported(code), code)
	}
}

func TestDetectLanguage(t *testing.T) {
	lang, err := DetectLanguage(context.Background(), "Bonjour tout le monde")
	require.NoError(t, err)
	assert.Equal(t, "fr", lang)

	lang, err = DetectLanguage(context.Background(), "Здравствуйте")
	require.NoError(t, err)
	assert.Equal(t, "ru", lang)

	_, err = DetectLanguage(context.Background(), "")
	assert.True(t, common.IsDetectionFailed(err))

	_, err = DetectLanguage(context.Background(), "12345 @#$% !")
	assert.True(t, common.IsDetectionFailed(err))
}

func TestDetectLanguageCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Either the worker or the cancellation may win, both are valid outcomes.
	lang, err := DetectLanguage(ctx, "hello")
	if err != nil {
		assert.True(t, common.IsDetectionFailed(err))
	} else {
		assert.Equal(t, "en", lang)
	}
}
