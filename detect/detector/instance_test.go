package detector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/4O4-Not-F0und/detectlanguage-go"
	"github.com/sebastienrousseau/langweave/detect/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDetectorConfig(name, typ string) DetectorConfig {
	conf := DetectorConfig{
		Name: name,
		Type: typ,
	}
	conf.Weight = 1
	conf.Timeout = 5
	conf.DetectLangs = []string{"en", "fr", "de"}
	conf.SourceLangFilter = []string{"en", "fr"}
	conf.SourceLangConfidenceThreshold = 0.5
	conf.Failover = common.DefaultFailoverConfig()
	return conf
}

func TestCheckAndMergeDefaultConfig(t *testing.T) {
	dtc := DefaultDetectorConfig{
		Weight:                        3,
		Timeout:                       10,
		DetectLangs:                   []string{"EN", "Fr"},
		SourceLangFilter:              []string{"en"},
		SourceLangConfidenceThreshold: 0.7,
		Failover:                      common.DefaultFailoverConfig(),
	}

	conf := DetectorConfig{Name: "a", Type: LINGUA}
	require.NoError(t, conf.CheckAndMergeDefaultConfig(dtc))
	assert.Equal(t, 3, conf.Weight)
	assert.EqualValues(t, 10, conf.Timeout)
	assert.Equal(t, []string{"en", "fr"}, conf.DetectLangs)
	assert.Equal(t, []string{"en"}, conf.SourceLangFilter)
	assert.Equal(t, 0.7, conf.SourceLangConfidenceThreshold)
	assert.Equal(t, common.DefaultFailoverConfig(), conf.Failover)

	conf = DetectorConfig{Name: "b", Type: LINGUA}
	conf.Weight = 9
	conf.SourceLangFilter = []string{"de"}
	require.NoError(t, conf.CheckAndMergeDefaultConfig(dtc))
	assert.Equal(t, 9, conf.Weight)
	assert.Equal(t, []string{"de"}, conf.SourceLangFilter)
}

func TestCheckAndMergeDefaultConfigErrors(t *testing.T) {
	dtc := DefaultDetectorConfig{
		Weight:           1,
		Timeout:          10,
		DetectLangs:      []string{"en"},
		SourceLangFilter: []string{"en"},
		Failover:         common.DefaultFailoverConfig(),
	}

	tests := []struct {
		name   string
		conf   DetectorConfig
		modify func(*DefaultDetectorConfig)
	}{
		{"no name", DetectorConfig{Type: LINGUA}, nil},
		{"no type", DetectorConfig{Name: "x"}, nil},
		{"no weight", DetectorConfig{Name: "x", Type: LINGUA}, func(d *DefaultDetectorConfig) { d.Weight = 0 }},
		{"no timeout", DetectorConfig{Name: "x", Type: LINGUA}, func(d *DefaultDetectorConfig) { d.Timeout = 0 }},
		{"no langs", DetectorConfig{Name: "x", Type: LINGUA}, func(d *DefaultDetectorConfig) { d.DetectLangs = nil }},
		{"bad lang", DetectorConfig{Name: "x", Type: LINGUA}, func(d *DefaultDetectorConfig) { d.DetectLangs = []string{"not a code"} }},
		{"no filter", DetectorConfig{Name: "x", Type: LINGUA}, func(d *DefaultDetectorConfig) { d.SourceLangFilter = nil }},
		{"bad threshold", DetectorConfig{Name: "x", Type: LINGUA}, func(d *DefaultDetectorConfig) { d.SourceLangConfidenceThreshold = 1.5 }},
		{"bad failover", DetectorConfig{Name: "x", Type: LINGUA}, func(d *DefaultDetectorConfig) { d.Failover = common.FailoverConfig{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dtc
			if tt.modify != nil {
				tt.modify(&d)
			}
			assert.Error(t, tt.conf.CheckAndMergeDefaultConfig(d))
		})
	}

	conf := DetectorConfig{Name: "x", Type: LINGUA}
	conf.RateLimit = common.RateLimitConfig{Enabled: true}
	assert.Error(t, conf.CheckAndMergeDefaultConfig(dtc))
}

func TestNewDetectorInstanceUnknownType(t *testing.T) {
	_, err := NewDetectorInstance(DetectorConfig{Name: "x", Type: "nope"})
	assert.EqualError(t, err, "unknown detector type 'nope', detector: x")

	assert.Equal(t, []string{DETECT_LANGUAGE, LINGUA, OPENAI}, InstanceTypes())
	assert.Panics(t, func() { registerDetectorInstance(LINGUA, newLinguaInstance) })
}

func TestCheckDetectResult(t *testing.T) {
	b := newBaseInstance(testDetectorConfig("x", LINGUA))

	assert.NoError(t, b.checkDetectResult("en", 0.9))
	assert.NoError(t, b.checkDetectResult("fr", 0.5))

	for _, err := range []error{
		b.checkDetectResult("", 1),
		b.checkDetectResult("de", 0.9),
		b.checkDetectResult("en", 0.49),
	} {
		assert.True(t, CheckWeakError(err), "%v", err)
	}

	resp, err := b.response("en", 0.8)
	require.NoError(t, err)
	assert.Equal(t, &DetectResponse{Language: "en", Confidence: 0.8}, resp)
}

func TestWeakError(t *testing.T) {
	cause := errors.New("low confidence")
	err := fmtWrap(newWeakError(cause))

	assert.True(t, CheckWeakError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "wrapped: low confidence", err.Error())
	assert.False(t, CheckWeakError(cause))
}

func fmtWrap(err error) error {
	return &wrapped{err}
}

type wrapped struct{ err error }

func (w *wrapped) Error() string { return "wrapped: " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

func TestLinguaInstance(t *testing.T) {
	conf := testDetectorConfig("lingua", LINGUA)
	conf.SourceLangConfidenceThreshold = 0.3
	instance, err := NewDetectorInstance(conf)
	require.NoError(t, err)
	assert.Equal(t, "lingua", instance.Name())

	resp, err := instance.Detect(context.Background(), DetectRequest{
		Text: "The quick brown fox jumps over the lazy dog",
	})
	require.NoError(t, err)
	assert.Equal(t, "en", resp.Language)

	// de is detected but filtered out
	_, err = instance.Detect(context.Background(), DetectRequest{
		Text: "Der schnelle braune Fuchs springt über den faulen Hund",
	})
	assert.True(t, CheckWeakError(err))
}

func TestLinguaInstanceErrors(t *testing.T) {
	conf := testDetectorConfig("lingua", LINGUA)
	conf.DetectLangs = []string{"en", "xx"}
	_, err := NewDetectorInstance(conf)
	assert.ErrorIs(t, err, common.NewUnsupportedLanguage(""))

	conf.DetectLangs = []string{"en"}
	_, err = NewDetectorInstance(conf)
	assert.ErrorIs(t, err, errLinguaTooFewLanguages)
}

func TestLinguaDetector(t *testing.T) {
	ld, err := NewLinguaDetector([]string{"en", "fr", "de"}, 0.3)
	require.NoError(t, err)
	assert.Equal(t, LINGUA, ld.GetName())

	lang, err := ld.Detect("The quick brown fox jumps over the lazy dog")
	require.NoError(t, err)
	assert.Equal(t, "en", lang)

	lang, err = Await(ld.DetectAsync(context.Background(), "Le renard brun saute par-dessus le chien paresseux"))
	require.NoError(t, err)
	assert.Equal(t, "fr", lang)

	_, err = ld.Detect("  ")
	assert.True(t, common.IsDetectionFailed(err))

	_, err = NewLinguaDetector([]string{"en"}, 0.3)
	assert.Error(t, err)
}

func TestPickReliable(t *testing.T) {
	lang, confidence := pickReliable([]*detectlanguage.DetectionResult{
		{Language: "ES", Reliable: false, Confidence: 20},
		{Language: "PT", Reliable: true, Confidence: 5},
		nil,
		{Language: "IT", Reliable: true, Confidence: 3},
	})
	assert.Equal(t, "pt", lang)
	assert.EqualValues(t, 5, confidence)

	lang, _ = pickReliable(nil)
	assert.Empty(t, lang)
}

func TestDetectLanguageInstanceNeedsToken(t *testing.T) {
	_, err := NewDetectorInstance(testDetectorConfig("dl", DETECT_LANGUAGE))
	assert.Error(t, err)
}

func TestParseCodeReply(t *testing.T) {
	tests := map[string]string{
		"fr":       "fr",
		"FR":       "fr",
		" en.\n":   "en",
		"\"de\"":   "de",
		"pt-BR":    "pt",
		"fra":      "fr",
		"und":      "",
		"":         "",
		"English":  "",
		"not sure": "",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseCodeReply(in), in)
	}
}

func newChatServer(t *testing.T, status int, content string) (*httptest.Server, <-chan http.Header) {
	t.Helper()
	headers := make(chan http.Header, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			}},
			"usage": map[string]any{
				"prompt_tokens":     10,
				"completion_tokens": 1,
				"total_tokens":      11,
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, headers
}

func TestOpenAIInstance(t *testing.T) {
	srv, headers := newChatServer(t, http.StatusOK, "fr")

	conf := testDetectorConfig("gpt", OPENAI)
	conf.Endpoint = srv.URL + "/v1/"
	conf.Token = "secret"
	conf.Model = "test-model"
	instance, err := NewDetectorInstance(conf)
	require.NoError(t, err)

	resp, err := instance.Detect(context.Background(), DetectRequest{Text: "Bonjour à tous"})
	require.NoError(t, err)
	assert.Equal(t, "fr", resp.Language)
	assert.Equal(t, 1.0, resp.Confidence)
	assert.Equal(t, "Bearer secret", (<-headers).Get("Authorization"))
}

func TestOpenAIInstanceFilteredReply(t *testing.T) {
	srv, _ := newChatServer(t, http.StatusOK, "de")

	conf := testDetectorConfig("gpt", OPENAI)
	conf.Endpoint = srv.URL + "/v1/"
	conf.Token = "secret"
	conf.Model = "test-model"
	instance, err := NewDetectorInstance(conf)
	require.NoError(t, err)

	_, err = instance.Detect(context.Background(), DetectRequest{Text: "Guten Tag"})
	assert.True(t, CheckWeakError(err))
}

func TestOpenAIInstanceHTTPError(t *testing.T) {
	srv, _ := newChatServer(t, http.StatusUnauthorized, "")

	conf := testDetectorConfig("gpt", OPENAI)
	conf.Endpoint = srv.URL + "/v1/"
	conf.Token = "secret"
	conf.Model = "test-model"
	instance, err := NewDetectorInstance(conf)
	require.NoError(t, err)

	_, err = instance.Detect(context.Background(), DetectRequest{Text: "hello"})
	require.Error(t, err)
	assert.False(t, CheckWeakError(err))

	var httpErr *common.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "********", httpErr.Request.Header.Get("Authorization"))
	assert.Equal(t, http.StatusUnauthorized, httpErr.Response.StatusCode)
	assert.Contains(t, string(httpErr.DumpRequest(false)), "Authorization: ********")
}

func TestOpenAIInstanceNeedsModel(t *testing.T) {
	_, err := NewDetectorInstance(testDetectorConfig("gpt", OPENAI))
	assert.Error(t, err)
}
