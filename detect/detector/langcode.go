package detector

import "strings"

var nativeToCanonical = map[string]string{
	"eng": "en",
	"fra": "fr",
	"deu": "de",
	"spa": "es",
	"por": "pt",
	"jpn": "ja",
	"cmn": "zh",
	"arb": "ar",
	"hin": "hi",
	"kor": "ko",
	"rus": "ru",
	"ita": "it",
	"nld": "nl",
	"heb": "he",
	"ind": "id",
}

// NormalizeCode maps a classifier identifier to its canonical two-letter
// code. Identifiers outside the known set are returned unchanged.
func NormalizeCode(native string) string {
	if code, ok := nativeToCanonical[strings.ToLower(native)]; ok {
		return code
	}
	return native
}
