package detector

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/sebastienrousseau/langweave/detect/common"
)

// Letters, marks, digits and underscore count as word characters, so keyword
// boundaries behave the same for "olá" as for "hello".
const (
	wordStart = `(?:^|[^\p{L}\p{M}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{M}\p{N}_])`
)

// RuleDef describes a heuristic rule before compilation.
// Keywords are matched case-insensitively as whole words, Scripts are
// Unicode script names (as accepted by \p{...}) and Extra is a raw character
// class body appended to the script class.
type RuleDef struct {
	Lang     string
	Keywords []string
	Scripts  []string
	Extra    string
}

// Expr builds the regular expression source of the rule.
func (d RuleDef) Expr() string {
	var alts []string
	if len(d.Keywords) > 0 {
		words := make([]string, 0, len(d.Keywords))
		for _, w := range d.Keywords {
			words = append(words, regexp.QuoteMeta(w))
		}
		alts = append(alts, wordStart+`(?:`+strings.Join(words, "|")+`)`+wordEnd)
	}
	if len(d.Scripts) > 0 || d.Extra != "" {
		var class strings.Builder
		class.WriteString("[")
		for _, s := range d.Scripts {
			class.WriteString(`\p{` + s + `}`)
		}
		class.WriteString(d.Extra)
		class.WriteString("]")
		alts = append(alts, class.String())
	}
	return `(?i)` + strings.Join(alts, "|")
}

// Rule is an immutable (pattern, language) pair.
type Rule struct {
	pattern *regexp.Regexp
	lang    string
}

func (r Rule) Lang() string {
	return r.lang
}

func (r Rule) Pattern() string {
	return r.pattern.String()
}

func (r Rule) Match(text string) bool {
	return r.pattern.MatchString(text)
}

// RuleSet is an ordered priority list of rules. It is never mutated after
// construction and is shared by pointer between detectors.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet compiles defs in order. A definition that fails to compile
// yields an error of kind KindUnexpected.
func NewRuleSet(defs []RuleDef) (*RuleSet, error) {
	rules := make([]Rule, 0, len(defs))
	for _, d := range defs {
		if d.Lang == "" {
			return nil, common.NewUnexpected(fmt.Errorf("rule #%d: language code is required", len(rules)))
		}
		if len(d.Keywords) == 0 && len(d.Scripts) == 0 && d.Extra == "" {
			return nil, common.NewUnexpected(fmt.Errorf("rule '%s': no keywords or scripts", d.Lang))
		}
		re, err := regexp.Compile(d.Expr())
		if err != nil {
			return nil, common.NewUnexpected(fmt.Errorf("rule '%s': %w", d.Lang, err))
		}
		rules = append(rules, Rule{pattern: re, lang: strings.ToLower(d.Lang)})
	}
	return &RuleSet{rules: rules}, nil
}

// MustRuleSet is like NewRuleSet but panics on error.
func MustRuleSet(defs []RuleDef) *RuleSet {
	rs, err := NewRuleSet(defs)
	if err != nil {
		panic(err)
	}
	return rs
}

var defaultRuleSet = sync.OnceValues(func() (*RuleSet, error) {
	return NewRuleSet(DefaultRuleDefs())
})

// DefaultRuleSet returns the process-wide rule set, compiled on first use.
func DefaultRuleSet() (*RuleSet, error) {
	return defaultRuleSet()
}

// Rules returns a copy of the ordered rules.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Match returns the first rule matching anywhere in text.
func (rs *RuleSet) Match(text string) (rule Rule, ok bool) {
	for _, r := range rs.rules {
		if r.Match(text) {
			return r, true
		}
	}
	return
}

// DefaultRuleDefs returns the built-in rules. Order is significant: Latin
// keyword sets come first, script rules after them, and the earliest
// matching rule decides.
func DefaultRuleDefs() []RuleDef {
	return []RuleDef{
		{
			Lang: "en",
			Keywords: []string{"hello", "hi", "hey", "goodbye", "bye", "thank you", "thanks",
				"please", "the", "a", "an", "in", "on", "at", "for", "to", "of"},
		},
		{
			Lang: "fr",
			Keywords: []string{"bonjour", "salut", "au revoir", "merci", "s'il vous plaît",
				"le", "la", "les", "un", "une", "des", "dans", "sur", "pour", "de"},
		},
		{
			Lang: "de",
			Keywords: []string{"hallo", "guten tag", "auf wiedersehen", "tschüss", "danke", "bitte",
				"der", "die", "das", "ein", "eine", "in", "auf", "für", "zu", "von"},
		},
		{
			Lang: "es",
			Keywords: []string{"hola", "adiós", "gracias", "por favor",
				"el", "la", "los", "las", "un", "una", "unos", "unas", "en", "para", "por"},
		},
		{
			Lang: "pt",
			Keywords: []string{"olá", "adeus", "obrigado", "obrigada", "por favor",
				"o", "a", "os", "as", "um", "uma", "uns", "umas", "em", "para", "por"},
		},
		{
			Lang: "it",
			Keywords: []string{"ciao", "buongiorno", "arrivederci", "grazie", "prego", "per favore",
				"il", "lo", "gli", "della", "che", "non", "sono"},
		},
		{
			Lang: "nl",
			Keywords: []string{"goedemorgen", "tot ziens", "dank je", "bedankt", "alsjeblieft",
				"het", "een", "niet", "ik", "zijn"},
		},
		{
			Lang: "id",
			Keywords: []string{"selamat pagi", "terima kasih", "apa kabar", "sampai jumpa",
				"yang", "dan", "ini", "itu", "tidak", "saya"},
		},
		{
			Lang:     "ru",
			Keywords: []string{"здравствуйте", "привет", "до свидания", "пока", "спасибо", "пожалуйста"},
			Scripts:  []string{"Cyrillic"},
		},
		{
			Lang:    "ar",
			Scripts: []string{"Arabic"},
		},
		{
			Lang:    "he",
			Scripts: []string{"Hebrew"},
		},
		{
			Lang:     "ja",
			Keywords: []string{"こんにちは", "さようなら", "ありがとう", "お願いします"},
			Scripts:  []string{"Hiragana", "Katakana"},
			Extra:    "ー",
		},
		{
			Lang:     "zh",
			Keywords: []string{"你好", "再见", "谢谢", "请"},
			Scripts:  []string{"Han"},
		},
		{
			Lang:     "hi",
			Keywords: []string{"नमस्ते", "अलविदा", "धन्यवाद", "कृपया"},
			Scripts:  []string{"Devanagari"},
		},
		{
			Lang:     "ko",
			Keywords: []string{"안녕하세요", "안녕히 가세요", "감사합니다", "주세요"},
			Scripts:  []string{"Hangul"},
		},
	}
}
