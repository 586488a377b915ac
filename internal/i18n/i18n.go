package i18n

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

// Supported languages. English is the fallback.
const (
	LangEN = "en"
	LangAR = "ar"
	LangFR = "fr"
)

//go:embed messages.yaml
var messagesYAML []byte

var catalog = mustLoad(messagesYAML)

func mustLoad(raw []byte) map[string]map[string]string {
	c, err := parse(raw)
	if err != nil {
		panic(fmt.Sprintf("i18n: %v", err))
	}
	return c
}

func parse(raw []byte) (map[string]map[string]string, error) {
	var c map[string]map[string]string
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	for code, msgs := range c {
		if msgs[LangEN] == "" {
			return nil, fmt.Errorf("message %s has no english text", code)
		}
	}
	return c, nil
}

// Localize returns the message for code in lang, falling back to English.
// Unknown codes yield an empty string.
func Localize(lang, code string) string {
	msgs, ok := catalog[code]
	if !ok {
		return ""
	}
	if m := msgs[lang]; m != "" {
		return m
	}
	return msgs[LangEN]
}

// Has reports whether code is in the catalog.
func Has(code string) bool {
	_, ok := catalog[code]
	return ok
}

// Normalize maps a language tag such as "fr-FR" to a supported language.
func Normalize(tag string) (string, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_;"); i >= 0 {
		tag = tag[:i]
	}
	switch tag {
	case LangEN, LangAR, LangFR:
		return tag, true
	}
	return "", false
}

// LangFromRequest picks the language from ?lang= and then Accept-Language.
func LangFromRequest(c *gin.Context) string {
	if lang, ok := Normalize(c.Query("lang")); ok {
		return lang
	}
	for _, part := range strings.Split(c.GetHeader("Accept-Language"), ",") {
		if lang, ok := Normalize(part); ok {
			return lang
		}
	}
	return LangEN
}
