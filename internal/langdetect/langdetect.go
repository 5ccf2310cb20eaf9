// Package langdetect guesses the language of posting text with lingua.
package langdetect

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Languages is the candidate set. Keeping it small keeps the models that
// lingua loads into memory small.
var Languages = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Polish,
	lingua.Swedish,
}

// minRunes is the shortest text worth guessing on.
const minRunes = 20

// Detector wraps a lingua detector. It is safe for concurrent use.
type Detector struct {
	d lingua.LanguageDetector
}

// New builds a low-accuracy detector over Languages.
func New() *Detector {
	d := lingua.NewLanguageDetectorBuilder().
		FromLanguages(Languages...).
		WithLowAccuracyMode().
		Build()
	return &Detector{d: d}
}

// Detect returns the lowercase ISO 639-1 code of the most likely language.
func (d *Detector) Detect(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minRunes {
		return "", false
	}
	lang, ok := d.d.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
