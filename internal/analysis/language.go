package analysis

import (
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
)

// minLanguageSample is the shortest text, in runes, worth classifying.
const minLanguageSample = 20

// maxLanguageSample bounds how much text is fed to the detector.
const maxLanguageSample = 4096

// DetectLanguage returns the ISO 639-1 code of the dominant language of
// text, or "" when the text is too short or the detection is unreliable.
func DetectLanguage(text string) string {
	if utf8.RuneCountInString(text) < minLanguageSample {
		return ""
	}
	if len(text) > maxLanguageSample {
		text = text[:maxLanguageSample]
		for !utf8.ValidString(text) && len(text) > 0 {
			text = text[:len(text)-1]
		}
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
