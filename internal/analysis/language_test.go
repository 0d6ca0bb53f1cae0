package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	english := "The quick brown fox jumps over the lazy dog while the farmer watches from the old wooden fence."
	assert.Equal(t, "en", DetectLanguage(english))

	german := "Der schnelle braune Fuchs springt über den faulen Hund, während der Bauer vom alten Holzzaun aus zusieht."
	assert.Equal(t, "de", DetectLanguage(german))
}

func TestDetectLanguage_TooShort(t *testing.T) {
	assert.Equal(t, "", DetectLanguage("hello"))
	assert.Equal(t, "", DetectLanguage(""))
}
