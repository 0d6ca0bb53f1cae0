package llm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

type stubStore struct {
	prompts map[string]string
	err     error
}

func (s *stubStore) Load(name string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.prompts[name], nil
}

func (s *stubStore) Reload() {}

func TestPrompter_Defaults(t *testing.T) {
	var p Prompter
	system, user := p.Summarise("the text", 120)
	assert.Equal(t, defaultSystem, system)
	assert.Contains(t, user, "120 characters")
	assert.Contains(t, user, "the text")
}

func TestPrompter_CustomStore(t *testing.T) {
	var p Prompter
	p.SetPromptStore(&stubStore{prompts: map[string]string{
		driven.PromptSummarise:       "max %d: %s",
		driven.PromptSummariseSystem: "be brief",
	}})
	system, user := p.Summarise("doc", 10)
	assert.Equal(t, "be brief", system)
	assert.Equal(t, "max 10: doc", user)
}

func TestPrompter_StoreErrorFallsBack(t *testing.T) {
	var p Prompter
	p.SetPromptStore(&stubStore{err: errors.New("disk gone")})
	system, _ := p.Summarise("doc", 10)
	assert.Equal(t, defaultSystem, system)
}

func TestPrompter_ClipsInput(t *testing.T) {
	var p Prompter
	_, user := p.Summarise(strings.Repeat("x", MaxInputRunes+100), 10)
	assert.Equal(t, MaxInputRunes, strings.Count(user, "x"))
}

func TestMaxTokens(t *testing.T) {
	assert.Equal(t, 64, MaxTokens(10))
	assert.Equal(t, 250, MaxTokens(1000))
}

func TestClip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"trims", "  hello \n", 50, "hello"},
		{"strips label", "Summary: short one.", 50, "short one."},
		{"no limit", "anything goes", 0, "anything goes"},
		{"cuts at sentence", "First sentence here. Second one runs long", 30, "First sentence here."},
		{"hard cut", "abcdefghijkl", 5, "abcde"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clip(tt.in, tt.max))
		})
	}
}
