// Package llm holds what the LLM-backed summary adapters share: prompt
// loading and output clipping. The provider adapters live in the
// subpackages.
package llm

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

// MaxInputRunes bounds how much document text is sent in one prompt.
const MaxInputRunes = 24000

// Fallback prompts used when no PromptStore is set or it fails.
const (
	defaultSummarise = `Summarise the following document in %d characters or less.

Document:
%s

Summary:`

	defaultSystem = `You write short, factual summaries. Answer with the summary text only.`
)

// Prompter renders summary prompts from an optional PromptStore.
// The zero value uses the built-in prompts.
type Prompter struct {
	mu    sync.RWMutex
	store driven.PromptStore
}

// SetPromptStore installs the store custom prompts are loaded from.
func (p *Prompter) SetPromptStore(store driven.PromptStore) {
	p.mu.Lock()
	p.store = store
	p.mu.Unlock()
}

// Summarise returns the system and user prompts for summarising text in
// at most maxLength characters.
func (p *Prompter) Summarise(text string, maxLength int) (system, user string) {
	system = p.load(driven.PromptSummariseSystem, defaultSystem)
	user = fmt.Sprintf(p.load(driven.PromptSummarise, defaultSummarise), maxLength, clipInput(text))
	return system, user
}

func (p *Prompter) load(name, fallback string) string {
	p.mu.RLock()
	store := p.store
	p.mu.RUnlock()
	if store == nil {
		return fallback
	}
	prompt, err := store.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

func clipInput(text string) string {
	if utf8.RuneCountInString(text) <= MaxInputRunes {
		return text
	}
	return string([]rune(text)[:MaxInputRunes])
}

// MaxTokens estimates the completion budget for a summary of maxLength
// characters, at roughly four characters per token.
func MaxTokens(maxLength int) int {
	return max(maxLength/4, 64)
}

// Clip trims model output and enforces the character limit. Models do not
// reliably honour length instructions.
func Clip(summary string, maxLength int) string {
	summary = strings.TrimSpace(summary)
	summary = strings.TrimPrefix(summary, "Summary:")
	summary = strings.TrimSpace(summary)
	if maxLength <= 0 || utf8.RuneCountInString(summary) <= maxLength {
		return summary
	}
	cut := string([]rune(summary)[:maxLength])
	if i := strings.LastIndexAny(cut, ".!?"); i > len(cut)/2 {
		return cut[:i+1]
	}
	return strings.TrimSpace(cut)
}
