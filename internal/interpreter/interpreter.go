// Package interpreter turns free-form investigator utterances into structured
// case-search commands. It is pure and safe for concurrent use.
package interpreter

import (
	"strings"
	"time"
)

type Parser struct {
	now func() time.Time
}

type Option func(*Parser)

// WithClock replaces the wall clock used to resolve relative time ranges.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// ParseVoiceCommand never fails; uncertainty is reported through a low
// confidence and a clarification question.
func ParseVoiceCommand(text string) ParsedCommand {
	return defaultParser.Parse(text)
}

func (p *Parser) Parse(text string) ParsedCommand {
	normalized := normalize(text)

	intent := classifyIntent(normalized)
	entities := extractEntities(normalized, p.now())
	confidence := scoreConfidence(intent, entities, len(strings.Fields(normalized)))

	cmd := ParsedCommand{
		Intent:             intent,
		Entities:           entities,
		Confidence:         confidence,
		RawText:            text,
		NeedsClarification: confidence < ClarificationThreshold,
	}
	if cmd.NeedsClarification {
		question := Clarify(intent, entities)
		cmd.ClarificationQuestion = &question
	}
	return cmd
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
