// Package companion is the AI chat service: a Gemini-backed completer with
// the Pendo system prompt, plus escalation detection. The completer sits
// behind an interface so handlers can be tested with a fake.
package companion

import (
	"context"
	"strings"
)

// EscalationSentinel is the exact marker the model is instructed to emit
// when a conversation must be handed to a human counsellor. It is stripped
// from the text returned to the client.
const EscalationSentinel = "[[ESCALATE_TO_HUMAN]]"

// SystemPrompt instructs the model to emit EscalationSentinel on self-harm
// or suicide mentions.
const SystemPrompt = `You are Pendo, a compassionate mental health companion for Kenyan high school students.
Use supportive, non-judgmental language. Be brief but warm.
If a user mentions self-harm or suicide, you MUST output the exact code [[ESCALATE_TO_HUMAN]] and encourage them to speak to a counsellor.`

// Turn is one prior exchange in the conversation, role "user" or "model".
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type Completer interface {
	Complete(ctx context.Context, message string, history []Turn) (string, error)
}

// Reply is a completion with the sentinel stripped and surfaced as a flag.
type Reply struct {
	Response string `json:"response"`
	Escalate bool   `json:"escalate"`
}

// Unavailable stands in when no API key is configured; it always answers
// with the client-facing outage message.
type Unavailable struct{}

func (Unavailable) Complete(context.Context, string, []Turn) (string, error) {
	return "I'm sorry, my connection is currently unavailable. Please try again later.", nil
}

type Service struct {
	completer Completer
}

func NewService(completer Completer) *Service {
	return &Service{completer: completer}
}

func (s *Service) Chat(ctx context.Context, message string, history []Turn) (*Reply, error) {
	text, err := s.completer.Complete(ctx, message, history)
	if err != nil {
		return nil, err
	}

	escalate := strings.Contains(text, EscalationSentinel)
	return &Reply{
		Response: strings.TrimSpace(strings.ReplaceAll(text, EscalationSentinel, "")),
		Escalate: escalate,
	}, nil
}
