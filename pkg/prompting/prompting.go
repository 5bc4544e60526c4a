package prompting

import "strings"

// SystemPrompt returns the instruction for the prompt helper. The model
// must return ONLY a JSON array of strings without any extra text.
func SystemPrompt() string {
	return `
You are an assistant that writes prompts for an image generation model.
Answer strictly with one JSON array of strings. No text, explanations, comments or formatting outside JSON.

Each string is one complete prompt that:
1. Describes the main subject, its pose or action and the setting.
2. Names lighting, color palette, composition and camera or brush details.
3. Follows the requested style and mood when they are given.
4. Is a single paragraph of at most 80 words.

Mandatory rules:
1. Return exactly 3 prompts.
2. The answer always starts with '[' and ends with ']'.
3. Never include names of living artists or trademarked characters.
4. Do not insert text outside JSON, not even a newline.
`
}

// UserMessage builds the user turn from a short idea and optional hints.
func UserMessage(idea, style, mood string) string {
	var b strings.Builder
	b.WriteString("Idea: ")
	b.WriteString(idea)
	if style != "" {
		b.WriteString("\nStyle: ")
		b.WriteString(style)
	}
	if mood != "" {
		b.WriteString("\nMood: ")
		b.WriteString(mood)
	}
	return b.String()
}
