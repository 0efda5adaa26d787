package llm

import (
	"fmt"
	"strings"

	"quill/internal/domain/generation"
)

// Prompt builders shared by the provider adapters. Each generator call
// carries the style-profile instruction so tone stays consistent across
// draft, suggestion and merge calls.

func buildDraftSystem(instruction string) string {
	return "You are a writing assistant. Produce a complete, ready-to-publish draft. " +
		"Output only the draft text itself, with no preamble, commentary or code fences.\n\n" +
		"Style: " + instruction
}

func buildDraftUser(prompt string, attachmentNotes []string) string {
	var sb strings.Builder
	sb.WriteString(prompt)
	for _, note := range attachmentNotes {
		sb.WriteString("\n\n")
		sb.WriteString(note)
	}
	return sb.String()
}

func buildSuggestionSystem(instruction string) string {
	return "You are an editor reviewing a draft. Propose specific, local improvements. " +
		"Respond with a JSON array only, no prose, where each element is an object with keys " +
		`"original_text" (a verbatim substring of the draft), "suggested_change" (the replacement text) ` +
		`and "reason" (a short rationale). Propose at most 8 suggestions. ` +
		"If the draft needs no changes, respond with an empty array.\n\n" +
		"Target style: " + instruction
}

func buildSuggestionUser(content string) string {
	return "Draft to review:\n\n" + content
}

func buildMergeSystem(instruction string) string {
	return "You are a writing assistant revising a draft. Apply the accepted changes below, " +
		"integrating each one smoothly into the surrounding text. Keep everything else intact. " +
		"Output only the full revised draft, no preamble or commentary.\n\n" +
		"Style: " + instruction
}

func buildMergeUser(content string, changes []generation.Change) string {
	var sb strings.Builder
	sb.WriteString("Current draft:\n\n")
	sb.WriteString(content)
	sb.WriteString("\n\nAccepted changes:\n")
	for i, c := range changes {
		fmt.Fprintf(&sb, "\n%d. Replace:\n%s\nWith:\n%s\n", i+1, c.OriginalText, c.SuggestedChange)
		if c.Reason != "" {
			fmt.Fprintf(&sb, "Reason: %s\n", c.Reason)
		}
	}
	return sb.String()
}
