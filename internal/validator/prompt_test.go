package validator

import (
	"strings"
	"testing"
)

func sampleInput() Input {
	return Input{
		Requirements: "Must include a signature and a date.",
		DocumentText: "Signed on 2024-01-01.",
		Threshold:    0.7,
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	in := sampleInput()
	first := BuildPrompt(in, "English")
	second := BuildPrompt(in, "English")
	if first != second {
		t.Fatal("identical inputs produced different prompts")
	}
}

func TestBuildPromptEmbedsInputs(t *testing.T) {
	in := sampleInput()
	prompt := BuildPrompt(in, "English")

	if !strings.Contains(prompt, in.Requirements) {
		t.Error("prompt does not carry the requirements verbatim")
	}
	if !strings.Contains(prompt, ">= 0.70") {
		t.Errorf("prompt does not state the threshold: %q", prompt)
	}

	openIdx := strings.Index(prompt, docOpenMarker+"\n")
	closeIdx := strings.Index(prompt, "\n"+docCloseMarker)
	if openIdx < 0 || closeIdx < 0 || closeIdx < openIdx {
		t.Fatal("document markers missing or out of order")
	}
	if got := prompt[openIdx+len(docOpenMarker)+1 : closeIdx]; got != in.DocumentText {
		t.Errorf("document block = %q, want %q", got, in.DocumentText)
	}
}

func TestBuildPromptExamplePlaceholders(t *testing.T) {
	prompt := BuildPrompt(sampleInput(), "English")
	if !strings.Contains(prompt, noValidExamples) {
		t.Error("missing placeholder for absent valid examples")
	}
	if !strings.Contains(prompt, noInvalidExamples) {
		t.Error("missing placeholder for absent invalid examples")
	}

	in := sampleInput()
	in.ValidExamples = "a fine document\n\n---\n\n"
	in.InvalidExamples = "a broken document\n\n---\n\n"
	prompt = BuildPrompt(in, "English")
	if strings.Contains(prompt, noValidExamples) || strings.Contains(prompt, noInvalidExamples) {
		t.Error("placeholders present even though examples were supplied")
	}
	if !strings.Contains(prompt, "a fine document") || !strings.Contains(prompt, "a broken document") {
		t.Error("example text missing from prompt")
	}
}

func TestBuildPromptLanguage(t *testing.T) {
	prompt := BuildPrompt(sampleInput(), "")
	if !strings.Contains(prompt, "only responds in English") {
		t.Error("empty language does not default to English")
	}
	prompt = BuildPrompt(sampleInput(), "Arabic")
	if !strings.Contains(prompt, "only responds in Arabic") {
		t.Error("configured language not embedded")
	}
}
