package validator

import (
	"fmt"
	"strings"
)

const (
	noValidExamples   = "No valid examples were provided."
	noInvalidExamples = "No invalid examples were provided."

	docOpenMarker  = "<<<DOCUMENT"
	docCloseMarker = "DOCUMENT>>>"
)

const promptTemplate = `You are an expert document validator that only responds in %[1]s.

The user supplied:
1. Validation requirements (mandatory)
2. Optional examples of valid documents
3. Optional examples of invalid documents

Evaluate the document delimited by %[2]s and %[3]s leniently:
- Consider a requirement satisfied if it is mostly present.
- Only mark it missing if it is completely absent or clearly contradicted.
- Minor deviations, paraphrasing, or partial content are acceptable.

==================================================
VALIDATION REQUIREMENTS
==================================================
%[4]s

==================================================
VALID EXAMPLES (optional)
==================================================
%[5]s

==================================================
INVALID EXAMPLES (optional)
==================================================
%[6]s

==================================================
DOCUMENT TO VALIDATE
==================================================
%[2]s
%[7]s
%[3]s

==================================================
VALIDATION RULES
==================================================
- Compare the document strictly against the user's requirements.
- Score each requirement: 1 if clearly or mostly satisfied, 0 if missing or contradicted.
- Compute the overall score as the arithmetic mean of all requirement scores.
- Mark the document as valid if and only if the overall score >= %[8]s.
- Include reasons explaining any missing or partially satisfied requirements.
- If valid, include one reason that states the numeric overall score.

Output format (strict JSON, exactly these two keys):
{
  "valid": true or false,
  "reasons": ["reason 1", "reason 2", ...]
}
Respond only in %[1]s.`

// BuildPrompt renders the deterministic instruction payload for the model.
// Empty example blocks are replaced by placeholder lines so the model never
// mistakes absence for an empty document.
func BuildPrompt(in Input, language string) string {
	if strings.TrimSpace(language) == "" {
		language = "English"
	}
	validBlock := in.ValidExamples
	if strings.TrimSpace(validBlock) == "" {
		validBlock = noValidExamples
	}
	invalidBlock := in.InvalidExamples
	if strings.TrimSpace(invalidBlock) == "" {
		invalidBlock = noInvalidExamples
	}
	threshold := fmt.Sprintf("%.2f", in.Threshold)

	return fmt.Sprintf(promptTemplate,
		language,
		docOpenMarker,
		docCloseMarker,
		in.Requirements,
		validBlock,
		invalidBlock,
		in.DocumentText,
		threshold,
	)
}
