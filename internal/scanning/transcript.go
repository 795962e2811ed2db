package scanning

import "strings"

// transcribePrompt is the shared prompt used by the LLM providers. The parser
// expects plain OCR output, so the models are asked to copy text rather than interpret it.
const transcribePrompt = `You are an OCR engine. Transcribe every line of text printed on this receipt exactly as it appears.

Rules:
- Keep the original reading order, top to bottom.
- Put each printed line on its own line of output.
- Keep prices, dates and punctuation exactly as printed. Do not compute or correct anything.
- Do not add headings, explanations, JSON or markdown code blocks.
- If there is no readable text, return an empty response.`

// cleanTranscript removes markdown code fences that LLM providers sometimes wrap around output
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```plaintext")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Trim(text, "\n")
}
