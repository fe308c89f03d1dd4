package scanning

import (
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// transcribePrompt is the shared prompt used by all LLM providers for reading slips
const transcribePrompt = `You are reading a photo or scan of a Brazilian payment slip (boleto bancário or a utility/tax bill).

Transcribe every line of printed text exactly as it appears, top to bottom. Pay particular attention to long numeric lines:
- The bank slip "linha digitável" has 47 digits, printed like 23793.38128 60007.327020 07144.464000 7 10000000026000
- Utility bills have 48 digits in four blocks, printed like 83700000001-3 23450048019-4 10000000000-8 12345678901-5

Important:
- Copy digits exactly; do not correct, complete or invent any digit
- Keep the original dots, spaces and hyphens between digit groups
- Return plain text only, no commentary and no markdown code blocks`

// remoteAttempts bounds retries against LLM backends
const remoteAttempts = 3

// retryOptions are shared by the remote transcribers
func retryOptions() []retry.Option {
	return []retry.Option{
		retry.Attempts(remoteAttempts),
		retry.Delay(500 * time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
}

// cleanTranscript strips markdown fences that models add despite the prompt
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```plaintext")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
