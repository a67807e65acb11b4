package videogen

import (
	"strings"

	"clipforge/domain/ports"
)

// Classification happens once, here at the provider boundary. Callers
// switch on ports.ErrorKind; no other layer inspects error text.

var rateLimitedSignatures = []string{
	"429",
	"rate limit",
	"resource exhausted",
	"resource_exhausted",
	"quota",
	"too many requests",
}

var transientSignatures = []string{
	"overloaded",
	"unavailable",
	"try again",
	"internal error",
	"internal server",
	"500",
	"502",
	"503",
	"deadline",
	"timeout",
	"timed out",
	"connection reset",
	"eof",
}

// classifyText maps provider error text onto an ErrorKind
func classifyText(text string) ports.ErrorKind {
	lower := strings.ToLower(text)
	for _, sig := range rateLimitedSignatures {
		if strings.Contains(lower, sig) {
			return ports.ErrorKindRateLimited
		}
	}
	for _, sig := range transientSignatures {
		if strings.Contains(lower, sig) {
			return ports.ErrorKindTransient
		}
	}
	return ports.ErrorKindPermanent
}

// classify wraps a provider failure as a typed ProviderError
func classify(op string, err error) *ports.ProviderError {
	return &ports.ProviderError{
		Kind: classifyText(err.Error()),
		Op:   op,
		Err:  err,
	}
}
