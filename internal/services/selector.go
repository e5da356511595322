// Extraction tier selection. The selector is a pure decision function with
// no side effects; the orchestrating services feed it the caller's
// entitlement and the availability of page images, and it answers with the
// strategy to run and the concrete model to invoke.
package services

import (
	"github.com/Jwuthri/resume-roaster/internal/ai"
	"github.com/Jwuthri/resume-roaster/internal/domain"
)

// Requested extraction methods accepted from the API surface.
const (
	RequestBasic = "basic"
	RequestAI    = "ai"
	RequestAuto  = "auto"
)

// TierDecision is the outcome of tier selection.
type TierDecision struct {
	// Method is the extraction strategy: basic, text, or vision.
	Method string
	// Spec is the resolved model for AI strategies; zero-valued for basic.
	Spec ai.ModelSpec
}

// SelectTier decides among basic, AI-text, and AI-vision extraction.
//
// Rules, in order:
//  1. Anonymous callers always get basic, regardless of other inputs.
//  2. An explicit basic request gets basic.
//  3. Otherwise (ai or auto): vision when page images exist and the
//     resolved model accepts them, else text. An unknown provider/model
//     pair fails closed to basic rather than invoking an undefined model.
func SelectTier(isRegistered bool, requestedMethod, provider, model string, hasPageImages bool) TierDecision {
	if !isRegistered {
		return TierDecision{Method: domain.MethodBasic}
	}
	if requestedMethod == RequestBasic {
		return TierDecision{Method: domain.MethodBasic}
	}

	spec, err := ai.Resolve(provider, model)
	if err != nil {
		// Fail closed to the cheapest tier.
		return TierDecision{Method: domain.MethodBasic}
	}

	if hasPageImages && spec.Vision {
		return TierDecision{Method: domain.MethodVision, Spec: spec}
	}
	return TierDecision{Method: domain.MethodText, Spec: spec}
}
