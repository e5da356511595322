package ai

import "time"

// Factory builds provider clients from process-wide credentials. It is
// constructed once at startup and injected into the services that perform
// AI calls, replacing any notion of a module-global provider client.
type Factory struct {
	openAIKey     string
	openAIBase    string
	anthropicKey  string
	anthropicBase string
	timeout       time.Duration
}

// NewFactory captures provider credentials and the per-call timeout.
func NewFactory(openAIKey, openAIBase, anthropicKey, anthropicBase string, timeout time.Duration) *Factory {
	return &Factory{
		openAIKey:     openAIKey,
		openAIBase:    openAIBase,
		anthropicKey:  anthropicKey,
		anthropicBase: anthropicBase,
		timeout:       timeout,
	}
}

// ClientFor returns the adapter for a resolved catalog entry.
func (f *Factory) ClientFor(spec ModelSpec) Client {
	switch spec.Provider {
	case ProviderAnthropic:
		return NewAnthropicClient(f.anthropicKey, f.anthropicBase, spec, f.timeout)
	default:
		return NewOpenAIClient(f.openAIKey, f.openAIBase, spec, f.timeout)
	}
}
