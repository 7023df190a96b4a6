package core

import (
	"log/slog"

	"github.com/hubastard/grovetouch/engine/config"
	"github.com/hubastard/grovetouch/engine/input"
)

// ProvidersFromConfig builds one provider per configured input. Entries
// naming an unknown provider, or whose constructor fails, are logged and
// skipped.
func ProvidersFromConfig(inputs []config.Input, f *input.Factory, logger *slog.Logger) []input.Provider {
	if logger == nil {
		logger = slog.Default()
	}
	var out []input.Provider
	for _, in := range inputs {
		name := in.Name
		if name == "" {
			name = in.Provider
		}
		p, err := f.New(in.Provider, name, in.Args, logger)
		if err != nil {
			logger.Warn("skipping input", "name", name, "provider", in.Provider, "err", err)
			continue
		}
		out = append(out, p)
	}
	return out
}
