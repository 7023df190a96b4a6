//go:build !linux

package evdev

import (
	"errors"
	"log/slog"

	"github.com/hubastard/grovetouch/engine/input"
)

var errUnsupported = errors.New("evdev: only available on linux")

type Provider struct {
	input.Buffered
}

func New(name string, _ Options, _ *slog.Logger) *Provider {
	return &Provider{Buffered: input.NewBuffered(name, 0)}
}

func Constructor(key, args string, logger *slog.Logger) (input.Provider, error) {
	opts, err := ParseOptions(args)
	if err != nil {
		return nil, err
	}
	return New(key, opts, logger), nil
}

func (p *Provider) Device() string { return "" }
func (p *Provider) Start() error   { return errUnsupported }
func (p *Provider) Stop() error    { return nil }
