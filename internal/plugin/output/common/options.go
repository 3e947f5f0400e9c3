package common

import "github.com/hashicorp/go-hclog"

// Options holds the collaborators shared by every integration plugin.
type Options struct {
	Runner ProcessRunner
	Logger hclog.Logger
}

// Option configures Options.
type Option func(*Options)

// WithRunner sets the process runner used to call external programs.
func WithRunner(r ProcessRunner) Option {
	return func(o *Options) { o.Runner = r }
}

// WithLogger sets the plugin logger.
func WithLogger(l hclog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// ApplyOptions resolves opts over the defaults: a real process runner and a
// null logger.
func ApplyOptions(opts ...Option) Options {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Runner == nil {
		o.Runner = NewRealProcessRunner()
	}
	if o.Logger == nil {
		o.Logger = hclog.NewNullLogger()
	}
	return o
}
