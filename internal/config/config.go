// Package config loads runtime tunables from the environment into a single
// struct tagged for github.com/caarlos0/env rather than hand-rolled
// os.Getenv calls.
package config

import "github.com/caarlos0/env/v6"

// Config holds the process's runtime knobs: whether to print disassembled
// bytecode before running it, whether to trace every instruction the
// machine executes, and how deep the evaluation stack is allowed to grow.
type Config struct {
	PrintCode      bool `env:"PLOXVM_PRINT_CODE" envDefault:"false"`
	TraceExecution bool `env:"PLOXVM_TRACE_EXECUTION" envDefault:"false"`
	StackMax       int  `env:"PLOXVM_STACK_MAX" envDefault:"256"`
}

// Load reads Config from the process environment, applying envDefault
// values for anything unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
