package agent

import (
	"time"

	loggerpkg "github.com/minhyannv/weather-chat-go/pkg/logger"
)

// AgentOption configures optional runtime dependencies for Agent.
type AgentOption func(*agentDeps)

type agentDeps struct {
	logger  loggerpkg.Logger
	printer Printer
	now     func() time.Time
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) AgentOption {
	return func(d *agentDeps) {
		d.logger = l
	}
}

// WithPrinter sets where appended messages are shown.
func WithPrinter(p Printer) AgentOption {
	return func(d *agentDeps) {
		d.printer = p
	}
}

// WithClock replaces time.Now when dating the system prompt.
func WithClock(now func() time.Time) AgentOption {
	return func(d *agentDeps) {
		d.now = now
	}
}
