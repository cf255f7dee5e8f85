package loadmanager

import (
	"time"
)

// Switching policies. Dwell is the default: hold_time is a minimum dwell
// between actuations and a single qualifying reading is enough to flip
// state once the dwell elapsed. Confirm additionally requires the
// condition to persist for confirm_time before acting, which rejects more
// noise at the cost of slower reactions.
const (
	StrategyDwell   = "dwell"
	StrategyConfirm = "confirm"
)

// LoadConfig describes one switchable load. A negative SwitchOffPower
// means the off threshold is evaluated against grid injection instead of
// consumption.
type LoadConfig struct {
	Name           string        `toml:"name"`
	MaxPower       int           `toml:"max_power"`
	SwitchOnPower  int           `toml:"switch_on_power"`
	SwitchOffPower int           `toml:"switch_off_power"`
	HoldSeconds    int           `toml:"hold_seconds"`
	Strategy       string        `toml:"strategy"`
	ConfirmSeconds int           `toml:"confirm_seconds"`
}

func (c LoadConfig) HoldTime() time.Duration {
	return time.Duration(c.HoldSeconds) * time.Second
}

func (c LoadConfig) ConfirmTime() time.Duration {
	return time.Duration(c.ConfirmSeconds) * time.Second
}

// Load is the state of one switchable load. Only On and Off mutate it and
// both reset the transition clock, so the state age never goes negative.
type Load struct {
	cfg            LoadConfig
	isOn           bool
	lastTransition time.Time

	// condSince tracks how long the current switch condition has held,
	// only used by the confirm strategy.
	condSince time.Time

	actuate func(name string, on bool)
	now     func() time.Time
}

func (l *Load) Name() string {
	return l.cfg.Name
}

func (l *Load) IsOn() bool {
	return l.isOn
}

// StateTime is the time since the last transition, counted from
// construction for a load that never switched.
func (l *Load) StateTime() time.Duration {
	return l.now().Sub(l.lastTransition)
}

func (l *Load) On() {
	if l.actuate != nil {
		l.actuate(l.cfg.Name, true)
	}
	l.isOn = true
	l.lastTransition = l.now()
}

func (l *Load) Off() {
	if l.actuate != nil {
		l.actuate(l.cfg.Name, false)
	}
	l.isOn = false
	l.lastTransition = l.now()
}
