package loadmanager

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"smartmeter/pkg/types"
)

// Actuator switches the physical load. There is no read-back: a write is
// assumed to have succeeded.
type Actuator func(name string, on bool)

// Manager evaluates the hysteresis rules for every configured load on each
// decoded telegram. It is owned by the dispatch loop; nothing else touches
// load state.
type Manager struct {
	log     *logrus.Logger
	loads   []*Load
	actuate Actuator
	now     func() time.Time
}

func NewManager(log *logrus.Logger, actuate Actuator) *Manager {
	return &Manager{
		log:     log,
		actuate: actuate,
		now:     time.Now,
	}
}

// AddLoad registers a load. Registration order is evaluation order.
func (m *Manager) AddLoad(cfg LoadConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("load needs a name")
	}
	switch cfg.Strategy {
	case "", StrategyDwell, StrategyConfirm:
	default:
		return fmt.Errorf("load %q: unknown strategy %q", cfg.Name, cfg.Strategy)
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyDwell
	}

	m.loads = append(m.loads, &Load{
		cfg:            cfg,
		lastTransition: m.now(),
		actuate:        m.actuate,
		now:            m.now,
	})
	m.log.Infof("Registered load '%s' (on above %dW injection, strategy %s).",
		cfg.Name, cfg.SwitchOnPower, cfg.Strategy)
	return nil
}

func (m *Manager) LoadCount() int {
	return len(m.loads)
}

// Process applies the switching rules to one telegram and returns the
// resulting on/off state per load name.
func (m *Manager) Process(t *types.Telegram) map[string]bool {
	// kW from the meter, thresholds in W.
	injected := t.FloatOr("actual_total_injection", 0) * 1000
	consumed := t.FloatOr("actual_total_consumption", 0) * 1000

	states := make(map[string]bool, len(m.loads))
	for _, load := range m.loads {
		m.processLoad(load, injected, consumed)
		states[load.Name()] = load.IsOn()
	}
	return states
}

func (m *Manager) processLoad(load *Load, injected, consumed float64) {
	cfg := load.cfg

	var wantOn, wantOff bool
	if !load.IsOn() {
		wantOn = injected > float64(cfg.SwitchOnPower)
	} else {
		if cfg.SwitchOffPower < 0 {
			// Injection side: switch off when we no longer inject enough.
			wantOff = injected < float64(-cfg.SwitchOffPower)
		} else {
			wantOff = consumed < float64(cfg.SwitchOffPower)
		}
	}

	if !wantOn && !wantOff {
		load.condSince = time.Time{}
		return
	}

	if load.StateTime() <= cfg.HoldTime() {
		return
	}

	if cfg.Strategy == StrategyConfirm {
		if load.condSince.IsZero() {
			load.condSince = load.now()
			return
		}
		if load.now().Sub(load.condSince) <= cfg.ConfirmTime() {
			return
		}
	}
	load.condSince = time.Time{}

	if wantOn {
		m.log.Infof("Switching load '%s' ON, injecting %.0fW.", cfg.Name, injected)
		load.On()
	} else {
		m.log.Infof("Switching load '%s' OFF, injecting %.0fW, consuming %.0fW.",
			cfg.Name, injected, consumed)
		load.Off()
	}
}
