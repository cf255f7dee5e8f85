package meterdb

import (
	"errors"

	"smartmeter/pkg/meterutils"
	"smartmeter/pkg/types"
)

// Sink writes decoded telegrams to the meter database. Missing fields are
// tolerated: only the rows whose fields are present get written. Failed
// datapoints are reported to the dispatch loop, which logs and moves on.
type Sink struct {
	store *MeterStore
}

func NewSink(store *MeterStore) *Sink {
	return &Sink{store: store}
}

func (s *Sink) Name() string {
	return "meterdb"
}

func (s *Sink) Write(t *types.Telegram, loadStates map[string]bool) error {
	ts := t.Received.Unix()
	var errs []error

	if hasAll(t, "actual_total_consumption", "actual_total_injection") {
		tariff, _ := tariffOf(t)
		err := s.store.InsertLiveReading(&LiveReading{
			Timestamp:       ts,
			ConsumptionWatt: meterutils.KwToW(t.FloatOr("actual_total_consumption", 0)),
			InjectionWatt:   meterutils.KwToW(t.FloatOr("actual_total_injection", 0)),
			Tariff:          tariff,
		})
		errs = append(errs, err)
	}

	if hasAll(t, "total_consumption_day", "total_consumption_night",
		"total_injection_day", "total_injection_night") {
		err := s.store.InsertTotalReading(&TotalReading{
			Timestamp:          ts,
			ConsumptionDayWh:   meterutils.KwhToWh(t.FloatOr("total_consumption_day", 0)),
			ConsumptionNightWh: meterutils.KwhToWh(t.FloatOr("total_consumption_night", 0)),
			InjectionDayWh:     meterutils.KwhToWh(t.FloatOr("total_injection_day", 0)),
			InjectionNightWh:   meterutils.KwhToWh(t.FloatOr("total_injection_night", 0)),
		})
		errs = append(errs, err)
	}

	if hasAll(t, "total_gas_consumption") {
		err := s.store.InsertGasReading(&GasReading{
			Timestamp:           ts,
			TotalConsumptionDM3: meterutils.M3ToDM3(t.FloatOr("total_gas_consumption", 0)),
		})
		errs = append(errs, err)
	}

	for name, isOn := range loadStates {
		err := s.store.InsertLoadState(&LoadStateRow{
			Timestamp: ts,
			LoadName:  name,
			IsOn:      isOn,
		})
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func hasAll(t *types.Telegram, keys ...string) bool {
	for _, key := range keys {
		if _, ok := t.Value(key); !ok {
			return false
		}
	}
	return true
}

func tariffOf(t *types.Telegram) (uint8, bool) {
	v, ok := t.Value("actual_tariff")
	if !ok {
		return 0, false
	}
	n, ok := v.Int()
	if !ok || n < 0 || n > 255 {
		return 0, false
	}
	return uint8(n), true
}
