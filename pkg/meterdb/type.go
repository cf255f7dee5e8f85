package meterdb

// LiveReading is one instantaneous power sample.
type LiveReading struct {
	Timestamp       int64  `db:"timestamp"`
	ConsumptionWatt uint32 `db:"consumption_watt"`
	InjectionWatt   uint32 `db:"injection_watt"`
	Tariff          uint8  `db:"tariff"`
}

// TotalReading is a meter standing snapshot in watt hours.
type TotalReading struct {
	Timestamp          int64  `db:"timestamp"`
	ConsumptionDayWh   uint32 `db:"consumption_day_wh"`
	ConsumptionNightWh uint32 `db:"consumption_night_wh"`
	InjectionDayWh     uint32 `db:"injection_day_wh"`
	InjectionNightWh   uint32 `db:"injection_night_wh"`
}

// GasReading is the gas meter standing in dm3.
type GasReading struct {
	Timestamp           int64  `db:"timestamp"`
	TotalConsumptionDM3 uint32 `db:"consumption_dm3"`
}

// LoadStateRow records the on/off state of one load alongside the
// measurement that produced it.
type LoadStateRow struct {
	Timestamp int64  `db:"timestamp"`
	LoadName  string `db:"load_name"`
	IsOn      bool   `db:"is_on"`
}
