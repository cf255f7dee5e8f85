package meterdb

func (s *MeterStore) InsertLiveReading(reading *LiveReading) error {
	_, err := s.db.Exec(
		"INSERT INTO live_readings (timestamp, consumption_watt, injection_watt, tariff) "+
			"VALUES (?, ?, ?, ?)",
		reading.Timestamp,
		reading.ConsumptionWatt,
		reading.InjectionWatt,
		reading.Tariff,
	)
	if err != nil {
		return err
	}
	return nil
}

func (s *MeterStore) InsertTotalReading(reading *TotalReading) error {
	_, err := s.db.Exec(
		"INSERT INTO total_readings "+
			"(timestamp, consumption_day_wh, consumption_night_wh, injection_day_wh, injection_night_wh) "+
			"VALUES (?, ?, ?, ?, ?)",
		reading.Timestamp,
		reading.ConsumptionDayWh,
		reading.ConsumptionNightWh,
		reading.InjectionDayWh,
		reading.InjectionNightWh,
	)
	if err != nil {
		return err
	}
	return nil
}

func (s *MeterStore) InsertGasReading(reading *GasReading) error {
	_, err := s.db.Exec(
		"INSERT INTO gas_readings "+
			"(timestamp, consumption_dm3) "+
			"VALUES (?, ?)",
		reading.Timestamp,
		reading.TotalConsumptionDM3,
	)
	if err != nil {
		return err
	}
	return nil
}

func (s *MeterStore) InsertLoadState(row *LoadStateRow) error {
	_, err := s.db.Exec(
		"INSERT INTO load_states (timestamp, load_name, is_on) "+
			"VALUES (?, ?, ?)",
		row.Timestamp,
		row.LoadName,
		row.IsOn,
	)
	if err != nil {
		return err
	}
	return nil
}
