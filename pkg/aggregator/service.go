// Aggregator rolls the per-second live readings up into hourly averages
// and prunes raw data once it has been aggregated, so the database stays
// small enough for the device it runs on.
package aggregator

import (
	"context"
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"

	"smartmeter/pkg/meterdb"
)

// roundToHourStart returns the Unix timestamp of the start of the hour for the given time
func roundToHourStart(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC).Unix()
}

// getHourEnd returns the Unix timestamp of the last second of the hour (next hour start - 1)
func getHourEnd(hourStart int64) int64 {
	return time.Unix(hourStart, 0).Add(time.Hour).Unix() - 1
}

// aggregateLiveHourly averages the live readings of one hour into a single
// rollup row. An average watt held for one hour is that many watt hours.
func aggregateLiveHourly(db *sql.DB, hourStart int64) error {
	hourEnd := getHourEnd(hourStart)

	query := `
		SELECT
			AVG(consumption_watt) as avg_consumption,
			AVG(injection_watt) as avg_injection,
			COUNT(*) as count
		FROM live_readings
		WHERE timestamp >= ? AND timestamp <= ?
	`

	var avgConsumption, avgInjection sql.NullFloat64
	var sampleCount uint32
	if err := db.QueryRow(query, hourStart, hourEnd).Scan(&avgConsumption, &avgInjection, &sampleCount); err != nil {
		return err
	}

	if sampleCount == 0 {
		return nil
	}

	insertQuery := `
		INSERT OR REPLACE INTO aggregate_live_hourly
		(hour_start, consumption_wh, injection_wh, sample_count)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(insertQuery,
		hourStart,
		uint32(avgConsumption.Float64),
		uint32(avgInjection.Float64),
		sampleCount,
	)
	return err
}

// cleanupOldData removes raw data older than 3 months, but only once the
// hourly aggregates have caught up past the cutoff.
func cleanupOldData(db *sql.DB, log *logrus.Logger) error {
	threeMonthsAgo := time.Now().UTC().AddDate(0, -3, 0)
	cutoffTimestamp := threeMonthsAgo.Unix()

	var lastAggregateHour sql.NullInt64
	err := db.QueryRow("SELECT MAX(hour_start) FROM aggregate_live_hourly").Scan(&lastAggregateHour)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	}

	if !lastAggregateHour.Valid || lastAggregateHour.Int64 < cutoffTimestamp {
		return nil
	}

	for _, table := range []string{"live_readings", "total_readings", "gas_readings", "load_states"} {
		if _, err := db.Exec("DELETE FROM "+table+" WHERE timestamp < ?", cutoffTimestamp); err != nil {
			return err
		}
	}

	log.Infof("Cleaned up data older than %s.", threeMonthsAgo.Format(time.RFC3339))
	return nil
}

// AggregateAndCleanup rolls up the previous hour and prunes expired rows.
func AggregateAndCleanup(store *meterdb.MeterStore, log *logrus.Logger) error {
	db := store.DB()
	hourStart := roundToHourStart(time.Now().UTC().Add(-time.Hour))

	log.Debugf("Aggregating data for hour starting at %s.", time.Unix(hourStart, 0).Format(time.RFC3339))

	if err := aggregateLiveHourly(db, hourStart); err != nil {
		return err
	}
	return cleanupOldData(db, log)
}

// Run invokes AggregateAndCleanup once right away and then hourly, until
// the context is cancelled.
func Run(ctx context.Context, store *meterdb.MeterStore, log *logrus.Logger) {
	if err := AggregateAndCleanup(store, log); err != nil {
		log.WithError(err).Warn("Aggregation failed.")
	}

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := AggregateAndCleanup(store, log); err != nil {
				log.WithError(err).Warn("Aggregation failed.")
			}
		case <-ctx.Done():
			return
		}
	}
}
