package aggregator

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartmeter/pkg/meterdb"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func openTestStore(t *testing.T) *meterdb.MeterStore {
	t.Helper()
	store, err := meterdb.Open(filepath.Join(t.TempDir(), "meter.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRoundToHourStart(t *testing.T) {
	in := time.Date(2021, 10, 24, 19, 52, 35, 0, time.UTC)
	want := time.Date(2021, 10, 24, 19, 0, 0, 0, time.UTC).Unix()
	assert.Equal(t, want, roundToHourStart(in))
	assert.Equal(t, want+3599, getHourEnd(roundToHourStart(in)))
}

func TestAggregateLiveHourly(t *testing.T) {
	store := openTestStore(t)

	hourStart := roundToHourStart(time.Date(2021, 10, 24, 19, 0, 0, 0, time.UTC))
	for i, watt := range []uint32{400, 500, 600} {
		require.NoError(t, store.InsertLiveReading(&meterdb.LiveReading{
			Timestamp:       hourStart + int64(i),
			ConsumptionWatt: watt,
			InjectionWatt:   100,
			Tariff:          1,
		}))
	}
	// Just outside the hour, must not count.
	require.NoError(t, store.InsertLiveReading(&meterdb.LiveReading{
		Timestamp:       getHourEnd(hourStart) + 1,
		ConsumptionWatt: 9000,
	}))

	require.NoError(t, aggregateLiveHourly(store.DB(), hourStart))

	var consumption, injection, samples uint32
	require.NoError(t, store.DB().QueryRow(
		"SELECT consumption_wh, injection_wh, sample_count FROM aggregate_live_hourly WHERE hour_start = ?",
		hourStart).Scan(&consumption, &injection, &samples))
	assert.Equal(t, uint32(500), consumption)
	assert.Equal(t, uint32(100), injection)
	assert.Equal(t, uint32(3), samples)

	// Re-running replaces the rollup instead of duplicating it.
	require.NoError(t, aggregateLiveHourly(store.DB(), hourStart))
	var count int
	require.NoError(t, store.DB().QueryRow(
		"SELECT COUNT(*) FROM aggregate_live_hourly").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestAggregateEmptyHourWritesNothing(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, aggregateLiveHourly(store.DB(), roundToHourStart(time.Now().UTC())))

	var count int
	require.NoError(t, store.DB().QueryRow(
		"SELECT COUNT(*) FROM aggregate_live_hourly").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestCleanupWaitsForAggregates(t *testing.T) {
	store := openTestStore(t)
	log := testLogger()

	old := time.Now().UTC().AddDate(0, -4, 0).Unix()
	require.NoError(t, store.InsertLiveReading(&meterdb.LiveReading{
		Timestamp:       old,
		ConsumptionWatt: 500,
	}))

	// No aggregates yet: the raw row must survive.
	require.NoError(t, cleanupOldData(store.DB(), log))
	var count int
	require.NoError(t, store.DB().QueryRow("SELECT COUNT(*) FROM live_readings").Scan(&count))
	assert.Equal(t, 1, count)

	// Once the rollups have passed the cutoff the raw row goes away.
	recentHour := roundToHourStart(time.Now().UTC())
	_, err := store.DB().Exec(
		"INSERT INTO aggregate_live_hourly (hour_start, consumption_wh, injection_wh, sample_count) VALUES (?, 500, 0, 1)",
		recentHour)
	require.NoError(t, err)

	require.NoError(t, cleanupOldData(store.DB(), log))
	require.NoError(t, store.DB().QueryRow("SELECT COUNT(*) FROM live_readings").Scan(&count))
	assert.Equal(t, 0, count)
}
