package csvwriter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartmeter/pkg/config"
	"smartmeter/pkg/telegram"
	"smartmeter/pkg/types"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testTelegram() *types.Telegram {
	tg := types.NewTelegram(time.Date(2021, 10, 24, 19, 52, 35, 0, time.UTC))
	tg.Fields["total_consumption_day"] = types.FloatValue(4248.198)
	tg.Fields["actual_tariff"] = types.IntValue(2)
	tg.Fields["gas_timestamp"] = types.StringValue("211024195005S")
	return tg
}

func listFiles(t *testing.T, dir string) (finished, wip []string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), wipPrefix) {
			wip = append(wip, e.Name())
		} else {
			finished = append(finished, e.Name())
		}
	}
	return finished, wip
}

func readRecords(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteAndClose(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(config.CSVConfig{
		Path:        dir,
		Prefix:      "meter",
		WriteHeader: true,
	}, testLogger())
	require.NoError(t, err)

	states := map[string]bool{"charger": true, "boiler": false}
	require.NoError(t, w.Write(testTelegram(), states))

	// The file in progress is hidden behind the wip prefix.
	finished, wip := listFiles(t, dir)
	assert.Empty(t, finished)
	require.Len(t, wip, 1)

	require.NoError(t, w.Write(testTelegram(), states))
	require.NoError(t, w.Close())

	finished, wip = listFiles(t, dir)
	assert.Empty(t, wip)
	require.Len(t, finished, 1)
	assert.True(t, strings.HasPrefix(finished[0], "meter_"))
	assert.True(t, strings.HasSuffix(finished[0], ".csv"))

	records := readRecords(t, filepath.Join(dir, finished[0]))
	require.Len(t, records, 3)

	// Header: receive time, the field table in order, then loads sorted.
	header := records[0]
	require.Len(t, header, 1+len(telegram.FieldKeys())+2)
	assert.Equal(t, "local_timestamp", header[0])
	assert.Equal(t, telegram.FieldKeys(), header[1:1+len(telegram.FieldKeys())])
	assert.Equal(t, []string{"boiler", "charger"}, header[len(header)-2:])

	row := records[1]
	cols := make(map[string]string, len(header))
	for i, name := range header {
		cols[name] = row[i]
	}
	assert.Equal(t, "2021-10-24T19:52:35Z", cols["local_timestamp"])
	assert.Equal(t, "4248.198", cols["total_consumption_day"])
	assert.Equal(t, "2", cols["actual_tariff"])
	assert.Equal(t, "211024195005S", cols["gas_timestamp"])
	assert.Equal(t, "", cols["timestamp"])
	assert.Equal(t, "false", cols["boiler"])
	assert.Equal(t, "true", cols["charger"])
}

func TestRotationByLineCount(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(config.CSVConfig{
		Path:     dir,
		Prefix:   "meter",
		MaxLines: 2,
	}, testLogger())
	require.NoError(t, err)

	require.NoError(t, w.Write(testTelegram(), nil))
	require.NoError(t, w.Write(testTelegram(), nil))

	// File names carry a second-resolution timestamp; space the
	// rotations out so they do not collide.
	time.Sleep(1100 * time.Millisecond)

	require.NoError(t, w.Write(testTelegram(), nil))
	require.NoError(t, w.Close())

	finished, wip := listFiles(t, dir)
	assert.Empty(t, wip)
	require.Len(t, finished, 2)

	total := 0
	for _, name := range finished {
		total += len(readRecords(t, filepath.Join(dir, name)))
	}
	assert.Equal(t, 3, total)
}

func TestCloseWithoutWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(config.CSVConfig{Path: dir, Prefix: "meter"}, testLogger())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	finished, wip := listFiles(t, dir)
	assert.Empty(t, finished)
	assert.Empty(t, wip)
}

func TestNewWriterRejectsBadPath(t *testing.T) {
	_, err := NewWriter(config.CSVConfig{Path: "/does/not/exist"}, testLogger())
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "afile")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewWriter(config.CSVConfig{Path: file}, testLogger())
	assert.Error(t, err)
}
