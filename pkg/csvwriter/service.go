// Package csvwriter writes decoded telegrams to rotating CSV files.
// A file in progress carries a work-in-progress prefix and is renamed on
// rotation, so downstream consumers only ever pick up finished files.
package csvwriter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"smartmeter/pkg/config"
	"smartmeter/pkg/telegram"
	"smartmeter/pkg/types"
)

const wipPrefix = ".wip__"

type Writer struct {
	log         *logrus.Logger
	path        string
	prefix      string
	writeHeader bool
	maxLines    int
	maxAge      time.Duration

	file       *os.File
	csvWriter  *csv.Writer
	wipName    string
	finalName  string
	createTime time.Time
	lineCount  int

	// column order is fixed at first write: receive time, the field
	// table keys, then the load names.
	loadColumns []string
}

func NewWriter(cfg config.CSVConfig, log *logrus.Logger) (*Writer, error) {
	info, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("csv path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("csv path %q is not a directory", cfg.Path)
	}

	return &Writer{
		log:         log,
		path:        cfg.Path,
		prefix:      cfg.Prefix,
		writeHeader: cfg.WriteHeader,
		maxLines:    cfg.MaxLines,
		maxAge:      time.Duration(cfg.MaxAgeSeconds) * time.Second,
	}, nil
}

func (w *Writer) Name() string {
	return "csv"
}

func (w *Writer) Write(t *types.Telegram, loadStates map[string]bool) error {
	if w.needsRotation() {
		if err := w.rotate(); err != nil {
			return err
		}
	}

	if w.file == nil {
		if err := w.openNew(loadStates); err != nil {
			return err
		}
	}

	record := make([]string, 0, 1+len(telegram.Fields)+len(w.loadColumns))
	record = append(record, t.Received.Format(time.RFC3339))
	for _, key := range telegram.FieldKeys() {
		// Missing keys become empty cells.
		record = append(record, t.StringOr(key, ""))
	}
	for _, name := range w.loadColumns {
		record = append(record, fmt.Sprintf("%t", loadStates[name]))
	}

	if err := w.csvWriter.Write(record); err != nil {
		return err
	}
	w.csvWriter.Flush()
	w.lineCount++
	return w.csvWriter.Error()
}

// Close finishes the file in progress, if any.
func (w *Writer) Close() error {
	return w.rotate()
}

func (w *Writer) needsRotation() bool {
	if w.file == nil {
		return false
	}
	if w.maxLines > 0 && w.lineCount >= w.maxLines {
		return true
	}
	if w.maxAge > 0 && time.Since(w.createTime) >= w.maxAge {
		return true
	}
	return false
}

func (w *Writer) openNew(loadStates map[string]bool) error {
	w.loadColumns = sortedNames(loadStates)

	now := time.Now()
	w.finalName = fmt.Sprintf("%s_%s.csv", w.prefix, now.Format("20060102T150405"))
	w.wipName = filepath.Join(w.path, wipPrefix+w.finalName)

	file, err := os.Create(w.wipName)
	if err != nil {
		return err
	}
	w.file = file
	w.csvWriter = csv.NewWriter(file)
	w.createTime = now
	w.lineCount = 0

	if w.writeHeader {
		header := append([]string{"local_timestamp"}, telegram.FieldKeys()...)
		header = append(header, w.loadColumns...)
		if err := w.csvWriter.Write(header); err != nil {
			return err
		}
		w.csvWriter.Flush()
	}
	return w.csvWriter.Error()
}

func (w *Writer) rotate() error {
	if w.file == nil {
		return nil
	}

	w.csvWriter.Flush()
	if err := w.file.Close(); err != nil {
		return err
	}
	w.file = nil
	w.csvWriter = nil

	final := filepath.Join(w.path, w.finalName)
	if err := os.Rename(w.wipName, final); err != nil {
		return err
	}
	w.log.Debugf("Rotated CSV file to %s.", final)
	return nil
}

func sortedNames(loadStates map[string]bool) []string {
	names := make([]string, 0, len(loadStates))
	for name := range loadStates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
