package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"
)

// File names inside the config directory.
const (
	GeneralFileName = "config.conf"
	TextFileName    = "locale.conf"
)

const (
	defaultDirMode  os.FileMode = 0o750
	defaultFileMode os.FileMode = 0o600
)

// fileSpec binds one file name to its record type.
type fileSpec[T any] struct {
	name       string
	defaults   func() T
	comments   map[string]string
	migrations []migration
	validate   func(*T) error
}

var generalSpec = fileSpec[General]{
	name:       GeneralFileName,
	defaults:   DefaultGeneral,
	comments:   generalComments,
	migrations: []migration{migrateHashAlgo},
	validate:   (*General).Validate,
}

var textSpec = fileSpec[Text]{
	name:     TextFileName,
	defaults: DefaultText,
	comments: textComments,
}

// Loader materializes config.conf and locale.conf from a directory into
// General and Text. It is the only writer of both records; the accessors
// are safe to call from any goroutine.
type Loader struct {
	logger   *slog.Logger
	dir      string
	fileMode os.FileMode
	options  documentOptions

	registry *prometheus.Registry
	metrics  *metrics

	// loadMu serializes Load so reads, binds and write-backs of concurrent
	// calls (Watch and a caller) never interleave on the same file.
	loadMu sync.Mutex

	mu      sync.RWMutex
	general General
	text    Text
}

// Option configures a Loader.
type Option func(*Loader)

// WithRegistry registers the loader metrics on reg instead of a private
// registry. Loaders sharing reg share the same collectors.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(l *Loader) { l.registry = reg }
}

// WithFileMode sets the permissions of files the loader creates.
func WithFileMode(mode os.FileMode) Option {
	return func(l *Loader) { l.fileMode = mode }
}

// New returns a Loader for dir. Both records start at their defaults until
// the first successful Load. A nil logger falls back to slog.Default().
func New(logger *slog.Logger, dir string, opts ...Option) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		logger:   logger,
		dir:      dir,
		fileMode: defaultFileMode,
		options:  defaultDocumentOptions(),
		general:  DefaultGeneral(),
		text:     DefaultText(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.registry == nil {
		l.registry = prometheus.NewRegistry()
	}
	l.metrics = newMetrics(l.registry)
	return l
}

// Dir returns the config directory.
func (l *Loader) Dir() string { return l.dir }

// Gatherer exposes the loader metrics.
func (l *Loader) Gatherer() prometheus.Gatherer { return l.registry }

// General returns the current general settings.
func (l *Loader) General() General {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.general
}

// Text returns the current message templates.
func (l *Loader) Text() Text {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.text
}

// Load creates the directory and both files when missing, binds each file
// onto its record and writes back keys that were absent. Files are handled
// independently: a failure in one never stops the other, and a record whose
// file fails to bind keeps its previous value.
//
// Every failure is logged. The returned error joins them for callers that
// want a status (for example the CLI exit code); plugin code may ignore it.
func (l *Loader) Load() error {
	l.loadMu.Lock()
	defer l.loadMu.Unlock()

	var errs []error
	if err := l.ensureFiles(); err != nil {
		errs = append(errs, err)
	}

	g, ok, err := loadFile(l, generalSpec, l.options)
	if ok {
		l.mu.Lock()
		l.general = g
		l.mu.Unlock()
	}
	if err != nil {
		errs = append(errs, err)
	}

	t, ok, err := loadFile(l, textSpec, l.options.withHeader(LocaleHeader))
	if ok {
		l.mu.Lock()
		l.text = t
		l.mu.Unlock()
	}
	if err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ensureFiles creates the directory and empty files. Existing files are
// left untouched.
func (l *Loader) ensureFiles() error {
	if err := os.MkdirAll(l.dir, defaultDirMode); err != nil {
		return l.fail(filepath.Base(l.dir), StageCreate, fmt.Errorf("create directory: %w", err))
	}
	var errs []error
	for _, name := range []string{GeneralFileName, TextFileName} {
		path := filepath.Join(l.dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, l.fileMode)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			errs = append(errs, l.fail(name, StageCreate, fmt.Errorf("create default file: %w", err)))
			continue
		}
		if err := f.Close(); err != nil {
			errs = append(errs, l.fail(name, StageCreate, fmt.Errorf("create default file: %w", err)))
			continue
		}
		l.logger.Info("config: created default file", "path", path)
	}
	return errors.Join(errs...)
}

// loadFile binds one file onto a fresh defaults record and persists the
// expanded document. ok reports whether binding succeeded; a save failure
// still returns the bound record.
func loadFile[T any](l *Loader, spec fileSpec[T], opts documentOptions) (rec T, ok bool, err error) {
	path := filepath.Join(l.dir, spec.name)

	data, err := os.ReadFile(path)
	if err != nil {
		return rec, false, l.fail(spec.name, StageLoad, fmt.Errorf("read: %w", err))
	}

	doc, err := parseDocument(data)
	if err != nil {
		return rec, false, l.fail(spec.name, StageLoad, err)
	}
	root := doc.Content[0]

	for _, m := range spec.migrations {
		if desc := m(root); desc != "" {
			l.logger.Info("config: "+desc, "file", spec.name)
		}
	}

	rec = spec.defaults()
	var defaults yaml.Node
	if err := defaults.Encode(rec); err != nil {
		return rec, false, l.fail(spec.name, StageLoad, fmt.Errorf("encode defaults: %w", err))
	}
	if n := fillNulls(root, &defaults); n > 0 {
		l.logger.Debug("config: replaced empty values with defaults", "file", spec.name, "count", n)
	}
	if err := root.Decode(&rec); err != nil {
		return rec, false, l.fail(spec.name, StageLoad, fmt.Errorf("bind: %w", err))
	}
	if spec.validate != nil {
		if err := spec.validate(&rec); err != nil {
			return rec, false, l.fail(spec.name, StageLoad, err)
		}
	}
	l.metrics.loads.WithLabelValues(spec.name).Inc()
	l.metrics.lastLoad.WithLabelValues(spec.name).Set(float64(time.Now().Unix()))

	if opts.copyDefaults {
		var bound yaml.Node
		if err := bound.Encode(rec); err != nil {
			return rec, true, l.fail(spec.name, StageSave, fmt.Errorf("encode defaults: %w", err))
		}
		if n := copyDefaults(root, &bound, spec.comments, ""); n > 0 {
			l.logger.Debug("config: added missing keys", "file", spec.name, "count", n)
		}
	}

	out, err := renderDocument(doc, opts)
	if err != nil {
		return rec, true, l.fail(spec.name, StageSave, err)
	}
	if bytes.Equal(out, data) {
		return rec, true, nil
	}
	if err := renameio.WriteFile(path, out, l.fileMode); err != nil {
		return rec, true, l.fail(spec.name, StageSave, fmt.Errorf("write: %w", err))
	}
	l.metrics.writebacks.WithLabelValues(spec.name).Inc()
	l.logger.Info("config: saved", "path", path)
	return rec, true, nil
}

// fail logs err, counts it and wraps it in a LoadError.
func (l *Loader) fail(file string, stage Stage, err error) error {
	l.metrics.loadErrors.WithLabelValues(file, string(stage)).Inc()
	switch stage {
	case StageCreate:
		l.logger.Error("config: failed to create default config file", "file", file, "stage", stage, "err", err)
	case StageSave:
		l.logger.Error("config: error saving the default configuration", "file", file, "stage", stage, "err", err)
	default:
		l.logger.Error("config: error loading the configuration", "file", file, "stage", stage, "err", err)
	}
	return &LoadError{File: file, Stage: stage, Err: err}
}
