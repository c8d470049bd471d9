package command

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/yndnr/journalmap/internal/cli/output"
	"github.com/yndnr/journalmap/internal/config"
	"github.com/yndnr/journalmap/internal/storage/wal"
	"github.com/yndnr/journalmap/internal/telemetry/logger"
	"github.com/yndnr/journalmap/internal/telemetry/metric"
	"github.com/yndnr/journalmap/pkg/codec"
	"github.com/yndnr/journalmap/pkg/jmap"
)

// session is the state of one jmapctl invocation. The map is opened on
// first use so that commands such as inspect never replay the journal.
type session struct {
	cfg        *config.Config
	configPath string
	overrides  map[string]any
	log        *slog.Logger
	metrics    *metric.Registry
	out        io.Writer

	mu        sync.Mutex
	m         *jmap.Map[string, string]
	values    codec.Codec[string]
	canonical func(string) (string, error)
	collected bool
}

// valueCodec returns the configured value codec, building it once.
func (s *session) valueCodec() (codec.Codec[string], error) {
	if s.values != nil {
		return s.values, nil
	}
	values, canonical, err := newValueCodec(s.cfg)
	if err != nil {
		return nil, err
	}
	s.values, s.canonical = values, canonical
	return values, nil
}

// journalCodec returns the record codec for the configured value codec.
func (s *session) journalCodec() (wal.Codec[string, string], error) {
	values, err := s.valueCodec()
	if err != nil {
		return wal.Codec[string, string]{}, err
	}
	return wal.NewCodec[string, string](codec.String{}, values), nil
}

// openMap loads the map on first use.
func (s *session) openMap() (*jmap.Map[string, string], error) {
	if s.m != nil {
		return s.m, nil
	}
	values, err := s.valueCodec()
	if err != nil {
		return nil, err
	}

	policy := s.cfg.Policy
	tail, _ := wal.ParseTailPolicy(policy.TailPolicy)
	m, err := jmap.New(s.cfg.Map.Snapshot, s.cfg.Map.Journal, codec.String{}, values,
		jmap.WithFormatVersion(s.cfg.Map.FormatVersion),
		jmap.WithFlushOnMutation(policy.FlushOnMutation),
		jmap.WithRetainJournalOnSave(policy.RetainJournalOnSave),
		jmap.WithSyncWrites(policy.SyncWrites),
		jmap.WithTailPolicy(tail),
		jmap.WithAutoCompact(policy.AutoCompactBytes),
		jmap.WithLogger(s.log),
		jmap.WithMetrics(s.metrics),
	)
	if err != nil {
		return nil, err
	}
	if !s.collected {
		s.metrics.MustRegister(metric.NewFileCollector(s.cfg.Map.Snapshot, s.cfg.Map.Journal))
		s.collected = true
	}
	s.m = m
	return m, nil
}

// applyPolicy switches the live policies of an open map to p.
func (s *session) applyPolicy(p config.PolicySection) {
	s.cfg.Policy.FlushOnMutation = p.FlushOnMutation
	s.cfg.Policy.RetainJournalOnSave = p.RetainJournalOnSave
	s.cfg.Policy.SyncWrites = p.SyncWrites
	if s.m == nil {
		return
	}
	s.m.SetFlushOnMutation(p.FlushOnMutation)
	s.m.SetRetainJournalOnSave(p.RetainJournalOnSave)
	s.m.SetSyncWrites(p.SyncWrites)
}

// reloadConfig re-reads the configuration file and applies the parts that
// can change at runtime: the durability policies and the log level. Tail
// policy and auto-compaction are fixed once the map is open.
func (s *session) reloadConfig() error {
	cfg, err := loadConfig(s.configPath, s.overrides)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyPolicy(cfg.Policy)
	s.cfg.Log.Level = cfg.Log.Level
	logger.SetLevel(cfg.Log.Level)

	s.log.Info("configuration reloaded",
		"flush_on_mutation", cfg.Policy.FlushOnMutation,
		"retain_journal_on_save", cfg.Policy.RetainJournalOnSave,
		"sync_writes", cfg.Policy.SyncWrites,
		"log_level", cfg.Log.Level,
	)
	return nil
}

// close releases the map, if it was opened.
func (s *session) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		return nil
	}
	err := s.m.Close()
	s.m = nil
	return err
}

// format returns the configured output format.
func (s *session) format() output.Format {
	f, err := output.ParseFormat(s.cfg.Output)
	if err != nil {
		return output.FormatTable
	}
	return f
}

// print writes data in the configured output format.
func (s *session) print(data any) error {
	return output.NewFormatter(s.format(), false).Format(s.out, data)
}

// printText writes text verbatim in table mode and data otherwise.
func (s *session) printText(text string, data any) error {
	if s.format() == output.FormatTable {
		_, err := fmt.Fprintln(s.out, text)
		return err
	}
	return s.print(data)
}

// ok acknowledges a mutation.
func (s *session) ok() error {
	return s.printText("OK", statusView{Status: "ok"})
}

var errArgs = errors.New("wrong number of arguments")
