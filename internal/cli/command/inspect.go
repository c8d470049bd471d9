package command

import (
	"fmt"

	"github.com/yndnr/journalmap/internal/storage/snapshot"
	"github.com/yndnr/journalmap/internal/storage/wal"
)

var inspectOps = []*op{
	{name: "snapshot", usage: "Show the snapshot header", run: runInspectSnapshot},
	{name: "journal", usage: "List the journal records in file order", run: runInspectJournal},
}

type recordView struct {
	Seq   int    `json:"seq" yaml:"seq"`
	Op    string `json:"op" yaml:"op"`
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

func runInspectSnapshot(s *session, _ []string) error {
	info, err := snapshot.Inspect(s.cfg.Map.Snapshot)
	if err != nil {
		return err
	}
	return s.print(info)
}

// runInspectJournal prints the records that decode cleanly. A torn or
// corrupt record ends the listing and is reported after it; the file is
// never modified.
func runInspectJournal(s *session, _ []string) error {
	c, err := s.journalCodec()
	if err != nil {
		return err
	}

	records := []recordView{}
	var readErr error
	for rec, err := range wal.Iterate(s.cfg.Map.Journal, c) {
		if err != nil {
			readErr = err
			break
		}
		records = append(records, recordView{
			Seq:   len(records) + 1,
			Op:    rec.Op.String(),
			Key:   rec.Key,
			Value: rec.Value,
		})
	}

	if err := s.print(records); err != nil {
		return err
	}
	if readErr != nil {
		return fmt.Errorf("journal %s: after record %d: %w", s.cfg.Map.Journal, len(records), readErr)
	}
	return nil
}
