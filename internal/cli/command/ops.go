package command

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/journalmap/internal/storage/wal"
)

// ErrKeyNotFound is returned by get for an absent key.
var ErrKeyNotFound = errors.New("key not found")

// op is a map operation reachable both as a CLI command and from the shell.
type op struct {
	name      string
	usage     string
	argsUsage string
	minArgs   int
	maxArgs   int // -1: unbounded
	run       func(s *session, args []string) error
	subs      []*op
}

// mapOps lists every map operation.
var mapOps = []*op{
	{name: "get", usage: "Print the value stored under KEY", argsUsage: "KEY", minArgs: 1, maxArgs: 1, run: runGet},
	{name: "put", usage: "Store VALUE under KEY", argsUsage: "KEY VALUE", minArgs: 2, maxArgs: 2, run: runPut},
	{name: "remove", usage: "Remove one or more keys", argsUsage: "KEY...", minArgs: 1, maxArgs: -1, run: runRemove},
	{name: "clear", usage: "Remove every entry and reset both files", run: runClear},
	{name: "save", usage: "Write a snapshot and reset the journal", run: runSave},
	{name: "compact", usage: "Fold the journal into the snapshot regardless of the retain policy", run: runCompact},
	{name: "reload", usage: "Discard unsaved state and load the files again", run: runReload},
	{name: "size", usage: "Show entry and pending mutation counts", run: runSize},
	{name: "dump", usage: "List every entry in key order", run: runDump},
	{name: "digest", usage: "Print an order-independent fingerprint of the contents", run: runDigest},
	{name: "policy", usage: "Show the durability policies, or set one (flush|retain|sync on|off)", argsUsage: "[NAME on|off]", maxArgs: 2, run: runPolicy},
	{name: "inspect", usage: "Examine the files without loading the map", subs: inspectOps},
}

// Views printed by the operations.
type (
	statusView struct {
		Status string `json:"status" yaml:"status"`
	}

	entryView struct {
		Key   string `json:"key" yaml:"key"`
		Value string `json:"value" yaml:"value"`
	}

	sizeView struct {
		Entries int   `json:"entries" yaml:"entries"`
		Pending int   `json:"pending" yaml:"pending"`
		Version int32 `json:"version" yaml:"version"`
	}

	saveView struct {
		Bytes int64 `json:"bytes" yaml:"bytes"`
	}

	compactView struct {
		JournalBefore int64 `json:"journal_before" yaml:"journal_before"`
		JournalAfter  int64 `json:"journal_after" yaml:"journal_after"`
		Bytes         int64 `json:"bytes" yaml:"bytes"`
	}

	digestView struct {
		Entries int    `json:"entries" yaml:"entries"`
		Digest  string `json:"digest" yaml:"digest"`
	}

	policyView struct {
		FlushOnMutation     bool   `json:"flush_on_mutation" yaml:"flush_on_mutation"`
		RetainJournalOnSave bool   `json:"retain_journal_on_save" yaml:"retain_journal_on_save"`
		SyncWrites          bool   `json:"sync_writes" yaml:"sync_writes"`
		TailPolicy          string `json:"tail_policy" yaml:"tail_policy"`
		AutoCompactBytes    int64  `json:"auto_compact_bytes" yaml:"auto_compact_bytes"`
	}
)

// command exposes o as a CLI command.
func (o *op) command() *cli.Command {
	cmd := &cli.Command{
		Name:      o.name,
		Usage:     o.usage,
		ArgsUsage: o.argsUsage,
	}
	for _, sub := range o.subs {
		cmd.Subcommands = append(cmd.Subcommands, sub.command())
	}
	if o.run != nil {
		cmd.Action = func(c *cli.Context) error {
			s, err := sessionFrom(c)
			if err != nil {
				return err
			}
			return o.call(s, c.Args().Slice())
		}
	}
	return cmd
}

func (o *op) call(s *session, args []string) error {
	if len(args) < o.minArgs || (o.maxArgs >= 0 && len(args) > o.maxArgs) {
		return fmt.Errorf("%s: %w, usage: %s %s", o.name, errArgs, o.name, o.argsUsage)
	}
	return o.run(s, args)
}

// dispatch runs the operation named by args[0].
func dispatch(ops []*op, s *session, args []string) error {
	for _, o := range ops {
		if o.name != args[0] {
			continue
		}
		if len(o.subs) > 0 {
			if len(args) < 2 {
				return fmt.Errorf("%s: expected one of %s", o.name, strings.Join(opNames([]*op{o}), ", "))
			}
			return dispatch(o.subs, s, args[1:])
		}
		return o.call(s, args[1:])
	}
	return fmt.Errorf("unknown command %q", args[0])
}

// opNames lists the names of ops, with subcommands spelled out in full.
func opNames(ops []*op) []string {
	var names []string
	for _, o := range ops {
		if len(o.subs) == 0 {
			names = append(names, o.name)
			continue
		}
		for _, sub := range opNames(o.subs) {
			names = append(names, o.name+" "+sub)
		}
	}
	return names
}

func runGet(s *session, args []string) error {
	m, err := s.openMap()
	if err != nil {
		return err
	}
	value, ok := m.Get(args[0])
	if !ok {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, args[0])
	}
	return s.printText(value, entryView{Key: args[0], Value: value})
}

func runPut(s *session, args []string) error {
	m, err := s.openMap()
	if err != nil {
		return err
	}
	value, err := s.canonical(args[1])
	if err != nil {
		return err
	}
	if err := m.Put(args[0], value); err != nil {
		return err
	}
	return s.ok()
}

func runRemove(s *session, args []string) error {
	m, err := s.openMap()
	if err != nil {
		return err
	}
	for _, key := range args {
		if err := m.Remove(key); err != nil {
			return err
		}
	}
	return s.ok()
}

func runClear(s *session, _ []string) error {
	m, err := s.openMap()
	if err != nil {
		return err
	}
	if err := m.Clear(); err != nil {
		return err
	}
	return s.ok()
}

func runSave(s *session, _ []string) error {
	m, err := s.openMap()
	if err != nil {
		return err
	}
	n, err := m.Save()
	if err != nil {
		return err
	}
	return s.print(saveView{Bytes: n})
}

func runCompact(s *session, _ []string) error {
	m, err := s.openMap()
	if err != nil {
		return err
	}
	_, journal := m.Paths()
	before, _, err := wal.Size(journal)
	if err != nil {
		return err
	}

	retain := m.RetainJournalOnSave()
	m.SetRetainJournalOnSave(false)
	n, err := m.Save()
	m.SetRetainJournalOnSave(retain)
	if err != nil {
		return err
	}

	after, _, err := wal.Size(journal)
	if err != nil {
		return err
	}
	return s.print(compactView{JournalBefore: before, JournalAfter: after, Bytes: n})
}

func runReload(s *session, _ []string) error {
	m, err := s.openMap()
	if err != nil {
		return err
	}
	if err := m.Load(); err != nil {
		return err
	}
	return runSize(s, nil)
}

func runSize(s *session, _ []string) error {
	m, err := s.openMap()
	if err != nil {
		return err
	}
	return s.print(sizeView{Entries: m.Len(), Pending: m.Pending(), Version: m.Version()})
}

func runDump(s *session, _ []string) error {
	m, err := s.openMap()
	if err != nil {
		return err
	}
	keys := m.Keys()
	slices.Sort(keys)

	entries := make([]entryView, 0, len(keys))
	for _, k := range keys {
		v, _ := m.Get(k)
		entries = append(entries, entryView{Key: k, Value: v})
	}
	return s.print(entries)
}

func runDigest(s *session, _ []string) error {
	m, err := s.openMap()
	if err != nil {
		return err
	}
	return s.print(digestView{
		Entries: m.Len(),
		Digest:  fmt.Sprintf("%016x", Digest(m.All())),
	})
}

func runPolicy(s *session, args []string) error {
	m, err := s.openMap()
	if err != nil {
		return err
	}

	switch len(args) {
	case 0:
	case 2:
		on, err := parseSwitch(args[1])
		if err != nil {
			return err
		}
		p := s.cfg.Policy
		switch args[0] {
		case "flush":
			p.FlushOnMutation = on
		case "retain":
			p.RetainJournalOnSave = on
		case "sync":
			p.SyncWrites = on
		default:
			return fmt.Errorf("unknown policy %q (flush, retain, sync)", args[0])
		}
		s.applyPolicy(p)
	default:
		return fmt.Errorf("policy: %w, usage: policy [flush|retain|sync on|off]", errArgs)
	}

	return s.print(policyView{
		FlushOnMutation:     m.FlushOnMutation(),
		RetainJournalOnSave: m.RetainJournalOnSave(),
		SyncWrites:          s.cfg.Policy.SyncWrites,
		TailPolicy:          s.cfg.Policy.TailPolicy,
		AutoCompactBytes:    s.cfg.Policy.AutoCompactBytes,
	})
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	on, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
	return on, nil
}
