package jmap

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yndnr/journalmap/pkg/codec"
)

type files struct {
	snap    string
	journal string
}

func newFiles(t *testing.T) files {
	t.Helper()
	dir := t.TempDir()
	return files{
		snap:    filepath.Join(dir, "map.snap"),
		journal: filepath.Join(dir, "map.journal"),
	}
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func open(t *testing.T, f files, opts ...Option) *Map[string, string] {
	t.Helper()
	opts = append([]Option{WithLogger(quiet)}, opts...)
	m, err := New(f.snap, f.journal, codec.String{}, codec.String{}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func contents(m *Map[string, string]) map[string]string {
	out := make(map[string]string, m.Len())
	for k, v := range m.All() {
		out[k] = v
	}
	return out
}

func fileSize(t *testing.T, path string) (int64, bool) {
	t.Helper()
	st, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false
	}
	if err != nil {
		t.Fatal(err)
	}
	return st.Size(), true
}

func mustPut(t *testing.T, m *Map[string, string], k, v string) {
	t.Helper()
	if err := m.Put(k, v); err != nil {
		t.Fatalf("Put(%q): %v", k, err)
	}
}

func mustRemove(t *testing.T, m *Map[string, string], k string) {
	t.Helper()
	if err := m.Remove(k); err != nil {
		t.Fatalf("Remove(%q): %v", k, err)
	}
}

func TestNew_Validation(t *testing.T) {
	f := newFiles(t)
	tests := []struct {
		name          string
		snap, journal string
		keys          codec.Codec[string]
		want          error
	}{
		{"empty snapshot path", "", f.journal, codec.String{}, ErrInvalidPaths},
		{"empty journal path", f.snap, "", codec.String{}, ErrInvalidPaths},
		{"same path", f.snap, f.snap, codec.String{}, ErrInvalidPaths},
		{"nil codec", f.snap, f.journal, nil, ErrNilCodec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New[string, string](tt.snap, tt.journal, tt.keys, codec.String{})
			if !errors.Is(err, tt.want) {
				t.Errorf("New = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNew_EmptyFiles(t *testing.T) {
	f := newFiles(t)
	m := open(t, f)
	if m.Len() != 0 || m.Pending() != 0 {
		t.Errorf("Len = %d, Pending = %d", m.Len(), m.Pending())
	}
	if m.Version() != DefaultFormatVersion {
		t.Errorf("Version = %d", m.Version())
	}
	if !m.FlushOnMutation() || m.RetainJournalOnSave() {
		t.Error("default policies should be flush on, retain off")
	}
	if s, j := m.Paths(); s != f.snap || j != f.journal {
		t.Errorf("Paths = %s, %s", s, j)
	}
	if _, ok := fileSize(t, f.journal); ok {
		t.Error("journal created by New")
	}
}

func TestScenario_FooBaz(t *testing.T) {
	f := newFiles(t)
	m := open(t, f)

	mustPut(t, m, "foo", "bar")
	mustPut(t, m, "baz", "bang")

	n, err := m.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	snapSize, _ := fileSize(t, f.snap)
	if n != snapSize {
		t.Errorf("Save = %d, snapshot size %d", n, snapSize)
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}

	mustRemove(t, m, "foo")
	if _, ok := fileSize(t, f.journal); !ok {
		t.Error("journal missing after live remove")
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}

	m2 := open(t, f)
	if diff := cmp.Diff(map[string]string{"baz": "bang"}, contents(m2)); diff != "" {
		t.Errorf("reloaded (-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	ops := []struct {
		put  bool
		k, v string
	}{
		{true, "a", "1"},
		{true, "b", "2"},
		{true, "a", "3"},
		{false, "b", ""},
		{false, "zzz", ""},
		{true, "c", "4"},
		{true, "b", "5"},
	}

	for _, flush := range []bool{true, false} {
		for _, retain := range []bool{true, false} {
			f := newFiles(t)
			m := open(t, f, WithFlushOnMutation(flush), WithRetainJournalOnSave(retain))
			for _, op := range ops {
				if op.put {
					mustPut(t, m, op.k, op.v)
				} else {
					mustRemove(t, m, op.k)
				}
			}
			if _, err := m.Save(); err != nil {
				t.Fatalf("Save: %v", err)
			}

			want := map[string]string{"a": "3", "b": "5", "c": "4"}
			if diff := cmp.Diff(want, contents(m)); diff != "" {
				t.Errorf("flush=%v retain=%v live (-want +got):\n%s", flush, retain, diff)
			}
			if diff := cmp.Diff(want, contents(open(t, f))); diff != "" {
				t.Errorf("flush=%v retain=%v reloaded (-want +got):\n%s", flush, retain, diff)
			}
		}
	}
}

func TestLiveJournal_SurvivesWithoutSave(t *testing.T) {
	f := newFiles(t)
	m := open(t, f)
	mustPut(t, m, "a", "1")
	mustPut(t, m, "b", "2")
	mustRemove(t, m, "a")

	if diff := cmp.Diff(map[string]string{"b": "2"}, contents(open(t, f))); diff != "" {
		t.Errorf("reloaded (-want +got):\n%s", diff)
	}
}

func TestSave_DiscardsJournal(t *testing.T) {
	f := newFiles(t)
	m := open(t, f)
	mustPut(t, m, "a", "1")

	if _, ok := fileSize(t, f.journal); !ok {
		t.Fatal("journal missing after live put")
	}
	if _, err := m.Save(); err != nil {
		t.Fatal(err)
	}
	if _, ok := fileSize(t, f.journal); ok {
		t.Error("journal exists after save without retention")
	}
	if m.Pending() != 0 {
		t.Errorf("Pending = %d after Save", m.Pending())
	}

	// The appender must reopen after the journal was removed.
	mustPut(t, m, "b", "2")
	if diff := cmp.Diff(map[string]string{"a": "1", "b": "2"}, contents(open(t, f))); diff != "" {
		t.Errorf("reloaded (-want +got):\n%s", diff)
	}
}

func TestClear(t *testing.T) {
	f := newFiles(t)
	m := open(t, f)
	mustPut(t, m, "a", "1")
	m.Save()
	mustPut(t, m, "b", "2")

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if m.Len() != 0 || m.Pending() != 0 {
		t.Errorf("Len = %d, Pending = %d after Clear", m.Len(), m.Pending())
	}
	if size, ok := fileSize(t, f.snap); !ok || size != 8 {
		t.Errorf("snapshot size = %d (exists %v), want empty snapshot", size, ok)
	}
	if _, ok := fileSize(t, f.journal); ok {
		t.Error("journal exists after Clear")
	}
	if n := open(t, f).Len(); n != 0 {
		t.Errorf("reloaded Len = %d, want 0", n)
	}
}

func TestUnflushedMutationsLostWithoutSave(t *testing.T) {
	f := newFiles(t)
	m := open(t, f)
	mustPut(t, m, "kept", "1")
	m.Save()

	m.SetFlushOnMutation(false)
	mustPut(t, m, "lost", "2")
	mustRemove(t, m, "kept")
	if m.Pending() != 2 {
		t.Errorf("Pending = %d, want 2", m.Pending())
	}
	if _, ok := fileSize(t, f.journal); ok {
		t.Error("journal written with flushing disabled")
	}

	if diff := cmp.Diff(map[string]string{"kept": "1"}, contents(open(t, f))); diff != "" {
		t.Errorf("reloaded (-want +got):\n%s", diff)
	}
}

func TestRetainedJournal_ByteAccounting(t *testing.T) {
	f := newFiles(t)
	m := open(t, f, WithFlushOnMutation(false), WithRetainJournalOnSave(true))
	mustPut(t, m, "a", "1")
	mustPut(t, m, "b", "2")
	mustRemove(t, m, "a")

	n, err := m.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	snapSize, _ := fileSize(t, f.snap)
	journalSize, ok := fileSize(t, f.journal)
	if !ok {
		t.Fatal("journal missing after retained save")
	}
	if n != snapSize+journalSize {
		t.Errorf("Save = %d, want %d + %d", n, snapSize, journalSize)
	}

	if diff := cmp.Diff(map[string]string{"b": "2"}, contents(open(t, f))); diff != "" {
		t.Errorf("reloaded (-want +got):\n%s", diff)
	}
}

func TestRetainedJournal_EmptyPending(t *testing.T) {
	f := newFiles(t)
	m := open(t, f, WithRetainJournalOnSave(true))
	mustPut(t, m, "a", "1")
	m.Save()

	n, err := m.Save()
	if err != nil {
		t.Fatal(err)
	}
	snapSize, _ := fileSize(t, f.snap)
	journalSize, ok := fileSize(t, f.journal)
	if !ok || journalSize != 0 {
		t.Errorf("journal size = %d (exists %v), want empty file", journalSize, ok)
	}
	if n != snapSize {
		t.Errorf("Save = %d, want %d", n, snapSize)
	}
}

func TestRetainedJournal_ReplacesLiveRecords(t *testing.T) {
	f := newFiles(t)
	m := open(t, f, WithRetainJournalOnSave(true))
	mustPut(t, m, "a", "1")
	m.Save()
	mustPut(t, m, "b", "2")
	m.Save()

	m2 := open(t, f)
	if diff := cmp.Diff(map[string]string{"a": "1", "b": "2"}, contents(m2)); diff != "" {
		t.Errorf("reloaded (-want +got):\n%s", diff)
	}

	// Only the mutation since the previous save is left in the journal.
	jsize, _ := fileSize(t, f.journal)
	if want := int64(1 + 5 + 5); jsize != want {
		t.Errorf("journal size = %d, want %d", jsize, want)
	}
}

func TestLoad_Idempotent(t *testing.T) {
	f := newFiles(t)
	m := open(t, f)
	mustPut(t, m, "a", "1")
	m.Save()
	mustPut(t, m, "b", "2")
	mustRemove(t, m, "a")

	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	first := contents(m)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, contents(m)); diff != "" {
		t.Errorf("second load (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"b": "2"}, first); diff != "" {
		t.Errorf("loaded (-want +got):\n%s", diff)
	}
}

func TestLoad_DropsUnsavedBuffer(t *testing.T) {
	f := newFiles(t)
	m := open(t, f, WithFlushOnMutation(false))
	mustPut(t, m, "a", "1")
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 0 || m.Pending() != 0 {
		t.Errorf("Len = %d, Pending = %d after Load", m.Len(), m.Pending())
	}
}

func appendRaw(t *testing.T, path string, b []byte) {
	t.Helper()
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		t.Fatal(err)
	}
	defer fh.Close()
	if _, err := fh.Write(b); err != nil {
		t.Fatal(err)
	}
}

func TestTornJournalTail(t *testing.T) {
	torn := []byte{0x01, 0, 0, 0, 1, 'x', 0, 0, 0, 9, 'p'}

	t.Run("truncate", func(t *testing.T) {
		f := newFiles(t)
		m := open(t, f)
		mustPut(t, m, "a", "1")
		m.Close()
		before, _ := fileSize(t, f.journal)
		appendRaw(t, f.journal, torn)

		m2 := open(t, f)
		if diff := cmp.Diff(map[string]string{"a": "1"}, contents(m2)); diff != "" {
			t.Errorf("loaded (-want +got):\n%s", diff)
		}
		if after, _ := fileSize(t, f.journal); after != before {
			t.Errorf("journal size = %d, want torn tail cut back to %d", after, before)
		}

		mustPut(t, m2, "b", "2")
		if diff := cmp.Diff(map[string]string{"a": "1", "b": "2"}, contents(open(t, f))); diff != "" {
			t.Errorf("reloaded (-want +got):\n%s", diff)
		}
	})

	t.Run("strict", func(t *testing.T) {
		f := newFiles(t)
		m := open(t, f)
		mustPut(t, m, "a", "1")
		m.Close()
		appendRaw(t, f.journal, torn)

		_, err := New(f.snap, f.journal, codec.String{}, codec.String{},
			WithLogger(quiet), WithTailPolicy(TailStrict))
		if !errors.Is(err, ErrTruncatedJournal) {
			t.Fatalf("New = %v, want ErrTruncatedJournal", err)
		}

		// The strict reader leaves the file alone.
		if size, _ := fileSize(t, f.journal); size == 0 {
			t.Error("journal emptied by strict load")
		}
	})
}

func TestLoad_CorruptJournal(t *testing.T) {
	f := newFiles(t)
	appendRaw(t, f.journal, []byte{0x09, 0, 0, 0, 0})

	_, err := New(f.snap, f.journal, codec.String{}, codec.String{}, WithLogger(quiet))
	if !errors.Is(err, ErrCorruptRecord) {
		t.Errorf("New = %v, want ErrCorruptRecord", err)
	}
}

func TestLoad_FailureKeepsState(t *testing.T) {
	f := newFiles(t)
	m := open(t, f)
	mustPut(t, m, "a", "1")
	m.Save()
	mustPut(t, m, "b", "2")

	if err := os.WriteFile(f.snap, []byte{0, 0, 0, 1, 0, 0, 0, 5}, 0600); err != nil {
		t.Fatal(err)
	}
	err := m.Load()
	if !errors.Is(err, ErrTruncatedSnapshot) || !errors.Is(err, ErrFormat) {
		t.Fatalf("Load = %v, want truncated snapshot format error", err)
	}
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Errorf("Load error %T is not a *FormatError", err)
	}
	if diff := cmp.Diff(map[string]string{"a": "1", "b": "2"}, contents(m)); diff != "" {
		t.Errorf("state after failed Load (-want +got):\n%s", diff)
	}
	if m.Pending() != 1 {
		t.Errorf("Pending = %d, want 1", m.Pending())
	}
}

func TestLoad_VersionMismatch(t *testing.T) {
	f := newFiles(t)
	m := open(t, f, WithFormatVersion(2))
	mustPut(t, m, "a", "1")
	m.Save()

	_, err := New(f.snap, f.journal, codec.String{}, codec.String{}, WithLogger(quiet), WithFormatVersion(3))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("New = %v, want ErrUnsupportedVersion", err)
	}
}

func TestPut_AppendFailureKeepsState(t *testing.T) {
	f := newFiles(t)
	m := open(t, f)
	mustPut(t, m, "a", "1")
	m.Save()

	// A directory in place of the journal makes the append fail.
	if err := os.Mkdir(f.journal, 0750); err != nil {
		t.Fatal(err)
	}

	err := m.Put("b", "2")
	if !errors.Is(err, ErrIO) {
		t.Fatalf("Put = %v, want ErrIO", err)
	}
	var ioe *IOError
	if !errors.As(err, &ioe) || ioe.Path != f.journal {
		t.Errorf("Put error = %v, want *IOError for the journal", err)
	}
	if err := m.Remove("a"); !errors.Is(err, ErrIO) {
		t.Fatalf("Remove = %v, want ErrIO", err)
	}
	if diff := cmp.Diff(map[string]string{"a": "1"}, contents(m)); diff != "" {
		t.Errorf("state (-want +got):\n%s", diff)
	}
	if m.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", m.Pending())
	}
}

func TestPolicyToggling(t *testing.T) {
	f := newFiles(t)
	m := open(t, f, WithFlushOnMutation(false))

	mustPut(t, m, "buffered", "1")
	m.SetFlushOnMutation(true)
	mustPut(t, m, "live", "2")
	if !m.FlushOnMutation() {
		t.Error("FlushOnMutation not updated")
	}

	if diff := cmp.Diff(map[string]string{"live": "2"}, contents(open(t, f))); diff != "" {
		t.Errorf("reloaded before save (-want +got):\n%s", diff)
	}

	m.SetRetainJournalOnSave(true)
	if _, err := m.Save(); err != nil {
		t.Fatal(err)
	}
	if _, ok := fileSize(t, f.journal); !ok {
		t.Error("journal missing after retained save")
	}
	m.SetRetainJournalOnSave(false)
	if _, err := m.Save(); err != nil {
		t.Fatal(err)
	}
	if _, ok := fileSize(t, f.journal); ok {
		t.Error("journal kept after policy switched off")
	}
}

func TestAutoCompact(t *testing.T) {
	f := newFiles(t)
	// Each record here is 1 + 5 + 5 = 11 bytes.
	m := open(t, f, WithAutoCompact(30), WithSyncWrites(true))

	mustPut(t, m, "a", "1")
	mustPut(t, m, "b", "2")
	if _, ok := fileSize(t, f.snap); ok {
		t.Fatal("snapshot written below threshold")
	}
	mustPut(t, m, "c", "3")

	if _, ok := fileSize(t, f.snap); !ok {
		t.Fatal("snapshot not written after threshold")
	}
	if _, ok := fileSize(t, f.journal); ok {
		t.Error("journal kept after compaction")
	}
	if m.Pending() != 0 {
		t.Errorf("Pending = %d after compaction", m.Pending())
	}
	if diff := cmp.Diff(map[string]string{"a": "1", "b": "2", "c": "3"}, contents(open(t, f))); diff != "" {
		t.Errorf("reloaded (-want +got):\n%s", diff)
	}
}

func TestAccessors(t *testing.T) {
	f := newFiles(t)
	m := open(t, f)
	mustPut(t, m, "a", "1")
	mustPut(t, m, "b", "2")

	if v, ok := m.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}
	if _, ok := m.Get("zz"); ok {
		t.Error("Get(zz) found a value")
	}
	if !m.Contains("b") || m.Contains("zz") {
		t.Error("Contains mismatch")
	}
	keys := m.Keys()
	if len(keys) != 2 {
		t.Errorf("Keys = %v", keys)
	}
}

type recorder struct {
	loads     int
	truncated bool
	mutations map[string]int
	saves     int
	saved     int64
	clears    int
	entries   int
}

func (r *recorder) Loaded(_, _ int, truncated bool, _ time.Duration) {
	r.loads++
	r.truncated = truncated
}
func (r *recorder) Mutated(op string)             { r.mutations[op]++ }
func (r *recorder) Saved(n int64, _ time.Duration) { r.saves++; r.saved = n }
func (r *recorder) Cleared()                      { r.clears++ }
func (r *recorder) Entries(n int)                 { r.entries = n }

func TestMetrics(t *testing.T) {
	f := newFiles(t)
	rec := &recorder{mutations: map[string]int{}}
	m := open(t, f, WithMetrics(rec))

	mustPut(t, m, "a", "1")
	mustPut(t, m, "b", "2")
	mustRemove(t, m, "a")
	if rec.entries != 1 {
		t.Errorf("entries = %d, want 1", rec.entries)
	}
	n, _ := m.Save()
	m.Clear()

	want := &recorder{
		loads:     1,
		mutations: map[string]int{"put": 2, "remove": 1},
		saves:     1,
		saved:     n,
		clears:    1,
		entries:   0,
	}
	if diff := cmp.Diff(want, rec, cmp.AllowUnexported(recorder{})); diff != "" {
		t.Errorf("metrics (-want +got):\n%s", diff)
	}
}
