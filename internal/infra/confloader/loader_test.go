package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Map struct {
		Snapshot string `koanf:"snapshot"`
		Journal  string `koanf:"journal"`
	} `koanf:"map"`
	Policy struct {
		FlushOnMutation bool `koanf:"flush_on_mutation"`
		AutoCompact     int  `koanf:"auto_compact_bytes"`
	} `koanf:"policy"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jmap.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewLoader_Options(t *testing.T) {
	l := NewLoader()
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}

	l = NewLoader(WithEnvPrefix("TEST_"), WithConfigFile("/etc/jmap.yaml"))
	if l.envPrefix != "TEST_" || l.FilePath() != "/etc/jmap.yaml" {
		t.Errorf("options not applied: %q %q", l.envPrefix, l.FilePath())
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, `
map:
  snapshot: /data/map.snap
policy:
  flush_on_mutation: true
`)
	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got := l.GetString("map.snapshot"); got != "/data/map.snap" {
		t.Errorf("map.snapshot = %q", got)
	}
	if !l.GetBool("policy.flush_on_mutation") {
		t.Error("policy.flush_on_mutation should be true")
	}
}

func TestLoader_LoadFile_Errors(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile("/nonexistent/jmap.yaml"); err == nil {
		t.Error("LoadFile() expected error for missing file")
	}
	if err := l.LoadFile(writeConfig(t, "map: [unclosed")); err == nil {
		t.Error("LoadFile() expected error for invalid YAML")
	}
	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") = %v", err)
	}
}

func TestLoader_Priority(t *testing.T) {
	path := writeConfig(t, `
map:
  snapshot: from-file.snap
  journal: from-file.journal
policy:
  flush_on_mutation: false
  auto_compact_bytes: 10
`)
	t.Setenv("JMAPTEST_MAP__JOURNAL", "from-env.journal")
	t.Setenv("JMAPTEST_POLICY__AUTO_COMPACT_BYTES", "20")

	l := NewLoader(
		WithEnvPrefix("JMAPTEST_"),
		WithConfigFile(path),
		WithOverrides(map[string]any{"policy.auto_compact_bytes": 30}),
	)

	var cfg testConfig
	cfg.Policy.FlushOnMutation = true
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Map.Snapshot != "from-file.snap" {
		t.Errorf("snapshot = %q, want file value", cfg.Map.Snapshot)
	}
	if cfg.Map.Journal != "from-env.journal" {
		t.Errorf("journal = %q, want env value", cfg.Map.Journal)
	}
	if cfg.Policy.AutoCompact != 30 {
		t.Errorf("auto_compact_bytes = %d, want override", cfg.Policy.AutoCompact)
	}
	if cfg.Policy.FlushOnMutation {
		t.Error("file value should override the preset default")
	}
}

func TestLoader_KeepsDefaultsForMissingKeys(t *testing.T) {
	var cfg testConfig
	cfg.Map.Snapshot = "default.snap"
	if err := NewLoader(WithEnvPrefix("JMAPNONE_")).Load(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Map.Snapshot != "default.snap" {
		t.Errorf("snapshot = %q, want default kept", cfg.Map.Snapshot)
	}
}

func TestMapProvider(t *testing.T) {
	p := mapProvider{"Map.Snapshot": "x"}
	if _, err := p.ReadBytes(); err != ErrReadBytesNotSupported {
		t.Errorf("ReadBytes() = %v", err)
	}
	m, err := p.Read()
	if err != nil {
		t.Fatal(err)
	}
	section, ok := m["map"].(map[string]any)
	if !ok || section["snapshot"] != "x" {
		t.Errorf("Read() = %v", m)
	}
}
