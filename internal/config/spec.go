package config

// Config is the root configuration for jmapctl.
type Config struct {
	Map        MapSection        `koanf:"map" yaml:"map"`
	Policy     PolicySection     `koanf:"policy" yaml:"policy"`
	Codec      CodecSection      `koanf:"codec" yaml:"codec"`
	Encryption EncryptionSection `koanf:"encryption" yaml:"encryption"`
	Log        LogSection        `koanf:"log" yaml:"log"`
	Metrics    MetricsSection    `koanf:"metrics" yaml:"metrics"`
	Output     string            `koanf:"output" yaml:"output"` // table, json, yaml
}

// MapSection locates the map files.
type MapSection struct {
	Snapshot      string `koanf:"snapshot" yaml:"snapshot"`
	Journal       string `koanf:"journal" yaml:"journal"`
	FormatVersion int32  `koanf:"format_version" yaml:"format_version"`
}

// PolicySection sets the durability policies. It is re-read when the
// configuration file changes during a shell session.
type PolicySection struct {
	FlushOnMutation     bool   `koanf:"flush_on_mutation" yaml:"flush_on_mutation"`
	RetainJournalOnSave bool   `koanf:"retain_journal_on_save" yaml:"retain_journal_on_save"`
	SyncWrites          bool   `koanf:"sync_writes" yaml:"sync_writes"`
	TailPolicy          string `koanf:"tail_policy" yaml:"tail_policy"` // truncate, strict
	AutoCompactBytes    int64  `koanf:"auto_compact_bytes" yaml:"auto_compact_bytes"`
}

// CodecSection selects how values are encoded on disk.
type CodecSection struct {
	// Value is one of string, json or proto.
	Value string `koanf:"value" yaml:"value"`
}

// EncryptionSection enables sealed values.
type EncryptionSection struct {
	Enabled    bool   `koanf:"enabled" yaml:"enabled"`
	Passphrase string `koanf:"passphrase" yaml:"passphrase"`
	// Salt is hex encoded; generate one with `jmapctl salt`.
	Salt      string `koanf:"salt" yaml:"salt"`
	Algorithm string `koanf:"algorithm" yaml:"algorithm"` // empty picks for the platform
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// MetricsSection configures metrics output.
type MetricsSection struct {
	// File receives the metrics in Prometheus text format after each
	// command. Empty disables it.
	File string `koanf:"file" yaml:"file"`
}
