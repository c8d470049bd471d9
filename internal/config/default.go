package config

// Default configuration values.
const (
	DefaultSnapshot      = "jmap.snap"
	DefaultJournal       = "jmap.journal"
	DefaultFormatVersion = 1

	DefaultTailPolicy = "truncate"
	DefaultValueCodec = "string"

	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"

	DefaultOutput = "table"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Map: MapSection{
			Snapshot:      DefaultSnapshot,
			Journal:       DefaultJournal,
			FormatVersion: DefaultFormatVersion,
		},
		Policy: PolicySection{
			FlushOnMutation: true,
			TailPolicy:      DefaultTailPolicy,
		},
		Codec: CodecSection{
			Value: DefaultValueCodec,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Output: DefaultOutput,
	}
}
