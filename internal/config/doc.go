// Package config defines the jmapctl configuration structure.
//
// Values come from defaults, a YAML file, JMAP_ environment variables and
// command-line flags, merged by confloader. Verify checks a loaded
// configuration before it is used.
package config
