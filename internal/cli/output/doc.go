// Package output renders jmapctl results.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: aligned text tables built from structs, slices and maps
//   - json.go: indented JSON
//   - yaml.go: YAML via gopkg.in/yaml.v3
//
// Map rows are sorted by key so table output is stable.
package output
