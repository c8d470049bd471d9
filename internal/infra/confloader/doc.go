// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Maps passed to LoadMap (command-line flags)
//  2. Environment variables (JMAP_ prefix)
//  3. The YAML configuration file
//  4. Whatever the target struct held before Load
//
// Watcher reports edits to the configuration file so that long-running
// commands can re-read it.
package confloader
