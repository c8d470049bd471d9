// Package main provides the entry point for jmapctl.
//
// jmapctl opens a snapshot and journal pair as a journaled map and runs one
// operation on it, or an interactive shell:
//
//	jmapctl --snapshot data.snap --journal data.journal put user:1 alice
//	jmapctl -c jmap.yaml -o json dump
//	jmapctl -c jmap.yaml shell --save-on-exit
//
// Configuration comes from defaults, the --config YAML file, JMAP_*
// environment variables and flags, in increasing order of precedence.
package main
