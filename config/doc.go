// Package config loads factormerge settings.
//
// Sources are applied in order, later ones overriding earlier ones:
//
//  1. Built-in defaults.
//  2. An optional YAML file.
//  3. Environment variables prefixed with FACTORMERGE_. A double underscore
//     separates nesting levels, so FACTORMERGE_MERGE__WORKERS sets
//     merge.workers.
//
// The result is validated before it is returned.
package config
