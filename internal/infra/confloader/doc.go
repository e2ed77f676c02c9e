// Package confloader provides configuration loading for relaychat.
//
// This package implements a flexible configuration loader that supports
// multiple sources using koanf as the underlying library.
//
// Features:
//
//   - Multiple Sources: YAML files, environment variables, maps
//   - Watch Support: reload callbacks on config file changes
//   - Type Safety: unmarshaling into typed structs
//
// Priority (highest to lowest):
//
//  1. Environment variables (RELAYCHAT_ prefix)
//  2. Configuration file
//  3. Default values
package confloader
