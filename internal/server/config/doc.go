// Package config defines the server configuration structure.
//
// Configuration is loaded by internal/infra/confloader with the
// priority: environment > file > defaults. Struct fields carry koanf
// tags; Verify rejects invalid combinations before startup.
package config
