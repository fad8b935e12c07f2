// Package config defines the stress tool configuration structure.
//
// Configuration is layered through confloader: defaults, then a YAML
// file, then IDKEY_-prefixed environment variables, then CLI flags.
package config
