// Package config centralizes the environment-variable-driven
// configuration for every vault binary (cmd/vaultd, cmd/vaultctl,
// cmd/keeperd). Every knob has a sane default so the daemon runs
// out of the box in mock/dev mode, and reads a VAULT_-prefixed
// environment variable to override it, in the same style the teacher
// repo uses for its SPIKE_-prefixed settings.
package config
