// SPDX-License-Identifier: MPL-2.0

// Package config loads asrenv settings from defaults, an optional TOML config
// file, and environment variables, in increasing order of precedence.
package config
