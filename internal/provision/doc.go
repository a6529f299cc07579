// SPDX-License-Identifier: MPL-2.0

// Package provision implements the environment-provisioning pipeline.
//
// A Pipeline executes a fixed, ordered sequence of steps against an immutable
// Config: resolve the target architecture, rebuild the isolated Python
// environment, install dependencies (installer tooling upgrades, a cached
// remote archive, manifest subsets and full manifests), and run the native
// component sub-installers. Steps are either required (a failure aborts the
// remaining pipeline) or optional, whose failures are logged and swallowed.
//
// The pipeline is deliberately sequential: every step depends on filesystem
// state left by the previous one, and recovery from an interrupted run is to
// re-run from scratch (the environment is destroyed and rebuilt each time).
package provision
