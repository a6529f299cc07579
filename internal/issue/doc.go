// SPDX-License-Identifier: MPL-2.0

// Package issue provides structured, user-facing error and advisory types.
//
// Fatal provisioning errors are wrapped in ActionableError so the CLI can show
// the failed operation, the resource involved, and concrete suggestions.
// Advisories are informational notes (never errors) rendered as markdown.
package issue
