// Package services defines shared utilities consumed by the analysis workflow
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp project IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper. Validation, precondition
//     and collaborator failures are distinguished with errors.Is so the CLI and
//     the workflow can report them consistently.
//
// Use these helpers when wiring new pipeline logic so error reporting and
// observability stay uniform.
package services
