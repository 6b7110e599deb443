// Package config loads, normalizes, and validates ClipFlow configuration data.
//
// It supplies repository defaults (marker keywords, slicing buffers, export
// frame rate, WhisperX model), expands user paths including tilde shortcuts,
// reads TOML files, and honours environment fallbacks such as HF_TOKEN. New
// projects snapshot the [analysis] and [whisperx] sections into their own
// settings at creation time.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
