// Package preflight provides readiness checks for the filesystem paths and
// external binaries ClipFlow depends on.
//
// These checks run in two contexts:
//   - The inbox watcher calls RunAll before it starts. If any check fails it
//     refuses to start rather than failing every ingested recording.
//   - The CLI "clipflow deps" command renders every result, including
//     individual binary statuses from CheckSystemDeps.
package preflight
