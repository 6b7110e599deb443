// Package watch ingests recordings dropped into the configured inbox
// directory.
//
// A Watcher holds a single-instance lock, watches the inbox with fsnotify,
// waits for each new video to stop changing (the settle delay), then creates
// a project named after the file, moves the file into it, and runs the full
// analysis. At most watch.max_concurrent analyses run at once. Projects left
// in the analyzing state by a crashed process are marked as errors at
// startup.
package watch
