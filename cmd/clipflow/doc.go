// Command clipflow turns talking-head recordings into rough cuts.
//
// Projects hold one source video. "clipflow analyze" transcribes it with
// WhisperX, finds the spoken NG/OK/START/END cues, and slices the recording
// into keep segments that can be reviewed with "clipflow segments", toggled
// or trimmed, and exported as an EDL, FCP XML, SRT, or a cut video.
// "clipflow watch" does the same for every video dropped into an inbox
// directory.
package main
