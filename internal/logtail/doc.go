// Package logtail reads the tail of the parkdash log file for the terminal
// dashboard's log view.
//
// Read keeps a ring buffer of maxLines entries, so memory stays bounded no
// matter how large the file has grown. A missing file is not an error: the
// dashboard may be opened before the first line was ever logged.
//
// Level and Filter understand the console format produced by the logging
// package (timestamp, three-letter level, message, fields). They let the log
// view hide debug chatter without re-parsing lines as JSON.
package logtail
