// Package extract turns free-text channel messages into structured scrim
// records. Every field is derived by an ordered cascade of independent
// matchers; the first match wins and the absence of a signal yields an
// empty field, never a guessed default. The one exception is the
// availability day, which falls back to "Today".
//
// Extraction never fails: a message with no recognisable signal still
// produces a record carrying its source linkage, with Kind left
// unclassified. Filtering such records is the caller's concern.
package extract
