// Package signal implements one-shot notifications between sessions.
//
// A signal is a single file, <type>_signal.json, in the coordination
// directory. Sending overwrites any signal of the same type that has not been
// read yet. Receiving reads the file and deletes it, so each signal is
// delivered to at most one reader. A signal file that cannot be parsed is
// deleted and reported as absent. Receivers claim the file by renaming it
// first, so at most one of several competing readers gets each signal.
//
// Watch layers change notification on top of Receive using fsnotify, with a
// slow poll as a backstop for filesystems that do not deliver events.
package signal
