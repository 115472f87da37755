// ABOUTME: Package doc for the high-level speech API
// ABOUTME: One Speaker per voice; streamed or buffered playback

// Package vocalis is the high-level entry point: wrap an API voice in
// a Speaker and speak text through it, either streamed (playback starts
// while the download runs) or buffered (download everything, then
// play). Helpers persist results to disk.
package vocalis
