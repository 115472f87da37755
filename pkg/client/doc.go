// ABOUTME: Package doc for the REST and realtime API client
// ABOUTME: Voices, synthesis, history and websocket streaming input

// Package client wraps the speech synthesis HTTP API: voice listing
// and editing, text-to-speech generation (whole-file and streamed),
// generation history, and the websocket endpoint that accepts text
// incrementally. Streamed synthesis is exposed as a chunk stream that
// feeds the playback pipeline directly.
package client
