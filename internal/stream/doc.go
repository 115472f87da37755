// ABOUTME: Streaming playback pipeline from network chunks to a device
// ABOUTME: Downloader, shared buffer, block decoder and pull bridge

// Package stream plays audio while it is still downloading. A session
// runs three cooperating actors over one shared growable buffer: the
// downloader appends network chunks, the block reader decodes
// fixed-size float32 blocks into an unbounded queue, and the device
// pulls blocks from the queue in real time. Binary latches pace the
// actors so none of them polls or blocks the device callback.
package stream
