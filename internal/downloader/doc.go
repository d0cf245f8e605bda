// Package downloader acquires raw video files for collected products. It
// tries resolved candidate URLs in order, remuxing HLS streams through FFmpeg
// and streaming direct files over HTTP, validates every artifact with FFprobe,
// and falls back to a configured local clip pool when nothing downloadable is
// found.
package downloader
