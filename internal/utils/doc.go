// Package utils provides shared low-level helpers used throughout the
// sseproxy internals. It covers the streaming (SSE) HTTP request helpers
// used to reach the upstream provider API, generic pointer and string
// utilities, and a simple elapsed-time timer.
//
// Key entry points: [DoPostStream] together with [SSEScanner] for
// Server-Sent Events streaming, [Ptr] for converting values to pointers, and
// [Timer] for measuring latency.
package utils
