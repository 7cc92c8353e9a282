// Package pipeline orchestrates media loads: in-memory cache map, the
// decode worker channel, main-context fallback decoding, and the
// persistent blob cache.
//
// Per logical path the pipeline keeps a tagged entry — Absent, Pending,
// Ready(bitmap, dims), or Native(url) for the degraded no-decode path.
// The map is process-lifetime and grows monotonically; a failed load
// reverts its entry to Absent so the next render pass that still wants
// the path retries it. There is no negative caching and no invalidation
// when the underlying file changes within a session.
//
// The load protocol per request, in priority order:
//
//  1. Pending or ready entry for the path: attach or return
//     immediately. At most one decode is ever in flight per path.
//  2. Submit to the worker channel, correlated by request ID. Silence
//     for 15 s counts as a worker failure; a late reply for a
//     timed-out ID is discarded.
//  3. Worker failure, timeout, or channel unavailable: fall back to a
//     main-context decode (store blob, else fetch + best-effort store
//     write + decode).
//  4. If blob decode also fails, hand the URL to the platform as a
//     native entry — displayable, but uncached.
//
// Each requester's callback fires exactly once. Successful decodes bump
// a monotonically increasing layout version; the engine watches it to
// schedule relayout with real intrinsic dimensions.
package pipeline
