// Package dataset loads the users CSV resource that backs the /api endpoint.
//
// The resource is authored in Shift_JIS (CP932). [Load] decodes it with the
// Shift_JIS decoder, parses it as CSV with a header row, and runs every
// header name and field value through [Sanitize].
//
// # Yen normalization
//
// In CP932 the byte 0x5C is drawn as a yen sign, but standard decoders map
// it to U+005C REVERSE SOLIDUS. Clients of this server expect those
// positions to read "&yen;" instead, so Sanitize rewrites every backslash
// after decoding. The rewrite is unconditional: it does not depend on how
// the decoder treats 0x5C.
//
// # No caching
//
// Each call to Load reads the file from disk again. The resource is small
// and rarely requested, so there is no cache to invalidate and edits to the
// file show up on the next request.
package dataset
