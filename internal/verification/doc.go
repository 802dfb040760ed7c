// Package verification issues public verification codes for documents and
// renders the artifacts printed alongside them: the lookup URL, a QR graphic
// of that URL and the HTML signature block appended to rendered documents.
//
// Codes use the hash scheme: SHA-256 over the document id, title, current
// time in milliseconds and 8 random bytes; the first 8 hex digits are
// upper-cased and grouped as XX-XXXX-XX. Codes are lookup tokens, not
// checksums: they cannot be re-derived, and uniqueness is only statistical.
// The persistence layer must enforce it with a unique constraint.
//
// Everything here is stateless and safe for concurrent use.
package verification
