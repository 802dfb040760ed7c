// Package cli provides the docverify command-line client.
//
// Every command is a single cobra invocation: it opens the local session
// database, connects to the server, restores the saved tokens when the
// command acts for a user and exits. Typical flow:
//
//	docverify register
//	docverify login alice
//	docverify create "Lease agreement"
//	docverify finalize 1700000000123 --qr-out lease-qr.svg
//	docverify sign 1700000000123 --method advanced --block-out block.html
//	docverify stamp 1700000000123 lease.pdf lease-signed.pdf
//	docverify lookup AB-CDEF-12
//
// lookup is public and works without logging in. It also accepts the full
// verification URL printed by finalize.
package cli
