// Package contacts turns raw contact-list CSV files into deduplicated,
// phone-normalized contact records and back.
//
// The pipeline is:
//
//	raw bytes -> sanitize (BOM, invalid UTF-8) -> encoding/csv records
//	          -> header + phone column detection -> per-row normalization
//	          -> dedupe by canonical phone -> ParseResult
//
// Everything in this package is pure: no I/O beyond the reader or writer the
// caller passes in, no shared state. Results are safe to share between
// goroutines once returned.
package contacts
