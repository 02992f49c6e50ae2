// Package core is the contact-ingestion service layer.
//
// It sits between transports (the HTTP API and the CLI) and the pure
// contact engine in package contacts:
//
//   - [Service.Analyze] parses an uploaded file under the [UploadLimiter] and
//     optionally saves a preview for a campaign.
//   - [Service.Dedupe] returns the cleaned file as CSV.
//   - [Service.UploadContacts] cleans a file and hands it to the campaign
//     service.
//   - [Service.Progress] fetches a campaign and its live counters and derives
//     a [campaign.ProgressView].
//
// Errors returned from Service keep their sentinels for errors.Is and can be
// shown to users through [MapError].
package core
