// Package notify delivers finished reports by email and packs them into zip
// archives.
//
// SMTPNotifier sends one plain-text message per run with every report
// attached, or a single zip of them when WithArchive is set. Attachments
// that were never written are skipped with a warning.
package notify
