// Package record displays a single platform record.
//
// A Layout lists the fields to fetch and how they are grouped; LeadLayout
// describes a Lead. A Viewer fetches the record once through a Fetcher and
// formats every field with a Formatter: dates by layout, emails, phone
// numbers and websites as links, everything else as text. Labels are derived
// from API names by FormatLabel.
package record
