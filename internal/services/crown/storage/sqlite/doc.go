// Package sqlite implements the crown journal on SQLite.
//
// Events are appended with a per-engine sequence and sealed into a signed
// hash chain inside one transaction. Audit records for rejected commands live
// beside the journal but outside the chain.
package sqlite
