// Package storage defines the persistence contracts behind a crown engine.
//
// Domain packages depend on these interfaces rather than on a concrete
// database. The sqlite subpackage is the production implementation.
//
// Error contract:
//   - ErrNotFound: requested record is missing
package storage
