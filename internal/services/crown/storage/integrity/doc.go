// Package integrity seals journal events into a tamper-evident chain.
//
// Each stored event carries a content hash, a chain hash linking it to its
// predecessor, and an HMAC signature over the chain hash. Signing keys are
// derived per engine from a root keyring so one engine's signatures never
// validate another's journal.
package integrity
