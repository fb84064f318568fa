package integrity

import (
	"fmt"

	"github.com/louisbranch/hippycrown/internal/services/crown/domain/event"
)

// Seal sets the hash, chain hash, and signature of evt, which must already
// carry its sequence number. prevChainHash is empty for the first event.
func Seal(ring *Keyring, evt event.Event, prevChainHash string) (event.Event, error) {
	if evt.Seq == 0 {
		return event.Event{}, fmt.Errorf("event sequence is required")
	}
	hash, err := event.EventHash(evt)
	if err != nil {
		return event.Event{}, fmt.Errorf("compute event hash: %w", err)
	}
	evt.Hash = hash
	evt.PrevHash = prevChainHash
	chainHash, err := event.ChainHash(evt, prevChainHash)
	if err != nil {
		return event.Event{}, fmt.Errorf("compute chain hash: %w", err)
	}
	evt.ChainHash = chainHash
	signature, keyID, err := ring.SignChainHash(evt.EngineID, chainHash)
	if err != nil {
		return event.Event{}, fmt.Errorf("sign chain hash: %w", err)
	}
	evt.Signature = signature
	evt.SignatureKeyID = keyID
	return evt, nil
}

// Verify recomputes the hashes of evt, checks it links to prevChainHash, and
// validates its signature.
func Verify(ring *Keyring, evt event.Event, prevChainHash string) error {
	hash, err := event.EventHash(evt)
	if err != nil {
		return fmt.Errorf("event %d: compute hash: %w", evt.Seq, err)
	}
	if hash != evt.Hash {
		return fmt.Errorf("event %d: content hash mismatch", evt.Seq)
	}
	if evt.PrevHash != prevChainHash {
		return fmt.Errorf("event %d: previous hash mismatch", evt.Seq)
	}
	chainHash, err := event.ChainHash(evt, prevChainHash)
	if err != nil {
		return fmt.Errorf("event %d: compute chain hash: %w", evt.Seq, err)
	}
	if chainHash != evt.ChainHash {
		return fmt.Errorf("event %d: chain hash mismatch", evt.Seq)
	}
	if err := ring.VerifyChainHash(evt.EngineID, chainHash, evt.Signature, evt.SignatureKeyID); err != nil {
		return fmt.Errorf("event %d: %w", evt.Seq, err)
	}
	return nil
}
