// Package blobstore defines the content-addressed blob store port. A stored
// payload is identified by its content identifier (cid): the hex sha-256 of
// the bytes. The same bytes always pin to the same cid, and a cid is
// resolvable for as long as the store holds the payload.
package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Store accepts payloads and resolves content identifiers back to bytes.
type Store interface {
	// Pin stores data under its content identifier and returns the cid.
	// name travels as metadata only; it does not affect the cid.
	Pin(ctx context.Context, name string, data []byte) (string, error)

	// Fetch resolves a cid back to the stored bytes, or common.ErrNotFound.
	Fetch(ctx context.Context, cid string) ([]byte, error)

	// GatewayURL returns the deterministic viewing URL for a cid.
	GatewayURL(cid string) string
}

// ContentID computes the content identifier for a payload.
func ContentID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
