// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ifc

import "crypto/sha256"

// StoredDigest returns the SHA-256 digest recorded in the container
// header.
func (f *File) StoredDigest() Digest {
	var digest Digest
	copy(digest[:], f.data[digestStart:contentStart])
	return digest
}

// ContentDigest computes the SHA-256 of the hashed body: everything
// after the signature and the digest field itself.
func (f *File) ContentDigest() Digest {
	return Digest(sha256.Sum256(f.data[contentStart:]))
}

// VerifyContentIntegrity recomputes the body digest and compares it
// against the stored one. A mismatch means the container was
// corrupted or modified without a digest reset.
func (f *File) VerifyContentIntegrity() error {
	stored := f.StoredDigest()
	computed := f.ContentDigest()
	if stored != computed {
		return &IntegrityError{Stored: stored, Computed: computed}
	}
	return nil
}

// ResetContentHash recomputes the body digest and stores it in the
// header, restoring the digest invariant after in-place edits.
func (f *File) ResetContentHash() {
	digest := f.ContentDigest()
	copy(f.data[digestStart:contentStart], digest[:])
}
