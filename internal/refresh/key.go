// Package refresh implements the shared invalidation signal observed by
// client screens.  Whenever server-owned viewer state changes out from
// under a screen (a favorite toggled, an entitlement granted), the key
// is bumped; screens compare the current value against the last one they
// saw and re-fetch when it moved.
package refresh

import "sync/atomic"

// Key is a monotonically increasing version counter.  The zero value is
// ready to use.
type Key struct {
	v atomic.Uint64
}

// Bump advances the key and returns the new version.
func (k *Key) Bump() uint64 { return k.v.Add(1) }

// Current returns the latest version.
func (k *Key) Current() uint64 { return k.v.Load() }

// ChangedSince reports whether the key moved past the given version.
func (k *Key) ChangedSince(seen uint64) bool { return k.v.Load() > seen }
