// Package registry maps (driver-name, slot) identities to live driver
// records, hashed with an 8-bit Pearson hash and bucketed the way
// avl_tree_get keyed its nodes in shell.c — only backed by a Go map plus
// linear-scan buckets rather than an AVL tree, since the generic AVL
// container is explicitly out of scope for this port (spec.md §1).
package registry

import (
	"fmt"
	"strconv"
)

// Driver is one entry in the registry: the owned identity plus whatever
// the caller attaches as State (the client state machine, spec Component C).
// The registry only ever compares on (Name, Slot); State is opaque to it.
type Driver struct {
	Name string
	Slot uint64
	// State is attached by the caller (typically *client.Client) and is
	// never interpreted by the registry itself.
	State any
}

// DuplicateError is returned by Insert when the identity already exists.
// Per spec §3/§7 this is a fatal condition for the caller.
type DuplicateError struct {
	Name string
	Slot uint64
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("registry: duplicate driver %s at slot %d", e.Name, e.Slot)
}

// Registry is the driver-fleet directory: at most one record per (name,
// slot), as required by spec §3's registry invariant.
type Registry struct {
	buckets map[byte][]*Driver
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{buckets: make(map[byte][]*Driver)}
}

func key(name string, slot uint64) string {
	return name + strconv.FormatUint(slot, 10)
}

// Insert adds a new record for (name, slot). It returns *DuplicateError if
// that exact identity is already present — the registry never silently
// overwrites, matching the original's abort-on-duplicate behavior.
func (r *Registry) Insert(name string, slot uint64) (*Driver, error) {
	h := pearsonHash(key(name, slot))
	for _, d := range r.buckets[h] {
		if d.Name == name && d.Slot == slot {
			return nil, &DuplicateError{Name: name, Slot: slot}
		}
	}
	d := &Driver{Name: name, Slot: slot}
	r.buckets[h] = append(r.buckets[h], d)
	return d, nil
}

// Lookup returns the record for (name, slot), or nil if absent.
func (r *Registry) Lookup(name string, slot uint64) *Driver {
	h := pearsonHash(key(name, slot))
	for _, d := range r.buckets[h] {
		if d.Name == name && d.Slot == slot {
			return d
		}
	}
	return nil
}

// Remove deletes the record for (name, slot), if present. It reports
// whether a record was actually removed, so callers can warn on unknown
// deletions the way base_dir_smth_deleted does.
func (r *Registry) Remove(name string, slot uint64) bool {
	h := pearsonHash(key(name, slot))
	bucket := r.buckets[h]
	for i, d := range bucket {
		if d.Name == name && d.Slot == slot {
			r.buckets[h] = append(bucket[:i], bucket[i+1:]...)
			return true
		}
	}
	return false
}

// All returns every record currently registered. Traversal order is
// unspecified (spec §9 Design Note 3: "tests must not depend on order").
func (r *Registry) All() []*Driver {
	var out []*Driver
	for _, bucket := range r.buckets {
		out = append(out, bucket...)
	}
	return out
}
