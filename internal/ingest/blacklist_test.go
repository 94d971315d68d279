package ingest

import "testing"

func TestOptionsBlacklistDefaults(t *testing.T) {
	var opts Options
	if got := opts.wayBlacklist(); !got[1648176] {
		t.Fatal("expected default way blacklist to be used when Blacklist is nil")
	}
	if got := opts.relationBlacklist(); !got[2545969] {
		t.Fatal("expected default relation blacklist to be used when RelationBlacklist is nil")
	}
	if got := opts.adminRelationBlacklist(); !got[38091] {
		t.Fatal("expected default admin relation blacklist to be used when AdminRelationBlacklist is nil")
	}
}

func TestOptionsBlacklistOverrides(t *testing.T) {
	opts := Options{
		Blacklist:              map[int64]bool{99: true},
		RelationBlacklist:      map[int64]bool{98: true},
		AdminRelationBlacklist: map[int64]bool{97: true},
	}
	if got := opts.wayBlacklist(); got[1648176] || !got[99] {
		t.Fatal("expected caller-supplied way blacklist to replace the default")
	}
	if got := opts.relationBlacklist(); got[2545969] || !got[98] {
		t.Fatal("expected caller-supplied relation blacklist to replace the default")
	}
	if got := opts.adminRelationBlacklist(); got[38091] || !got[97] {
		t.Fatal("expected caller-supplied admin relation blacklist to replace the default")
	}
}

func TestDefaultBlacklistsHaveNoOverlap(t *testing.T) {
	// The three lists are grounded on three distinct id namespaces in the
	// original (way ids vs. two separate relation-id lists); a relation id
	// landing in defaultAdminRelationBlacklist should not also silently
	// appear in defaultRelationBlacklist, since that would make the
	// OnRelation early-return hide which list actually caused the skip.
	for id := range defaultAdminRelationBlacklist {
		if defaultRelationBlacklist[id] {
			t.Fatalf("relation id %d appears in both admin and whole-relation blacklists", id)
		}
	}
}
