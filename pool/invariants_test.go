package pool

import (
	"context"
	"math/rand"
	"testing"
)

// TestNoEmptyBucketsSurvive runs a randomized sequence of install/checkout/
// return operations and asserts that poolInner never leaves an empty slice
// sitting behind a key of its idle map — an idle bucket is removed the
// moment it empties
// (spec.md §4.6, §4.7's "if the list empties, remove the bucket").
func TestNoEmptyBucketsSurvive(t *testing.T) {
	p := New[*fakeConn](dur(1))
	key := Key{Origin: "origin", Ver: VersionH1}
	rng := rand.New(rand.NewSource(1))

	var outstanding []*Pooled[*fakeConn]
	for i := 0; i < 500; i++ {
		switch rng.Intn(3) {
		case 0:
			outstanding = append(outstanding, p.Pooled(key, &fakeConn{id: i}))
		case 1:
			if got, ok, _ := p.Checkout(key).Poll(context.Background()); ok {
				outstanding = append(outstanding, got)
			}
		case 2:
			if len(outstanding) > 0 {
				idx := rng.Intn(len(outstanding))
				outstanding[idx].Idle()
				outstanding = append(outstanding[:idx], outstanding[idx+1:]...)
			}
		}

		if list, ok := p.inner.idle[key]; ok && len(list) == 0 {
			t.Fatalf("iteration %d: empty idle bucket left behind for %v", i, key)
		}
	}
}

// TestHttp1NeverDoubleCheckedOut asserts the exclusivity invariant for
// Http1 keys: an entry handed out by take/Poll is never Idle (and thus
// never eligible to be handed out a second time) until explicitly
// returned.
func TestHttp1NeverDoubleCheckedOut(t *testing.T) {
	p := New[*fakeConn](dur(5))
	key := Key{Origin: "origin", Ver: VersionH1}

	seen := map[int]bool{}
	for i := 0; i < 50; i++ {
		pooled := p.Pooled(key, &fakeConn{id: i})
		pooled.Idle()
	}

	for i := 0; i < 50; i++ {
		got, ok, err := p.Checkout(key).Poll(context.Background())
		if err != nil {
			t.Fatalf("poll error: %v", err)
		}
		if !ok {
			break
		}
		if seen[got.Value().id] {
			t.Fatalf("id %d checked out twice while still busy", got.Value().id)
		}
		seen[got.Value().id] = true
		if status := got.Status(); status != "busy" {
			t.Fatalf("freshly checked-out Http1 entry should be busy, got %q", status)
		}
	}
}
