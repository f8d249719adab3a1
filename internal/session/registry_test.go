package session

import "testing"

func TestMintAndMatchKey(t *testing.T) {
	r := NewRegistry()

	key := r.MintKey("alpha1")
	if key == "" {
		t.Fatal("MintKey returned an empty key")
	}
	if !r.MatchKey("alpha1", key) {
		t.Fatal("minted key should match")
	}
	if r.MatchKey("alpha1", "other") {
		t.Fatal("wrong key should not match")
	}
	if r.MatchKey("alpha1", "") {
		t.Fatal("empty key should never match")
	}
	if r.MatchKey("bravo1", key) {
		t.Fatal("key should not match another name")
	}

	// A new key invalidates the old one.
	fresh := r.MintKey("alpha1")
	if fresh == key {
		t.Fatal("MintKey should generate a fresh key")
	}
	if r.MatchKey("alpha1", key) {
		t.Fatal("replaced key should no longer match")
	}
	if !r.MatchKey("alpha1", fresh) {
		t.Fatal("fresh key should match")
	}

	r.DropKey("alpha1")
	if r.MatchKey("alpha1", fresh) {
		t.Fatal("dropped key should no longer match")
	}
}

func TestRegisterReplacesChannel(t *testing.T) {
	r := NewRegistry()

	first := NewChannel()
	r.Register("alpha1", first)

	got, ok := r.Channel("alpha1")
	if !ok || got != first {
		t.Fatal("Channel should return the registered channel")
	}

	second := NewChannel()
	r.Register("alpha1", second)

	// The replaced channel is closed so its transport loop ends.
	if _, open := <-first.Frames(); open {
		t.Fatal("replaced channel should be closed")
	}

	got, ok = r.Channel("alpha1")
	if !ok || got != second {
		t.Fatal("Channel should return the replacement")
	}

	r.Deregister("alpha1")
	if _, ok := r.Channel("alpha1"); ok {
		t.Fatal("Channel should miss after Deregister")
	}
	if !second.Send([]byte("x")) {
		t.Fatal("Deregister must not close the channel")
	}
}
