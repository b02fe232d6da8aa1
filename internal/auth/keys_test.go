package auth

import "testing"

func TestHashKey(t *testing.T) {
	// SHA-256 of the empty string.
	if got := HashKey(""); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("HashKey(\"\") = %v", got)
	}

	if got := HashKey("spoils-key"); len(got) != 64 {
		t.Errorf("HashKey() returned %d chars, want 64", len(got))
	}
}

func TestHashKey_TrimsWhitespace(t *testing.T) {
	if HashKey("  spoils-key \n") != HashKey("spoils-key") {
		t.Error("whitespace around the key changed the hash")
	}
}

func TestHashKey_DistinctKeys(t *testing.T) {
	if HashKey("key1") == HashKey("key2") {
		t.Error("different keys produced the same hash")
	}
}
