package pathmap

import "testing"

func TestHashPathMintsFreshSalt(t *testing.T) {
	t.Parallel()

	a, err := HashPath(nil)
	if err != nil {
		t.Fatalf("could not mint salt: %v", err)
	}
	b, err := HashPath(nil)
	if err != nil {
		t.Fatalf("could not mint salt: %v", err)
	}

	if a == b {
		t.Fatalf("two freshly minted salts collided: %q", a)
	}
	// "<xx>/<uuid>" = 2 + 1 + 36 = 39 characters.
	if len(a) != 39 {
		t.Fatalf("unexpected shard path length: got %d, want 39 (%q)", len(a), a)
	}
}

func TestHashPathPreservesExistingSalt(t *testing.T) {
	t.Parallel()

	salt := "6a25fcf2-13c7-779a-d26d-c50706cb643b"
	got, err := HashPath(&salt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := salt[:2] + "/" + salt
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSalt(t *testing.T) {
	t.Parallel()

	if got := Salt("6a/6a25fcf2-13c7-779a-d26d-c50706cb643b"); got != "6a25fcf2-13c7-779a-d26d-c50706cb643b" {
		t.Fatalf("got %q", got)
	}
}
