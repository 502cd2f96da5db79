package attrs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/apognu/knox/errs"
)

func TestBuildPlainValue(t *testing.T) {
	t.Parallel()

	got, err := Build([]string{"user=bob"}, DefaultOptions())
	if err != nil {
		t.Fatalf("could not build attributes: %v", err)
	}
	if got["user"].Value != "bob" || got["user"].Confidential {
		t.Fatalf("got %+v, want plain value 'bob'", got["user"])
	}
}

func TestBuildRandomValue(t *testing.T) {
	t.Parallel()

	got, err := Build([]string{"password=-"}, Options{RandomLength: 20, Prompt: failPrompt})
	if err != nil {
		t.Fatalf("could not build attributes: %v", err)
	}
	attr := got["password"]
	if !attr.Confidential {
		t.Fatalf("expected a random value to be confidential")
	}
	if len(attr.Value) != 20 {
		t.Fatalf("got random value of length %d, want 20", len(attr.Value))
	}
}

func TestBuildPromptedValue(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Prompt = func(key string) (string, error) {
		if key != "pin" {
			t.Fatalf("got prompt key %q, want 'pin'", key)
		}
		return "1234", nil
	}

	got, err := Build([]string{"pin="}, opts)
	if err != nil {
		t.Fatalf("could not build attributes: %v", err)
	}
	if got["pin"].Value != "1234" || !got["pin"].Confidential {
		t.Fatalf("got %+v, want confidential prompted value", got["pin"])
	}
}

func TestBuildFileValue(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "key.pem")
	if err := os.WriteFile(path, []byte("binary-key-material"), 0o600); err != nil {
		t.Fatalf("could not write fixture file: %v", err)
	}

	got, err := Build([]string{"keyfile=@" + path}, DefaultOptions())
	if err != nil {
		t.Fatalf("could not build attributes: %v", err)
	}
	attr := got["keyfile"]
	if !attr.File {
		t.Fatalf("expected a file attribute")
	}
	if string(attr.BytesValue) != "binary-key-material" {
		t.Fatalf("got %q, want file contents", attr.BytesValue)
	}
}

func TestBuildFileValueMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Build([]string{"keyfile=@/nonexistent/path"}, DefaultOptions()); !errors.Is(err, errs.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
}

func TestBuildRejectsMalformedPair(t *testing.T) {
	t.Parallel()

	if _, err := Build([]string{"novalue"}, DefaultOptions()); !errors.Is(err, errs.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
}

func TestDeletionsRejectsEmptyName(t *testing.T) {
	t.Parallel()

	if _, err := Deletions([]string{"ok", ""}); !errors.Is(err, errs.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
}

func failPrompt(string) (string, error) {
	return "", errors.New("prompt should not have been called")
}
