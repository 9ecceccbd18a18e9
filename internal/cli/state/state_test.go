package state

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"probrowse/pkg/testutil"
)

func TestTokenStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	testutil.AssertNil(t, Save(path, TokenState{AccessToken: "token-123"}))

	st, err := Load(path)
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, st.AccessToken, "token-123")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		testutil.AssertNil(t, err)
		testutil.AssertEqual(t, info.Mode().Perm(), os.FileMode(0o600))
	}
}

func TestLoadMissingFile(t *testing.T) {
	st, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, st.AccessToken, "")
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	testutil.AssertNil(t, Save(path, TokenState{AccessToken: "token"}))

	testutil.AssertNil(t, Clear(path))
	testutil.AssertNil(t, Clear(path))

	st, err := Load(path)
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, st.AccessToken, "")
}
