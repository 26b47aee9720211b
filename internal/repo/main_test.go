package repo_test

import (
	"os"
	"testing"

	"github.com/pkordes/triplog/testutil"
)

// TestMain brings the test database schema up to date before any test runs,
// so individual tests never need to think about schema state. Without
// TEST_DATABASE_URL every test skips itself.
func TestMain(m *testing.M) {
	testutil.MigrateForTestMain()
	os.Exit(m.Run())
}
