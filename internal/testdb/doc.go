//go:build integration

// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database.
//
// Tests call GetTestDBWithT to obtain a migrated connection. When no test
// database is configured the test is skipped locally and fails in CI, so a
// misconfigured pipeline cannot pass silently.
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        // changes made through tx are rolled back afterwards
//	    })
//	}
//
// # Environment Variables
//
// - PICTUREBOOK_TEST_DATABASE_URL: connection string for the test database
// - DATABASE_URL: fallback connection string
package testdb
