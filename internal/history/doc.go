// Package history records completed downloads so earlier runs can be
// inspected later. The SQLite-backed repository is the real
// implementation; MockRepository serves tests.
package history
