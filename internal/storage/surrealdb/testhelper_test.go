package surrealdb

import (
	"context"
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"

	surreal "github.com/surrealdb/surrealdb.go"

	"github.com/bobmcallan/carfeed/internal/common"
	tcommon "github.com/bobmcallan/carfeed/tests/common"
)

var (
	dbSeq     atomic.Int64
	unsafeRun = regexp.MustCompile(`[^A-Za-z0-9_]+`)
)

// testDB opens a Manager on a fresh database in the shared container, so
// every test sees an empty feedback table.
func testDB(t *testing.T) *surreal.DB {
	t.Helper()
	sc := tcommon.StartSurrealDB(t)

	name := fmt.Sprintf("t%d_%s", dbSeq.Add(1), unsafeRun.ReplaceAllString(t.Name(), "_"))
	m, err := NewManager(context.Background(), testLogger(), common.StorageConfig{
		Backend:   common.BackendSurrealDB,
		Address:   sc.Address(),
		Namespace: "carfeed_test",
		Database:  name,
		Username:  "root",
		Password:  "root",
	})
	if err != nil {
		t.Fatalf("open SurrealDB manager: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m.db
}

func testLogger() *common.Logger {
	return common.NewSilentLogger()
}
