package surrealdb

import (
	"context"
	"errors"
	"testing"

	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/interfaces"
	"github.com/bobmcallan/carfeed/internal/storage/storagetest"
	tcommon "github.com/bobmcallan/carfeed/tests/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackStore(t *testing.T) {
	storagetest.RunFeedbackStoreTests(t, func(t *testing.T) interfaces.FeedbackStore {
		return NewFeedbackStore(testDB(t), testLogger())
	})
}

func TestManager_Connect(t *testing.T) {
	sc := tcommon.StartSurrealDB(t)

	m, err := NewManager(context.Background(), testLogger(), common.StorageConfig{
		Backend:   common.BackendSurrealDB,
		Address:   sc.Address(),
		Namespace: "carfeed_test",
		Database:  "manager_connect",
		Username:  "root",
		Password:  "root",
	})
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, common.BackendSurrealDB, m.Backend())
	assert.NotNil(t, m.FeedbackStore())
}

func TestIsNotFoundError(t *testing.T) {
	assert.False(t, isNotFoundError(nil))
	assert.True(t, isNotFoundError(errors.New("The record 'feedback:x' was Not Found")))
	assert.True(t, isNotFoundError(errors.New("table feedback does not exist")))
	assert.False(t, isNotFoundError(errors.New("connection refused")))
}
