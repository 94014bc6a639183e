package internal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"service-converter/internal"
	"service-converter/internal/mock"
)

func TestStorageAuditLogger_LogRequest_NormalizesRecord(t *testing.T) {
	storage := mock.NewMockAuditLogStorage(t)
	storage.EXPECT().
		Insert(testifymock.Anything, internal.RequestRecord{
			Method:   "GET",
			Path:     "api/v1/convert",
			Status:   200,
			Duration: 3 * time.Millisecond,
		}).
		Return(nil).
		Once()

	logger := internal.NewStorageAuditLogger(storage)

	err := logger.LogRequest(context.Background(), internal.RequestRecord{
		Method:   " get ",
		Path:     "/api/v1/convert/",
		Status:   200,
		Duration: 3 * time.Millisecond,
	})

	require.NoError(t, err)
}

func TestStorageAuditLogger_LogRequest_EmptyPath(t *testing.T) {
	storage := mock.NewMockAuditLogStorage(t)
	storage.EXPECT().
		Insert(testifymock.Anything, testifymock.MatchedBy(func(rec internal.RequestRecord) bool {
			return rec.Path == "unknown"
		})).
		Return(nil).
		Once()

	err := internal.NewStorageAuditLogger(storage).LogRequest(context.Background(), internal.RequestRecord{Method: "GET", Path: "/"})

	require.NoError(t, err)
}

func TestStorageAuditLogger_LogRequest_StorageError(t *testing.T) {
	storage := mock.NewMockAuditLogStorage(t)
	storage.EXPECT().
		Insert(testifymock.Anything, testifymock.Anything).
		Return(errors.New("db down")).
		Once()

	err := internal.NewStorageAuditLogger(storage).LogRequest(context.Background(), internal.RequestRecord{Method: "POST", Path: "/api/v1/rates/refresh"})

	require.Error(t, err)
	assert.Equal(t, "audit log POST api/v1/rates/refresh: db down", err.Error())
}
