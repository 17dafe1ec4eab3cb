package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/surrogo/linear"
	"github.com/ezoic/surrogo/pkg/errors"
	"github.com/ezoic/surrogo/surrogates"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewStore("sqlite", filepath.Join(t.TempDir(), "surrogo.db"))
	require.NoError(t, err)
	memory, err := NewStore("memory", "")
	require.NoError(t, err)
	return map[string]Store{"memory": memory, "sqlite": sqlite}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Init(ctx))
			t.Cleanup(func() { _ = CloseIfSupported(store) })

			rf := surrogates.NewRandomForestSurrogate()
			rf.NEstimators = 12
			first, err := NewRecord(rf)
			require.NoError(t, err)
			second, err := NewRecord(surrogates.NewPretrainedSurrogate([]byte{0, 200, 255}))
			require.NoError(t, err)
			second.CreatedAt = first.CreatedAt.Add(time.Second)

			require.NoError(t, store.SaveSurrogate(ctx, first))
			require.NoError(t, store.SaveSurrogate(ctx, second))

			got, ok, err := store.GetSurrogate(ctx, first.ID)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, surrogates.KindRandomForest, got.Kind)
			assert.True(t, first.CreatedAt.Equal(got.CreatedAt))

			s, err := got.Surrogate()
			require.NoError(t, err)
			assert.Equal(t, 12, s.(*surrogates.RandomForestSurrogate).NEstimators)

			list, err := store.ListSurrogates(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, first.ID, list[0].ID)
			assert.Equal(t, second.ID, list[1].ID)

			p, err := list[1].Surrogate()
			require.NoError(t, err)
			assert.Equal(t, []byte{0, 200, 255}, p.(*surrogates.PretrainedSurrogate).ModelBlob)

			require.NoError(t, store.DeleteSurrogate(ctx, first.ID))
			_, ok, err = store.GetSurrogate(ctx, first.ID)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStoreRejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Init(ctx))
			t.Cleanup(func() { _ = CloseIfSupported(store) })

			record, err := NewRecord(surrogates.NewMeanPredictionSurrogate())
			require.NoError(t, err)

			stale := record
			stale.CodecVersion = CurrentCodecVersion + 1
			assert.ErrorIs(t, store.SaveSurrogate(ctx, stale), ErrVersionMismatch)

			noID := record
			noID.ID = ""
			assert.Error(t, store.SaveSurrogate(ctx, noID))

			badID := record
			badID.ID = "not-a-uuid"
			assert.Error(t, store.SaveSurrogate(ctx, badID))
		})
	}
}

func TestRecordVersionMismatch(t *testing.T) {
	record, err := NewRecord(surrogates.NewGaussianProcessSurrogate())
	require.NoError(t, err)
	record.SchemaVersion = 0
	_, err = record.Surrogate()
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func TestRecordKindMustMatchPayload(t *testing.T) {
	record, err := NewRecord(surrogates.NewGaussianProcessSurrogate())
	require.NoError(t, err)
	record.Kind = surrogates.KindMeanPrediction
	_, err = record.Surrogate()
	assert.Error(t, err)
}

func TestNewRecordRefusesCustomArchitecture(t *testing.T) {
	_, err := NewRecord(surrogates.NewCustomArchitectureSurrogate(linear.NewBayesianRidge()))
	assert.ErrorIs(t, err, errors.ErrSerializationUnsupported)
}

func TestStoreRequiresInit(t *testing.T) {
	ctx := context.Background()
	record, err := NewRecord(surrogates.NewMeanPredictionSurrogate())
	require.NoError(t, err)

	assert.Error(t, NewSQLiteStore(filepath.Join(t.TempDir(), "x.db")).SaveSurrogate(ctx, record))
	assert.Error(t, NewMemoryStore().SaveSurrogate(ctx, record))
	assert.Error(t, NewSQLiteStore("").Init(ctx))

	_, err = NewStore("postgres", "")
	assert.Error(t, err)
}
