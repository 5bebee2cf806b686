package ingest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acervo-legal/acervo/pkg/archive"
)

const orchestratorStatute = `CAPÍTULO I.- Disposiciones Generales
Artículo 1.- Las disposiciones de esta ley son de orden público e interés social.
Artículo 2.- La aplicación de esta ley corresponde al Ejecutivo Federal.
Artículo 3.- Para los efectos de esta ley se entenderá por Secretaría la dependencia competente.
TRANSITORIOS
Primero.- El presente Decreto entrará en vigor al día siguiente de su publicación.`

type fakeStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	failures map[string]int
	calls    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		data:     make(map[string][]byte),
		failures: make(map[string]int),
	}
}

func (s *fakeStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if n := s.failures[key]; n > 0 {
		s.failures[key] = n - 1
		return nil, fmt.Errorf("transient origin failure")
	}
	data, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("unknown key %s", key)
	}
	return data, nil
}

func testRequest(key string) Request {
	return Request{
		Key:  key,
		Kind: KindText,
		Metadata: archive.Metadata{
			DocumentType:     "ley",
			Jurisdiction:     []string{"mx"},
			PublicationDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Name:             "Ley de Prueba",
			ExpectedArticles: 3,
		},
	}
}

func newTestOrchestrator(t *testing.T, store SourceStore) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(
		WithStore(store),
		WithAcquireInterval(time.Millisecond),
	)
	require.NoError(t, err)
	return o
}

func TestOrchestrator_Process_Success(t *testing.T) {
	store := newFakeStore()
	store.data["ley"] = []byte(orchestratorStatute)

	o := newTestOrchestrator(t, store)
	result := o.Process(context.Background(), testRequest("ley"))

	assert.True(t, result.Success)
	assert.Equal(t, StatePersisted, result.State)
	assert.Empty(t, result.Error)
	assert.NotEmpty(t, result.IngestionID)
	assert.NotNil(t, result.Document)
	assert.NotEmpty(t, result.Serialized)

	require.NotNil(t, result.Metrics)
	assert.Equal(t, 3, result.Metrics.Counts.Articles)
	assert.True(t, result.Metrics.SchemaValid)

	// One record per stage, in state machine order.
	states := make([]State, 0, len(result.Stages))
	for _, s := range result.Stages {
		states = append(states, s.State)
	}
	assert.Equal(t, []State{StateAcquiring, StateExtracting, StateParsing, StateScoring}, states)
}

func TestOrchestrator_Process_LowGradeIsSuccess(t *testing.T) {
	store := newFakeStore()
	store.data["fragmento"] = []byte("Texto suelto sin estructura reconocible.")

	o := newTestOrchestrator(t, store)
	result := o.Process(context.Background(), testRequest("fragmento"))

	assert.True(t, result.Success)
	assert.Equal(t, StatePersisted, result.State)
	require.NotNil(t, result.Metrics)
	assert.Equal(t, "F", result.Metrics.Grade)
}

func TestOrchestrator_Process_AcquireRetriesThenSucceeds(t *testing.T) {
	store := newFakeStore()
	store.data["ley"] = []byte(orchestratorStatute)
	store.failures["ley"] = 2

	o := newTestOrchestrator(t, store)
	result := o.Process(context.Background(), testRequest("ley"))

	assert.True(t, result.Success)
	assert.Equal(t, 3, store.calls)
}

func TestOrchestrator_Process_RetryExhaustion(t *testing.T) {
	store := newFakeStore() // no data: every fetch fails

	o, err := NewOrchestrator(
		WithStore(store),
		WithAcquireInterval(time.Millisecond),
		WithAcquireRetries(1),
		WithUnitRetries(1),
	)
	require.NoError(t, err)

	result := o.Process(context.Background(), testRequest("desconocida"))

	assert.False(t, result.Success)
	assert.Equal(t, StateFailed, result.State)
	assert.Contains(t, result.Error, "acquiring")
	assert.Contains(t, result.Error, "unknown key")
	assert.Empty(t, result.Stages)
	// 2 acquisition attempts per unit attempt, 2 unit attempts.
	assert.Equal(t, 4, store.calls)
	assert.Nil(t, result.Metrics)
}

func TestOrchestrator_Process_UnitRetryResetsStages(t *testing.T) {
	store := newFakeStore()
	store.data["ley"] = []byte(orchestratorStatute)
	// Fail more acquisition attempts than one unit attempt allows, so
	// the first unit attempt exhausts and the second succeeds.
	store.failures["ley"] = 3

	o, err := NewOrchestrator(
		WithStore(store),
		WithAcquireInterval(time.Millisecond),
		WithAcquireRetries(2),
		WithUnitRetries(1),
	)
	require.NoError(t, err)

	result := o.Process(context.Background(), testRequest("ley"))

	require.True(t, result.Success)
	// Stage history reflects the successful attempt only.
	require.Len(t, result.Stages, 4)
	assert.Equal(t, StateAcquiring, result.Stages[0].State)
}

func TestOrchestrator_Process_CanceledContext(t *testing.T) {
	store := newFakeStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOrchestrator(t, store)
	result := o.Process(ctx, testRequest("ley"))

	assert.False(t, result.Success)
	assert.Equal(t, StateFailed, result.State)
}

func TestOrchestrator_RequiresStore(t *testing.T) {
	_, err := NewOrchestrator()
	assert.Error(t, err)
}

func TestOrchestrator_ProcessBatch(t *testing.T) {
	store := newFakeStore()
	store.data["a"] = []byte(orchestratorStatute)
	store.data["b"] = []byte(orchestratorStatute)
	store.data["c"] = []byte("Texto suelto.")

	o := newTestOrchestrator(t, store)
	results := o.ProcessBatch(context.Background(),
		[]Request{testRequest("a"), testRequest("b"), testRequest("c")}, 2)

	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Key)
	assert.Equal(t, "b", results[1].Key)
	assert.Equal(t, "c", results[2].Key)
	for _, r := range results {
		assert.True(t, r.Success, "key %s", r.Key)
	}
}

func TestOrchestrator_ProcessBatch_CanceledBeforeStart(t *testing.T) {
	store := newFakeStore()
	store.data["a"] = []byte(orchestratorStatute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOrchestrator(t, store)
	results := o.ProcessBatch(ctx, []Request{testRequest("a"), testRequest("b")}, 1)

	require.Len(t, results, 2)
	for _, r := range results {
		require.NotNil(t, r)
		assert.False(t, r.Success)
		assert.Equal(t, StateFailed, r.State)
	}
}
