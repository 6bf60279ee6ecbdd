package lotsync_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorlot/lotsync"
	"github.com/motorlot/lotsync/pkg/errors"
	"github.com/motorlot/lotsync/pkg/inventory"
	syncx "github.com/motorlot/lotsync/pkg/sync"
	"github.com/motorlot/lotsync/pkg/wordpress"
)

// memorySource is an in-memory inventory.Source.
type memorySource struct {
	mu       sync.Mutex
	records  []*inventory.Record
	statuses map[int]string
	synced   map[int]time.Time
	flushed  int
	loadErr  error
}

func newMemorySource(records ...*inventory.Record) *memorySource {
	return &memorySource{
		records:  records,
		statuses: map[int]string{},
		synced:   map[int]time.Time{},
	}
}

func (s *memorySource) Load(context.Context) ([]*inventory.Record, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.records, nil
}

func (s *memorySource) SetStatus(_ context.Context, row int, message string, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[row] = message
	return nil
}

func (s *memorySource) SetSyncTime(_ context.Context, row int, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synced[row] = t
	return nil
}

func (s *memorySource) SetTermIDs(context.Context, int, int, int) error    { return nil }
func (s *memorySource) SetFeaturedImageID(context.Context, int, int) error { return nil }
func (s *memorySource) SetGalleryIDs(context.Context, int, inventory.Gallery, []int) error {
	return nil
}

func (s *memorySource) Flush(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushed++
	return nil
}

// stubAPI is a minimal backend: every create succeeds with a fresh id,
// every term resolves on first ask.
type stubAPI struct {
	mu         sync.Mutex
	nextPostID int
	nextTermID int
	posts      map[string]int
	created    int
	updated    int
	trashed    []int
}

func newStubAPI() *stubAPI {
	return &stubAPI{nextPostID: 500, nextTermID: 10, posts: map[string]int{}}
}

func (a *stubAPI) FindPostByOrdenCompra(_ context.Context, oc string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.posts[oc], nil
}

func (a *stubAPI) GetPost(_ context.Context, id int) (*wordpress.Post, error) {
	return &wordpress.Post{ID: id}, nil
}

func (a *stubAPI) CreatePost(_ context.Context, post *wordpress.Post) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextPostID++
	a.created++
	if oc, ok := post.Meta["ordencompra"].(string); ok {
		a.posts[oc] = a.nextPostID
	}
	return a.nextPostID, nil
}

func (a *stubAPI) UpdatePost(context.Context, int, map[string]any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.updated++
	return nil
}

func (a *stubAPI) TrashPost(_ context.Context, id int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trashed = append(a.trashed, id)
	return nil
}

func (a *stubAPI) FindTermBySlug(context.Context, string, string) (*wordpress.Term, error) {
	return nil, nil
}

func (a *stubAPI) CreateTerm(_ context.Context, _ string, term wordpress.Term) (*wordpress.Term, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextTermID++
	created := term
	created.ID = a.nextTermID
	return &created, nil
}

func (a *stubAPI) SetRelation(context.Context, wordpress.Relation) error { return nil }

// memoryState is an in-memory lotsync.StateStore.
type memoryState struct {
	mu       sync.Mutex
	startRow int
	runs     int
	finished int
}

func (m *memoryState) ManualStartRow() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startRow, nil
}

func (m *memoryState) SetManualStartRow(row int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startRow = row
	return nil
}

func (m *memoryState) ClearManualStartRow() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startRow = 0
	return nil
}

func (m *memoryState) BeginRun(context.Context, string, time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	return nil
}

func (m *memoryState) FinishRun(context.Context, string, int, int, error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished++
	return nil
}

// captureNotifier records delivered alerts.
type captureNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *captureNotifier) Notify(_ context.Context, _, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return nil
}

func eligibleRecord(row int) *inventory.Record {
	return &inventory.Record{
		Row:                 row,
		OrdenCompra:         fmt.Sprintf("PO-%d", row),
		OrdenStatus:         inventory.StatusComprado,
		AutoMarca:           "Nissan",
		AutoSubmarcaVersion: "Versa",
		AutoAno:             "2021",
		UltimaModificacion:  time.Now(),
	}
}

func newEngine(t *testing.T, source inventory.Source, opts ...lotsync.Option) lotsync.Lotsync {
	t.Helper()
	base := []lotsync.Option{
		lotsync.WithSource(source),
		lotsync.WithAPI(newStubAPI()),
		lotsync.WithDelay(0),
	}
	engine, err := lotsync.New(append(base, opts...)...)
	require.NoError(t, err)
	return engine
}

func TestSyncProcessesEligibleRecords(t *testing.T) {
	source := newMemorySource(eligibleRecord(2), eligibleRecord(3))
	engine := newEngine(t, source)

	result, err := engine.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Created)
	assert.Zero(t, result.Failed)
	assert.Zero(t, result.NextRow)
	assert.NotEmpty(t, result.RunID)

	assert.Contains(t, source.statuses[2], "Publicado")
	assert.Contains(t, source.statuses[3], "Publicado")
	assert.NotZero(t, source.synced[2])
	assert.Equal(t, 1, source.flushed)
}

func TestSyncSkipsIneligibleRecords(t *testing.T) {
	stale := eligibleRecord(2)
	stale.LastSyncTime = time.Now().Add(time.Hour)

	source := newMemorySource(stale, eligibleRecord(3))
	engine := newEngine(t, source)

	result, err := engine.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.NotContains(t, source.statuses, 2)
}

func TestSyncTrashesRetiredRecord(t *testing.T) {
	retired := eligibleRecord(2)
	retired.OrdenStatus = inventory.StatusHistorico
	retired.PostID = 77
	source := newMemorySource(retired)
	api := newStubAPI()
	engine := newEngine(t, source, lotsync.WithAPI(api))

	result, err := engine.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Trashed)
	assert.Equal(t, []int{77}, api.trashed)
	assert.Contains(t, source.statuses[2], "Retirado")
}

func TestSyncZeroRecordsIsSuccess(t *testing.T) {
	engine := newEngine(t, newMemorySource())

	result, err := engine.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Processed)
	assert.Contains(t, result.Summary(), "processed 0 record(s)")
}

func TestSyncHonorsBatchCap(t *testing.T) {
	source := newMemorySource(eligibleRecord(2), eligibleRecord(3), eligibleRecord(4))
	engine := newEngine(t, source)

	result, err := engine.Sync(context.Background(), syncx.WithBatchSize(2))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 4, result.NextRow, "checkpoint points at the first unprocessed row")
}

func TestSyncManualModePersistsCheckpoint(t *testing.T) {
	source := newMemorySource(eligibleRecord(2), eligibleRecord(3), eligibleRecord(4))
	state := &memoryState{}
	engine := newEngine(t, source, lotsync.WithStateStore(state))

	result, err := engine.Sync(context.Background(), syncx.WithManualStart(0), syncx.WithBatchSize(1))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 3, state.startRow, "cap in manual mode persists the next row")

	// The next manual run resumes from the stored row.
	result, err = engine.Sync(context.Background(), syncx.WithManualStart(0), syncx.WithBatchSize(10))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Zero(t, state.startRow, "reaching the end clears the checkpoint")
}

func TestSyncManualModeBypassesTimestampCheck(t *testing.T) {
	stale := eligibleRecord(2)
	stale.LastSyncTime = time.Now().Add(time.Hour)
	source := newMemorySource(stale)
	engine := newEngine(t, source)

	result, err := engine.Sync(context.Background(), syncx.WithManualStart(2))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
}

func TestSyncRunFailureNotifies(t *testing.T) {
	source := newMemorySource()
	source.loadErr = assert.AnError
	notifier := &captureNotifier{}
	engine := newEngine(t, source, lotsync.WithNotifier(notifier))

	_, err := engine.Sync(context.Background())
	require.Error(t, err)

	var runErr *errors.RunError
	require.ErrorAs(t, err, &runErr)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], assert.AnError.Error())
}

func TestSyncRunFailureFansOutToAllNotifiers(t *testing.T) {
	source := newMemorySource()
	source.loadErr = assert.AnError
	first := &captureNotifier{}
	second := &captureNotifier{}
	engine := newEngine(t, source, lotsync.WithNotifier(first, second))

	_, err := engine.Sync(context.Background())
	require.Error(t, err)
	require.Len(t, first.messages, 1)
	require.Len(t, second.messages, 1)
	assert.Equal(t, first.messages, second.messages)
}

func TestSyncPerRecordFailureDoesNotStopBatch(t *testing.T) {
	bad := eligibleRecord(2)
	bad.OrdenCompra = " "
	source := newMemorySource(bad, eligibleRecord(3))
	notifier := &captureNotifier{}
	engine := newEngine(t, source, lotsync.WithNotifier(notifier))

	result, err := engine.Sync(context.Background())
	require.NoError(t, err, "a per-record failure is not a run failure")

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Created)
	assert.Contains(t, source.statuses[2], "Error:")
	assert.NotZero(t, source.synced[3])
	assert.Zero(t, source.synced[2], "failed row keeps its timestamp for retry")
	assert.Empty(t, notifier.messages)
}

func TestSyncCancellationStopsBetweenRecords(t *testing.T) {
	source := newMemorySource(eligibleRecord(2), eligibleRecord(3))
	engine := newEngine(t, source)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.Sync(ctx, syncx.WithDelay(time.Millisecond))
	require.Error(t, err)
	assert.LessOrEqual(t, result.Processed, 1, "cancellation is honored between records")
}

func TestNewRequiresSource(t *testing.T) {
	_, err := lotsync.New(lotsync.WithAPI(newStubAPI()))
	assert.Error(t, err)
}

func TestNewRequiresBackendOrAPI(t *testing.T) {
	_, err := lotsync.New(lotsync.WithSource(newMemorySource()))
	assert.Error(t, err)
}
