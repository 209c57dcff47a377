package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satenders/tender-indexer/internal/adapter"
	"github.com/satenders/tender-indexer/internal/domain"
	"github.com/satenders/tender-indexer/internal/ingest"
	"github.com/satenders/tender-indexer/internal/logger"
	"github.com/satenders/tender-indexer/internal/mocks"
	"github.com/satenders/tender-indexer/internal/normalizer"
	"github.com/satenders/tender-indexer/internal/store"
	"github.com/satenders/tender-indexer/internal/textparse"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testWorkerMocks contains all the mocks needed for testing the worker
type testWorkerMocks struct {
	ctrl        *gomock.Controller
	natsConn    *mocks.MockNatsConn
	js          *mocks.MockJetStream
	objectStore *mocks.MockObjectStore
	store       *mocks.MockStore
	publisher   *mocks.MockPublisher
	worker      ingest.Worker
}

// setupTestWorker creates the worker under test with a real normalizer
// registry and mocked I/O
func setupTestWorker(t *testing.T) *testWorkerMocks {
	ctrl := gomock.NewController(t)

	tm := &testWorkerMocks{
		ctrl:        ctrl,
		natsConn:    mocks.NewMockNatsConn(ctrl),
		js:          mocks.NewMockJetStream(ctrl),
		objectStore: mocks.NewMockObjectStore(ctrl),
		store:       mocks.NewMockStore(ctrl),
		publisher:   mocks.NewMockPublisher(ctrl),
	}

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(tm.natsConn, tm.js, nil)

	registry := normalizer.NewRegistry(textparse.LocationFromOffset("+02:00"), adapter.NewJSON(), adapter.NewJCS())

	w, err := ingest.NewWorker(ingest.Config{
		URL:          "nats://localhost:4222",
		StreamName:   "OBJECTS",
		ConsumerName: "ingest-worker",
	}, natsJS, tm.objectStore, tm.store, tm.publisher, registry, adapter.NewJSON())
	require.NoError(t, err)

	tm.worker = w
	return tm
}

func (tm *testWorkerMocks) cleanup() {
	tm.ctrl.Finish()
}

// newEventMessage builds a mock queue message carrying one native
// object-created event
func newEventMessage(tm *testWorkerMocks, bucket, key string) *mocks.MockJetStreamMessage {
	msg := mocks.NewMockJetStreamMessage(tm.ctrl)
	msg.EXPECT().Metadata().Return(nil, nil).AnyTimes()
	msg.EXPECT().Subject().Return("objects.created."+bucket).AnyTimes()
	msg.EXPECT().Data().Return([]byte(fmt.Sprintf(`{"bucket":%q,"key":%q}`, bucket, key))).AnyTimes()
	return msg
}

const eskomPayload = `[{
	"TenderID": "T-100",
	"title": "Substation refurbishment",
	"scopeDetails": "Replace switchgear",
	"published": "2025-Oct-01 09:00:00",
	"closing": "2025-Nov-15 12:00:00"
}]`

func TestHandleMessageUpsertsAndPublishes(t *testing.T) {
	tm := setupTestWorker(t)
	defer tm.cleanup()

	msg := newEventMessage(tm, "raw-tenders", "eskom/eskom-2025-10-01.json")

	tm.objectStore.EXPECT().
		GetObject(gomock.Any(), "raw-tenders", "eskom/eskom-2025-10-01.json").
		Return([]byte(eskomPayload), nil)

	tm.store.EXPECT().
		UpsertTenderBatch(gomock.Any(), domain.SourceEskom, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Source, items []domain.Item) ([]store.UpsertResult, error) {
			require.Len(t, items, 1)
			assert.Equal(t, "T-100", items[0].Tender.ExternalID)
			return []store.UpsertResult{{TenderID: 42, Item: items[0]}}, nil
		})

	tm.publisher.EXPECT().
		PublishTenderNotification(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *domain.TenderNotification) error {
			assert.Equal(t, int64(42), n.TenderID)
			assert.Equal(t, "eskom", n.Source)
			assert.Equal(t, "Substation refurbishment", n.Title)
			assert.NotEmpty(t, n.MessageID)
			return nil
		})

	msg.EXPECT().Ack().Return(nil)

	tm.worker.HandleMessage(context.Background(), msg)
}

func TestHandleMessageS3Envelope(t *testing.T) {
	tm := setupTestWorker(t)
	defer tm.cleanup()

	msg := mocks.NewMockJetStreamMessage(tm.ctrl)
	msg.EXPECT().Metadata().Return(nil, nil).AnyTimes()
	msg.EXPECT().Subject().Return("objects.created.raw-tenders").AnyTimes()
	msg.EXPECT().Data().Return([]byte(`{
		"Records": [
			{"s3": {"bucket": {"name": "raw-tenders"}, "object": {"key": "eskom/a.json"}}},
			{"s3": {"bucket": {"name": "raw-tenders"}, "object": {"key": "eskom/b.json"}}}
		]
	}`)).AnyTimes()

	tm.objectStore.EXPECT().
		GetObject(gomock.Any(), "raw-tenders", "eskom/a.json").
		Return([]byte(eskomPayload), nil)
	tm.objectStore.EXPECT().
		GetObject(gomock.Any(), "raw-tenders", "eskom/b.json").
		Return([]byte(`[]`), nil)

	tm.store.EXPECT().
		UpsertTenderBatch(gomock.Any(), domain.SourceEskom, gomock.Any()).
		Return([]store.UpsertResult{}, nil)

	msg.EXPECT().Ack().Return(nil)

	tm.worker.HandleMessage(context.Background(), msg)
}

func TestHandleMessageTermsUnparseableEnvelope(t *testing.T) {
	tm := setupTestWorker(t)
	defer tm.cleanup()

	msg := mocks.NewMockJetStreamMessage(tm.ctrl)
	msg.EXPECT().Subject().Return("objects.created.raw-tenders").AnyTimes()
	msg.EXPECT().Metadata().Return(nil, nil).AnyTimes()
	msg.EXPECT().Data().Return([]byte(`not json at all`)).AnyTimes()

	// Poison messages are terminated, never redelivered
	msg.EXPECT().Term().Return(nil)

	tm.worker.HandleMessage(context.Background(), msg)
}

func TestHandleMessageTermsEventMissingKey(t *testing.T) {
	tm := setupTestWorker(t)
	defer tm.cleanup()

	msg := mocks.NewMockJetStreamMessage(tm.ctrl)
	msg.EXPECT().Subject().Return("objects.created.raw-tenders").AnyTimes()
	msg.EXPECT().Metadata().Return(nil, nil).AnyTimes()
	msg.EXPECT().Data().Return([]byte(`{"bucket":"raw-tenders"}`)).AnyTimes()

	msg.EXPECT().Term().Return(nil)

	tm.worker.HandleMessage(context.Background(), msg)
}

func TestHandleMessageSkipsUnknownPrefix(t *testing.T) {
	tm := setupTestWorker(t)
	defer tm.cleanup()

	msg := newEventMessage(tm, "raw-tenders", "sita/sita-2025.json")

	// No object fetch, no upsert; the event is skipped and the message acked
	msg.EXPECT().Ack().Return(nil)

	tm.worker.HandleMessage(context.Background(), msg)
}

func TestHandleMessageNaksOnObjectFetchError(t *testing.T) {
	tm := setupTestWorker(t)
	defer tm.cleanup()

	msg := newEventMessage(tm, "raw-tenders", "eskom/eskom-2025.json")

	tm.objectStore.EXPECT().
		GetObject(gomock.Any(), "raw-tenders", "eskom/eskom-2025.json").
		Return(nil, errors.New("connection reset"))

	// Transient failure; redeliver
	msg.EXPECT().Nak().Return(nil)

	tm.worker.HandleMessage(context.Background(), msg)
}

func TestHandleMessageNaksOnStoreError(t *testing.T) {
	tm := setupTestWorker(t)
	defer tm.cleanup()

	msg := newEventMessage(tm, "raw-tenders", "eskom/eskom-2025.json")

	tm.objectStore.EXPECT().
		GetObject(gomock.Any(), "raw-tenders", "eskom/eskom-2025.json").
		Return([]byte(eskomPayload), nil)

	tm.store.EXPECT().
		UpsertTenderBatch(gomock.Any(), domain.SourceEskom, gomock.Any()).
		Return(nil, errors.New("deadlock detected"))

	msg.EXPECT().Nak().Return(nil)

	tm.worker.HandleMessage(context.Background(), msg)
}

func TestHandleMessageSkipsMalformedObject(t *testing.T) {
	tm := setupTestWorker(t)
	defer tm.cleanup()

	msg := newEventMessage(tm, "raw-tenders", "eskom/eskom-2025.json")

	tm.objectStore.EXPECT().
		GetObject(gomock.Any(), "raw-tenders", "eskom/eskom-2025.json").
		Return([]byte(`<html>error page</html>`), nil)

	// Malformed content cannot improve on redelivery; ack and move on
	msg.EXPECT().Ack().Return(nil)

	tm.worker.HandleMessage(context.Background(), msg)
}

func TestHandleMessagePublishFailureStillAcks(t *testing.T) {
	tm := setupTestWorker(t)
	defer tm.cleanup()

	msg := newEventMessage(tm, "raw-tenders", "eskom/eskom-2025.json")

	tm.objectStore.EXPECT().
		GetObject(gomock.Any(), "raw-tenders", "eskom/eskom-2025.json").
		Return([]byte(eskomPayload), nil)

	tm.store.EXPECT().
		UpsertTenderBatch(gomock.Any(), domain.SourceEskom, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Source, items []domain.Item) ([]store.UpsertResult, error) {
			return []store.UpsertResult{{TenderID: 7, Item: items[0]}}, nil
		})

	tm.publisher.EXPECT().
		PublishTenderNotification(gomock.Any(), gomock.Any()).
		Return(errors.New("stream unavailable"))

	// Rows are committed; notification loss must not trigger redelivery
	msg.EXPECT().Ack().Return(nil)

	tm.worker.HandleMessage(context.Background(), msg)
}

func TestHandleMessageBatchesLargePayloads(t *testing.T) {
	tm := setupTestWorker(t)
	defer tm.cleanup()

	records := make([]string, 0, 250)
	for i := 0; i < 250; i++ {
		records = append(records, fmt.Sprintf(`{"TenderID":"T-%d","title":"Tender %d"}`, i, i))
	}
	payload := "[" + joinRecords(records) + "]"

	msg := newEventMessage(tm, "raw-tenders", "eskom/eskom-bulk.json")

	tm.objectStore.EXPECT().
		GetObject(gomock.Any(), "raw-tenders", "eskom/eskom-bulk.json").
		Return([]byte(payload), nil)

	var batchSizes []int
	tm.store.EXPECT().
		UpsertTenderBatch(gomock.Any(), domain.SourceEskom, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Source, items []domain.Item) ([]store.UpsertResult, error) {
			batchSizes = append(batchSizes, len(items))
			return []store.UpsertResult{}, nil
		}).
		Times(3)

	msg.EXPECT().Ack().Return(nil)

	tm.worker.HandleMessage(context.Background(), msg)

	assert.Equal(t, []int{100, 100, 50}, batchSizes)
}

func joinRecords(records []string) string {
	out := ""
	for i, r := range records {
		if i > 0 {
			out += ","
		}
		out += r
	}
	return out
}

func TestWorkerClose(t *testing.T) {
	tm := setupTestWorker(t)
	defer tm.cleanup()

	tm.natsConn.EXPECT().Close()
	tm.worker.Close()
}
