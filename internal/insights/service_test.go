package insights

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/spendsense/internal/config"
	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/gcs"
	"github.com/dvloznov/spendsense/internal/jobs"
	"github.com/dvloznov/spendsense/internal/ledger"
	"github.com/dvloznov/spendsense/internal/persona"
	"github.com/dvloznov/spendsense/internal/whatif"
)

var fixedNow = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

// mockSource is a ledger.Source backed by a function.
type mockSource struct {
	LoadFunc func(ctx context.Context, userID string) (ledger.Snapshot, error)
}

func (m *mockSource) Load(ctx context.Context, userID string) (ledger.Snapshot, error) {
	return m.LoadFunc(ctx, userID)
}

// mockPublisher records published archive jobs.
type mockPublisher struct {
	PublishFunc func(ctx context.Context, job *jobs.ArchiveExportJob) error
	published   []*jobs.ArchiveExportJob
}

func (m *mockPublisher) PublishArchiveExport(ctx context.Context, job *jobs.ArchiveExportJob) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, job); err != nil {
			return err
		}
	}
	if job.JobID == "" {
		job.JobID = "job-1"
	}
	m.published = append(m.published, job)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

// memStore is an in-memory gcs.ObjectStore.
type memStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	WriteErr error
}

func (m *memStore) Read(_ context.Context, uri string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[uri]
	if !ok {
		return nil, gcs.ErrObjectNotFound
	}
	return data, nil
}

func (m *memStore) Write(_ context.Context, uri string, data []byte, _ string) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[uri] = data
	return nil
}

func d(s string) civil.Date {
	date, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return date
}

func cardholderSnapshot() ledger.Snapshot {
	return ledger.Snapshot{
		Accounts: []domain.Account{
			{AccountID: "acc_chk", UserID: "user_001", Type: domain.AccountTypeChecking, BalanceCurrent: 2400},
			{AccountID: "acc_cc", UserID: "user_001", Type: domain.AccountTypeCreditCard, BalanceCurrent: 3000, BalanceLimit: domain.Float(5000)},
		},
		Transactions: []domain.Transaction{
			{TransactionID: "t1", AccountID: "acc_chk", Date: d("2025-06-27"), Amount: 15.99, MerchantName: "Netflix"},
			{TransactionID: "t2", AccountID: "acc_chk", Date: d("2025-05-28"), Amount: 15.99, MerchantName: "Netflix"},
			{TransactionID: "t3", AccountID: "acc_chk", Date: d("2025-04-28"), Amount: 15.99, MerchantName: "Netflix"},
		},
		Liabilities: []domain.Liability{
			{AccountID: "acc_cc", UserID: "user_001", Type: "credit card", APRPercentage: 24.99, MinimumPaymentAmount: domain.Float(100)},
		},
	}
}

func newTestService(opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(ledger.NewMemorySource(cardholderSnapshot()), 0, zerolog.New(io.Discard), opts...)
}

func TestService_Signals(t *testing.T) {
	svc := newTestService()

	b, err := svc.Signals(context.Background(), "user_001")
	require.NoError(t, err)

	assert.Equal(t, "user_001", b.UserID)
	assert.Equal(t, 180, b.WindowDays)
	assert.Equal(t, fixedNow, b.DetectedAt)
	assert.InDelta(t, 60.0, b.Credit.MaxUtilization, 1e-9)
	assert.Equal(t, 1, b.Subscriptions.NumRecurringMerchants)
}

func TestService_UnknownUser(t *testing.T) {
	svc := newTestService()

	_, err := svc.Signals(context.Background(), "user_404")
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)

	_, err = svc.Persona(context.Background(), "user_404")
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)
}

func TestService_SourceError(t *testing.T) {
	boom := errors.New("warehouse unavailable")
	svc := NewService(&mockSource{
		LoadFunc: func(ctx context.Context, userID string) (ledger.Snapshot, error) {
			return ledger.Snapshot{}, boom
		},
	}, 90, zerolog.New(io.Discard))

	_, err := svc.RunScenario(context.Background(), "user_001", whatif.ScenarioSpec{Type: whatif.ScenarioIncreasedSavings, Amount: 100})
	assert.ErrorIs(t, err, boom)
}

func TestService_Persona(t *testing.T) {
	svc := newTestService()

	report, err := svc.Persona(context.Background(), "user_001")
	require.NoError(t, err)

	assert.Equal(t, "user_001", report.UserID)
	assert.Equal(t, persona.HighUtilization, report.Assignment.PrimaryPersona)
	assert.NotEmpty(t, report.Assignment.Rationale)
}

func TestService_RunScenario(t *testing.T) {
	svc := newTestService()

	res, err := svc.RunScenario(context.Background(), "user_001", whatif.ScenarioSpec{
		Type:      whatif.ScenarioExtraCreditPayment,
		AccountID: "acc_cc",
		Amount:    200,
	})
	require.NoError(t, err)

	extra, ok := res.(*whatif.ExtraPaymentResult)
	require.True(t, ok)
	assert.InDelta(t, 1356.28, extra.Savings.InterestSaved, 0.01)

	_, err = svc.RunScenario(context.Background(), "user_001", whatif.ScenarioSpec{
		Type:      whatif.ScenarioExtraCreditPayment,
		AccountID: "acc_missing",
		Amount:    200,
	})
	assert.ErrorIs(t, err, whatif.ErrNotFound)
}

func TestService_Compare(t *testing.T) {
	svc := newTestService()

	cmp, err := svc.Compare(context.Background(), "user_001",
		whatif.ScenarioSpec{Type: whatif.ScenarioExtraCreditPayment, AccountID: "acc_cc", Amount: 50},
		whatif.ScenarioSpec{Type: whatif.ScenarioExtraCreditPayment, AccountID: "acc_cc", Amount: 200},
	)
	require.NoError(t, err)
	assert.True(t, cmp.SameType)
	assert.Equal(t, whatif.LabelB, cmp.BetterScenario)

	_, err = svc.Compare(context.Background(), "user_001",
		whatif.ScenarioSpec{Type: whatif.ScenarioIncreasedSavings, Amount: 100},
		whatif.ScenarioSpec{Type: "lottery"},
	)
	assert.ErrorIs(t, err, whatif.ErrInvalidInput)
}

func TestService_ExportScenario_NoArchive(t *testing.T) {
	svc := newTestService()

	exp, err := svc.ExportScenario(context.Background(), "user_001", whatif.ScenarioSpec{
		Type:   whatif.ScenarioIncreasedSavings,
		Amount: 250,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, exp.ExportID)
	assert.Equal(t, "user_001", exp.UserID)
	assert.Equal(t, fixedNow, exp.ExportedAt)
	assert.Empty(t, exp.ArchiveURI)
	assert.Empty(t, exp.ArchiveJobID)

	data, err := json.Marshal(exp)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	scenario, ok := decoded["scenario"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(whatif.ScenarioIncreasedSavings), scenario["scenario_type"])
	assert.NotContains(t, decoded, "archive_job_id")
}

func TestService_ExportScenario_Archive(t *testing.T) {
	pub := &mockPublisher{}
	svc := newTestService(WithArchive(pub, "gs://exports/archive", 3))

	exp, err := svc.ExportScenario(context.Background(), "user_001", whatif.ScenarioSpec{
		Type:          whatif.ScenarioSubscriptionCancellation,
		Subscriptions: []whatif.Subscription{{Name: "Netflix", Amount: 15.99}},
	})
	require.NoError(t, err)

	require.Len(t, pub.published, 1)
	job := pub.published[0]
	assert.Equal(t, "job-1", exp.ArchiveJobID)
	assert.Equal(t, "gs://exports/archive/user_001/"+exp.ExportID+".json", exp.ArchiveURI)
	assert.Equal(t, exp.ArchiveURI, job.DestinationURI)
	assert.Equal(t, exp.ExportID, job.ExportID)
	assert.Equal(t, 3, job.MaxRetries)

	var archived map[string]interface{}
	require.NoError(t, json.Unmarshal(job.Payload, &archived))
	assert.Equal(t, exp.ExportID, archived["export_id"])
	assert.NotContains(t, archived, "archive_job_id")
}

func TestService_ExportScenario_EnqueueFailureKeepsExport(t *testing.T) {
	pub := &mockPublisher{
		PublishFunc: func(ctx context.Context, job *jobs.ArchiveExportJob) error {
			return jobs.ErrQueueClosed
		},
	}
	svc := newTestService(WithArchive(pub, "gs://exports/archive", 3))

	exp, err := svc.ExportScenario(context.Background(), "user_001", whatif.ScenarioSpec{
		Type:   whatif.ScenarioIncreasedSavings,
		Amount: 100,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, exp.ExportID)
	assert.Empty(t, exp.ArchiveURI)
	assert.Empty(t, exp.ArchiveJobID)
}

func TestArchiveHandler(t *testing.T) {
	store := &memStore{}
	handler := ArchiveHandler(store)

	job := &jobs.ArchiveExportJob{
		JobID:          "j1",
		DestinationURI: "gs://exports/archive/user_001/e1.json",
		Payload:        []byte(`{"export_id":"e1"}`),
	}
	require.NoError(t, handler(context.Background(), job))

	data, err := store.Read(context.Background(), job.DestinationURI)
	require.NoError(t, err)
	assert.JSONEq(t, `{"export_id":"e1"}`, string(data))
}

func TestArchiveHandler_WriteError(t *testing.T) {
	boom := errors.New("permission denied")
	handler := ArchiveHandler(&memStore{WriteErr: boom})

	err := handler(context.Background(), &jobs.ArchiveExportJob{JobID: "j1", DestinationURI: "gs://b/o.json"})
	assert.ErrorIs(t, err, boom)
}

func TestOpenSource(t *testing.T) {
	ctx := context.Background()

	src, closeFn, err := OpenSource(ctx, config.LedgerConfig{Source: config.SourceFile, Path: "../ledger/testdata/sample.json"}, nil)
	require.NoError(t, err)
	require.NoError(t, closeFn())
	snap, err := src.Load(ctx, "user_002")
	require.NoError(t, err)
	assert.Len(t, snap.Accounts, 1)

	store := &memStore{}
	src, _, err = OpenSource(ctx, config.LedgerConfig{Source: config.SourceGCS, GCSPrefix: "gs://ledgers/users"}, store)
	require.NoError(t, err)
	_, err = src.Load(ctx, "user_001")
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)

	_, closeFn, err = OpenSource(ctx, config.LedgerConfig{Source: config.SourceGCS}, nil)
	assert.Error(t, err)
	assert.NotNil(t, closeFn)

	_, _, err = OpenSource(ctx, config.LedgerConfig{Source: "sqlite"}, nil)
	assert.Error(t, err)
}
