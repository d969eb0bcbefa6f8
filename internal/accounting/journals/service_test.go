package journals

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contalibre/contalibre/internal/accounting/accounts"
	"github.com/contalibre/contalibre/internal/accounting/entrytypes"
	"github.com/contalibre/contalibre/internal/accounting/periods"
	"github.com/contalibre/contalibre/internal/accounting/shared"
	internalShared "github.com/contalibre/contalibre/internal/shared"
	_ "github.com/contalibre/contalibre/testing"
)

type fakeJournalRepo struct {
	mu      sync.Mutex
	entries map[int64]JournalEntry
	seqs    map[string]int64
	nextID  int64
}

func newFakeJournalRepo() *fakeJournalRepo {
	return &fakeJournalRepo{entries: make(map[int64]JournalEntry), seqs: make(map[string]int64), nextID: 1}
}

func (f *fakeJournalRepo) Get(ctx context.Context, companyID, id int64) (JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok || e.CompanyID != companyID {
		return JournalEntry{}, shared.ErrEntryNotFound
	}
	return e, nil
}

func (f *fakeJournalRepo) List(ctx context.Context, companyID int64, filter ListFilter) ([]JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []JournalEntry
	for _, e := range f.entries {
		if e.CompanyID != companyID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeJournalRepo) ListPendingVoids(ctx context.Context, companyID int64) ([]JournalEntry, error) {
	return f.List(ctx, companyID, ListFilter{Status: StatusPendingVoid})
}

// WithTx holds the repo mutex for the whole callback, mirroring the
// serialization the row locks provide in postgres.
func (f *fakeJournalRepo) WithTx(ctx context.Context, fn func(tx TxRepository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(&fakeJournalTx{repo: f})
}

type fakeJournalTx struct {
	repo *fakeJournalRepo
}

func (t *fakeJournalTx) GetForUpdate(ctx context.Context, companyID, id int64) (JournalEntry, error) {
	e, ok := t.repo.entries[id]
	if !ok || e.CompanyID != companyID {
		return JournalEntry{}, shared.ErrEntryNotFound
	}
	return e, nil
}

func (t *fakeJournalTx) Insert(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	entry.ID = t.repo.nextID
	t.repo.nextID++
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	t.repo.entries[entry.ID] = entry
	return entry, nil
}

func (t *fakeJournalTx) Update(ctx context.Context, entry JournalEntry) error {
	if _, ok := t.repo.entries[entry.ID]; !ok {
		return shared.ErrEntryNotFound
	}
	entry.UpdatedAt = time.Now()
	t.repo.entries[entry.ID] = entry
	return nil
}

func (t *fakeJournalTx) ReplaceLines(ctx context.Context, entryID int64, lines []JournalEntryLine) error {
	e, ok := t.repo.entries[entryID]
	if !ok {
		return shared.ErrEntryNotFound
	}
	e.Lines = lines
	t.repo.entries[entryID] = e
	return nil
}

func (t *fakeJournalTx) Delete(ctx context.Context, companyID, id int64) error {
	delete(t.repo.entries, id)
	return nil
}

func (t *fakeJournalTx) NextSequence(ctx context.Context, companyID int64, scope string) (int64, error) {
	t.repo.seqs[scope]++
	return t.repo.seqs[scope], nil
}

type fakeGuard struct {
	accounts map[int64]accounts.Account
}

func (f *fakeGuard) RequireDetail(ctx context.Context, companyID, accountID int64) (accounts.Account, error) {
	a, ok := f.accounts[accountID]
	if !ok {
		return accounts.Account{}, shared.ErrAccountNotFound
	}
	if !a.Active {
		return accounts.Account{}, shared.ErrAccountInactive
	}
	if !a.IsDetail {
		return accounts.Account{}, shared.ErrNotDetailAccount
	}
	return a, nil
}

type fakeGate struct {
	periods []periods.Period
}

func (f *fakeGate) PeriodForDate(ctx context.Context, companyID int64, date time.Time) (periods.Period, error) {
	for _, p := range f.periods {
		if p.Covers(date) {
			return p, nil
		}
	}
	return periods.Period{}, shared.ErrPeriodNotFound
}

type fakeCatalog struct {
	codes map[string]entrytypes.EntryType
}

func (f *fakeCatalog) Resolve(ctx context.Context, companyID int64, code string) (entrytypes.EntryType, error) {
	t, ok := f.codes[code]
	if !ok {
		return entrytypes.EntryType{}, shared.ErrUnknownEntryType
	}
	return t, nil
}

type fakeMetrics struct {
	mu     sync.Mutex
	posted int
	voided int
}

func (f *fakeMetrics) EntryPosted() { f.mu.Lock(); f.posted++; f.mu.Unlock() }
func (f *fakeMetrics) EntryVoided() { f.mu.Lock(); f.voided++; f.mu.Unlock() }

type fakeReportCache struct {
	mu        sync.Mutex
	companies []int64
}

func (f *fakeReportCache) Invalidate(ctx context.Context, companyID int64) error {
	f.mu.Lock()
	f.companies = append(f.companies, companyID)
	f.mu.Unlock()
	return nil
}

type fakeAudit struct {
	mu   sync.Mutex
	logs []internalShared.AuditLog
}

func (f *fakeAudit) Record(ctx context.Context, log internalShared.AuditLog) error {
	f.mu.Lock()
	f.logs = append(f.logs, log)
	f.mu.Unlock()
	return nil
}

type env struct {
	repo    *fakeJournalRepo
	guard   *fakeGuard
	gate    *fakeGate
	metrics *fakeMetrics
	audit   *fakeAudit
	cache   *fakeReportCache
	svc     *Service
}

var (
	actor      = internalShared.Actor{CompanyID: 7, UserID: 42, Role: internalShared.RoleUser}
	adminActor = internalShared.Actor{CompanyID: 7, UserID: 99, Role: internalShared.RoleAdmin}
)

const (
	cashAccount    = int64(1)
	revenueAccount = int64(2)
	summaryAccount = int64(3)
)

func newEnv() *env {
	repo := newFakeJournalRepo()
	guard := &fakeGuard{accounts: map[int64]accounts.Account{
		cashAccount:    {ID: cashAccount, CompanyID: 7, Code: "1101", IsDetail: true, Active: true},
		revenueAccount: {ID: revenueAccount, CompanyID: 7, Code: "4101", IsDetail: true, Active: true},
		summaryAccount: {ID: summaryAccount, CompanyID: 7, Code: "1", IsDetail: false, Active: true},
	}}
	gate := &fakeGate{periods: []periods.Period{{
		ID: 1, CompanyID: 7, FiscalYear: 2026, PeriodNumber: 6,
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
	}}}
	catalog := &fakeCatalog{codes: map[string]entrytypes.EntryType{
		"DIARIO":  {ID: 1, CompanyID: 7, Code: "DIARIO", Active: true},
		"INGRESO": {ID: 2, CompanyID: 7, Code: "INGRESO", Active: true},
		"LEGACY":  {ID: 3, CompanyID: 7, Code: "LEGACY"},
	}}
	metrics := &fakeMetrics{}
	audit := &fakeAudit{}
	reportCache := &fakeReportCache{}
	svc := NewService(ServiceParams{
		Repo:        repo,
		Accounts:    guard,
		Periods:     gate,
		EntryTypes:  catalog,
		Audit:       audit,
		Metrics:     metrics,
		ReportCache: reportCache,
	})
	return &env{repo: repo, guard: guard, gate: gate, metrics: metrics, audit: audit, cache: reportCache, svc: svc}
}

func juneDate(day int) time.Time {
	return time.Date(2026, 6, day, 0, 0, 0, 0, time.UTC)
}

func balancedDraft(e *env, t *testing.T, amount float64) JournalEntry {
	t.Helper()
	entry, err := e.svc.CreateDraft(context.Background(), actor, CreateEntryRequest{
		EntryDate: juneDate(15),
		EntryType: "DIARIO",
		Lines: []EntryLineRequest{
			{AccountID: cashAccount, Debit: amount},
			{AccountID: revenueAccount, Credit: amount},
		},
	})
	require.NoError(t, err)
	return entry
}

func TestCreateDraftDropsBlankLinesAndValidatesFilledOnes(t *testing.T) {
	e := newEnv()

	entry, err := e.svc.CreateDraft(context.Background(), actor, CreateEntryRequest{
		EntryDate: juneDate(10),
		EntryType: "DIARIO",
		Lines: []EntryLineRequest{
			{},
			{AccountID: cashAccount, Debit: 100},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, entry.Status)
	require.Len(t, entry.Lines, 1)
	assert.Equal(t, 1, entry.Lines[0].LineNumber)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", entry.Reference.String())

	cases := []struct {
		name string
		line EntryLineRequest
		want error
	}{
		{"both sides", EntryLineRequest{AccountID: cashAccount, Debit: 10, Credit: 10}, shared.ErrLineBothSides},
		{"no side", EntryLineRequest{AccountID: cashAccount, Description: "x"}, shared.ErrLineNoSide},
		{"negative", EntryLineRequest{AccountID: cashAccount, Debit: -5}, shared.ErrLineNegative},
		{"missing account", EntryLineRequest{Debit: 5}, shared.ErrLineMissingAccount},
		{"summary account", EntryLineRequest{AccountID: summaryAccount, Debit: 5}, shared.ErrNotDetailAccount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.CreateDraft(context.Background(), actor, CreateEntryRequest{
				EntryDate: juneDate(10),
				EntryType: "DIARIO",
				Lines:     []EntryLineRequest{tc.line},
			})
			require.ErrorIs(t, err, tc.want)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}

	_, err = e.svc.CreateDraft(context.Background(), actor, CreateEntryRequest{
		EntryDate: juneDate(10),
		EntryType: "NOPE",
	})
	require.ErrorIs(t, err, shared.ErrUnknownEntryType)

	_, err = e.svc.CreateDraft(context.Background(), actor, CreateEntryRequest{
		EntryDate: juneDate(10),
		EntryType: "LEGACY",
	})
	require.ErrorIs(t, err, shared.ErrEntryTypeInactive)
}

func TestPostAssignsCompanyAndTypeSequences(t *testing.T) {
	e := newEnv()

	first := balancedDraft(e, t, 100)
	second, err := e.svc.CreateDraft(context.Background(), actor, CreateEntryRequest{
		EntryDate: juneDate(16),
		EntryType: "INGRESO",
		Lines: []EntryLineRequest{
			{AccountID: cashAccount, Debit: 50},
			{AccountID: revenueAccount, Credit: 50},
		},
	})
	require.NoError(t, err)

	posted1, err := e.svc.Post(context.Background(), actor, first.ID)
	require.NoError(t, err)
	posted2, err := e.svc.Post(context.Background(), actor, second.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusPosted, posted1.Status)
	require.NotNil(t, posted1.SequenceNumber)
	require.NotNil(t, posted2.SequenceNumber)
	assert.Equal(t, int64(1), *posted1.SequenceNumber)
	assert.Equal(t, int64(2), *posted2.SequenceNumber)
	require.NotNil(t, posted1.TypeNumber)
	require.NotNil(t, posted2.TypeNumber)
	assert.Equal(t, int64(1), *posted1.TypeNumber)
	assert.Equal(t, int64(1), *posted2.TypeNumber)
	require.NotNil(t, posted1.PostedAt)
	assert.Equal(t, 2, e.metrics.posted)
}

func TestPostValidatesBalanceAndTotal(t *testing.T) {
	e := newEnv()

	unbalanced, err := e.svc.CreateDraft(context.Background(), actor, CreateEntryRequest{
		EntryDate: juneDate(15),
		EntryType: "DIARIO",
		Lines: []EntryLineRequest{
			{AccountID: cashAccount, Debit: 100},
			{AccountID: revenueAccount, Credit: 60},
		},
	})
	require.NoError(t, err)
	_, err = e.svc.Post(context.Background(), actor, unbalanced.ID)
	require.ErrorIs(t, err, shared.ErrUnbalanced)

	empty, err := e.svc.CreateDraft(context.Background(), actor, CreateEntryRequest{
		EntryDate: juneDate(15),
		EntryType: "DIARIO",
	})
	require.NoError(t, err)
	_, err = e.svc.Post(context.Background(), actor, empty.ID)
	require.ErrorIs(t, err, shared.ErrNoLines)

	negligible := balancedDraft(e, t, 0.004)
	_, err = e.svc.Post(context.Background(), actor, negligible.ID)
	require.ErrorIs(t, err, shared.ErrZeroTotal)

	// Nothing posted, so no sequence was spent.
	good := balancedDraft(e, t, 100)
	posted, err := e.svc.Post(context.Background(), actor, good.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), *posted.SequenceNumber)
}

func TestPostGatesOnPeriod(t *testing.T) {
	e := newEnv()

	outside, err := e.svc.CreateDraft(context.Background(), actor, CreateEntryRequest{
		EntryDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		EntryType: "DIARIO",
		Lines: []EntryLineRequest{
			{AccountID: cashAccount, Debit: 10},
			{AccountID: revenueAccount, Credit: 10},
		},
	})
	require.NoError(t, err)
	_, err = e.svc.Post(context.Background(), actor, outside.ID)
	require.ErrorIs(t, err, shared.ErrNoPeriodForDate)

	e.gate.periods[0].IsClosed = true
	inside := balancedDraft(e, t, 10)
	_, err = e.svc.Post(context.Background(), actor, inside.ID)
	require.ErrorIs(t, err, shared.ErrPeriodClosed)
}

func TestPostIsNotIdempotent(t *testing.T) {
	e := newEnv()

	entry := balancedDraft(e, t, 100)
	_, err := e.svc.Post(context.Background(), actor, entry.ID)
	require.NoError(t, err)
	_, err = e.svc.Post(context.Background(), actor, entry.ID)
	require.ErrorIs(t, err, shared.ErrNotDraft)
	require.ErrorIs(t, err, shared.ErrInvalidState)

	next := balancedDraft(e, t, 50)
	posted, err := e.svc.Post(context.Background(), actor, next.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), *posted.SequenceNumber)
}

func TestUpdateAndDeleteRequireDraft(t *testing.T) {
	e := newEnv()

	entry := balancedDraft(e, t, 100)
	updated, err := e.svc.UpdateDraft(context.Background(), actor, entry.ID, UpdateEntryRequest{
		EntryDate:   juneDate(20),
		EntryType:   "DIARIO",
		EntryNumber: "JE-077",
		Lines: []EntryLineRequest{
			{AccountID: cashAccount, Debit: 200},
			{AccountID: revenueAccount, Credit: 200},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "JE-077", updated.EntryNumber)
	require.Len(t, updated.Lines, 2)
	assert.Equal(t, 200.0, updated.Lines[0].Debit)

	_, err = e.svc.Post(context.Background(), actor, entry.ID)
	require.NoError(t, err)

	_, err = e.svc.UpdateDraft(context.Background(), actor, entry.ID, UpdateEntryRequest{
		EntryDate: juneDate(21), EntryType: "DIARIO",
	})
	require.ErrorIs(t, err, shared.ErrNotDraft)
	err = e.svc.DeleteDraft(context.Background(), actor, entry.ID)
	require.ErrorIs(t, err, shared.ErrNotDraft)

	draft := balancedDraft(e, t, 10)
	require.NoError(t, e.svc.DeleteDraft(context.Background(), actor, draft.ID))
	_, err = e.svc.Get(context.Background(), actor.CompanyID, draft.ID)
	require.ErrorIs(t, err, shared.ErrEntryNotFound)
}

func TestVoidWorkflow(t *testing.T) {
	e := newEnv()

	entry := balancedDraft(e, t, 100)

	_, err := e.svc.RequestVoid(context.Background(), actor, entry.ID, "a justified and long enough reason")
	require.ErrorIs(t, err, shared.ErrNotPosted)

	_, err = e.svc.Post(context.Background(), actor, entry.ID)
	require.NoError(t, err)

	_, err = e.svc.RequestVoid(context.Background(), actor, entry.ID, "short")
	require.ErrorIs(t, err, shared.ErrVoidReasonTooShort)

	// Nine characters in ten bytes: the minimum counts runes.
	_, err = e.svc.RequestVoid(context.Background(), actor, entry.ID, "Reversión")
	require.ErrorIs(t, err, shared.ErrVoidReasonTooShort)

	// Voiding stays available even when the period has been closed.
	e.gate.periods[0].IsClosed = true
	pending, err := e.svc.RequestVoid(context.Background(), actor, entry.ID, "duplicate of entry JE-12")
	require.NoError(t, err)
	assert.Equal(t, StatusPendingVoid, pending.Status)
	require.NotNil(t, pending.VoidRequestedBy)
	assert.Equal(t, actor.UserID, *pending.VoidRequestedBy)

	queue, err := e.svc.ListPendingVoids(context.Background(), actor.CompanyID)
	require.NoError(t, err)
	require.Len(t, queue, 1)

	_, err = e.svc.AuthorizeVoid(context.Background(), actor, entry.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	voided, err := e.svc.AuthorizeVoid(context.Background(), adminActor, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusVoid, voided.Status)
	require.NotNil(t, voided.VoidAuthorizedBy)
	assert.Equal(t, adminActor.UserID, *voided.VoidAuthorizedBy)
	require.NotNil(t, voided.SequenceNumber)

	_, err = e.svc.AuthorizeVoid(context.Background(), adminActor, entry.ID)
	require.ErrorIs(t, err, shared.ErrNotPendingVoid)
	assert.Equal(t, 1, e.metrics.voided)

	// Voided entries stay retrievable by id.
	got, err := e.svc.Get(context.Background(), actor.CompanyID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusVoid, got.Status)
}

func TestLedgerChangesDropCachedReports(t *testing.T) {
	e := newEnv()

	entry := balancedDraft(e, t, 100)
	assert.Empty(t, e.cache.companies)

	_, err := e.svc.Post(context.Background(), actor, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{actor.CompanyID}, e.cache.companies)

	// A failed post and a pending void request leave balances as they
	// were, so no cached report is dropped.
	_, err = e.svc.Post(context.Background(), actor, entry.ID)
	require.ErrorIs(t, err, shared.ErrNotDraft)
	_, err = e.svc.RequestVoid(context.Background(), actor, entry.ID, "duplicate of entry JE-12")
	require.NoError(t, err)
	assert.Len(t, e.cache.companies, 1)

	_, err = e.svc.AuthorizeVoid(context.Background(), adminActor, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{actor.CompanyID, actor.CompanyID}, e.cache.companies)
}

func TestConcurrentPostingAssignsUniqueSequences(t *testing.T) {
	e := newEnv()
	const n = 20

	ids := make([]int64, n)
	for i := range ids {
		ids[i] = balancedDraft(e, t, 100).ID
	}

	var wg sync.WaitGroup
	results := make(chan int64, n)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			posted, err := e.svc.Post(context.Background(), actor, id)
			if err == nil && posted.SequenceNumber != nil {
				results <- *posted.SequenceNumber
			}
		}(id)
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for seq := range results {
		assert.False(t, seen[seq], "sequence %d assigned twice", seq)
		seen[seq] = true
	}
	require.Len(t, seen, n)
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], "sequence %d missing", i)
	}
}
