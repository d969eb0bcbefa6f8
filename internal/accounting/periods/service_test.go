package periods

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contalibre/contalibre/internal/accounting/shared"
	internalShared "github.com/contalibre/contalibre/internal/shared"
	_ "github.com/contalibre/contalibre/testing"
)

type fakePeriodRepo struct {
	periods map[int64]Period
	entries []time.Time
	nextID  int64
}

func newFakePeriodRepo() *fakePeriodRepo {
	return &fakePeriodRepo{periods: make(map[int64]Period), nextID: 1}
}

func (f *fakePeriodRepo) List(ctx context.Context, companyID int64) ([]Period, error) {
	var out []Period
	for _, p := range f.periods {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePeriodRepo) Get(ctx context.Context, companyID, id int64) (Period, error) {
	p, ok := f.periods[id]
	if !ok || p.CompanyID != companyID {
		return Period{}, shared.ErrPeriodNotFound
	}
	return p, nil
}

func (f *fakePeriodRepo) Insert(ctx context.Context, p Period) (Period, error) {
	p.ID = f.nextID
	f.nextID++
	f.periods[p.ID] = p
	return p, nil
}

func (f *fakePeriodRepo) InsertYear(ctx context.Context, periods []Period) error {
	for _, p := range periods {
		if _, err := f.Insert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakePeriodRepo) SetClosed(ctx context.Context, companyID, id int64, closed bool, closedBy int64, at time.Time) error {
	p, ok := f.periods[id]
	if !ok || p.CompanyID != companyID {
		return shared.ErrPeriodNotFound
	}
	p.IsClosed = closed
	if closed {
		p.ClosedAt = &at
		p.ClosedBy = &closedBy
	} else {
		p.ClosedAt = nil
		p.ClosedBy = nil
	}
	f.periods[id] = p
	return nil
}

func (f *fakePeriodRepo) Delete(ctx context.Context, companyID, id int64) error {
	if _, ok := f.periods[id]; !ok {
		return shared.ErrPeriodNotFound
	}
	delete(f.periods, id)
	return nil
}

func (f *fakePeriodRepo) ExistsForYear(ctx context.Context, companyID int64, year int) (bool, error) {
	for _, p := range f.periods {
		if p.CompanyID == companyID && p.FiscalYear == year {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePeriodRepo) Overlaps(ctx context.Context, companyID int64, start, end time.Time) (bool, error) {
	for _, p := range f.periods {
		if p.CompanyID == companyID && !p.StartDate.After(end) && !p.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePeriodRepo) HasEntriesInRange(ctx context.Context, companyID int64, start, end time.Time) (bool, error) {
	for _, d := range f.entries {
		if !d.Before(start) && !d.After(end) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePeriodRepo) ClosedForDate(ctx context.Context, companyID int64, date time.Time) (bool, error) {
	for _, p := range f.periods {
		if p.CompanyID == companyID && p.IsClosed && p.Covers(date) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePeriodRepo) PeriodForDate(ctx context.Context, companyID int64, date time.Time) (Period, error) {
	for _, p := range f.periods {
		if p.CompanyID == companyID && p.Covers(date) {
			return p, nil
		}
	}
	return Period{}, shared.ErrPeriodNotFound
}

type fakeAudit struct {
	logs []internalShared.AuditLog
}

func (f *fakeAudit) Record(ctx context.Context, log internalShared.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

var actor = internalShared.Actor{CompanyID: 7, UserID: 42, Role: internalShared.RoleAdmin}

func TestGenerateYearCreatesTwelveMonths(t *testing.T) {
	repo := newFakePeriodRepo()
	svc := NewService(repo, &fakeAudit{})

	periods, err := svc.GenerateYear(context.Background(), actor, 2026)
	require.NoError(t, err)
	require.Len(t, periods, 12)

	january, err := repo.PeriodForDate(context.Background(), actor.CompanyID, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "Enero 2026", january.PeriodName)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), january.StartDate)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), january.EndDate)

	february, err := repo.PeriodForDate(context.Background(), actor.CompanyID, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), february.EndDate)
}

func TestGenerateYearRejectsDuplicateYear(t *testing.T) {
	repo := newFakePeriodRepo()
	svc := NewService(repo, &fakeAudit{})

	_, err := svc.GenerateYear(context.Background(), actor, 2026)
	require.NoError(t, err)
	_, err = svc.GenerateYear(context.Background(), actor, 2026)
	require.ErrorIs(t, err, shared.ErrYearAlreadyExists)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestCreateRejectsOverlap(t *testing.T) {
	repo := newFakePeriodRepo()
	svc := NewService(repo, &fakeAudit{})

	_, err := svc.GenerateYear(context.Background(), actor, 2026)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), actor, CreatePeriodRequest{
		FiscalYear:   2026,
		PeriodNumber: 13,
		StartDate:    time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, shared.ErrPeriodOverlap)

	period, err := svc.Create(context.Background(), actor, CreatePeriodRequest{
		FiscalYear:   2027,
		PeriodNumber: 1,
		StartDate:    time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "Enero 2027", period.PeriodName)
	assert.Equal(t, PeriodTypeMonth, period.PeriodType)
}

func TestCloseAndReopenTogglePeriodLock(t *testing.T) {
	repo := newFakePeriodRepo()
	audit := &fakeAudit{}
	svc := NewService(repo, audit)
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { return now })

	_, err := svc.GenerateYear(context.Background(), actor, 2026)
	require.NoError(t, err)
	january, err := repo.PeriodForDate(context.Background(), actor.CompanyID, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	closed, err := svc.Close(context.Background(), actor, january.ID)
	require.NoError(t, err)
	assert.True(t, closed.IsClosed)
	require.NotNil(t, closed.ClosedAt)
	assert.Equal(t, now, *closed.ClosedAt)
	require.NotNil(t, closed.ClosedBy)
	assert.Equal(t, actor.UserID, *closed.ClosedBy)

	locked, err := svc.ClosedForDate(context.Background(), actor.CompanyID, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, locked)

	reopened, err := svc.Reopen(context.Background(), actor, january.ID)
	require.NoError(t, err)
	assert.False(t, reopened.IsClosed)
	assert.Nil(t, reopened.ClosedAt)
	assert.Nil(t, reopened.ClosedBy)

	var actions []string
	for _, log := range audit.logs {
		actions = append(actions, log.Action)
	}
	assert.Contains(t, actions, "period.close")
	assert.Contains(t, actions, "period.reopen")
}

func TestDeleteGuards(t *testing.T) {
	repo := newFakePeriodRepo()
	svc := NewService(repo, &fakeAudit{})

	_, err := svc.GenerateYear(context.Background(), actor, 2026)
	require.NoError(t, err)
	march, err := repo.PeriodForDate(context.Background(), actor.CompanyID, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), actor, march.ID)
	require.NoError(t, err)
	err = svc.Delete(context.Background(), actor, march.ID)
	require.ErrorIs(t, err, shared.ErrPeriodIsClosed)

	_, err = svc.Reopen(context.Background(), actor, march.ID)
	require.NoError(t, err)
	repo.entries = append(repo.entries, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	err = svc.Delete(context.Background(), actor, march.ID)
	require.ErrorIs(t, err, shared.ErrPeriodHasEntries)

	repo.entries = nil
	require.NoError(t, svc.Delete(context.Background(), actor, march.ID))
	_, err = repo.Get(context.Background(), actor.CompanyID, march.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
