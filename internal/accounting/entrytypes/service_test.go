package entrytypes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contalibre/contalibre/internal/accounting/shared"
	_ "github.com/contalibre/contalibre/testing"
)

type fakeTypeRepo struct {
	types   map[int64]EntryType
	entries map[string]bool
	nextID  int64
}

func newFakeTypeRepo() *fakeTypeRepo {
	return &fakeTypeRepo{types: make(map[int64]EntryType), entries: make(map[string]bool), nextID: 1}
}

func (f *fakeTypeRepo) List(ctx context.Context, companyID int64) ([]EntryType, error) {
	var out []EntryType
	for _, t := range f.types {
		if t.CompanyID == companyID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTypeRepo) Get(ctx context.Context, companyID, id int64) (EntryType, error) {
	t, ok := f.types[id]
	if !ok || t.CompanyID != companyID {
		return EntryType{}, shared.ErrUnknownEntryType
	}
	return t, nil
}

func (f *fakeTypeRepo) GetByCode(ctx context.Context, companyID int64, code string) (EntryType, error) {
	for _, t := range f.types {
		if t.CompanyID == companyID && t.Code == code {
			return t, nil
		}
	}
	return EntryType{}, shared.ErrUnknownEntryType
}

func (f *fakeTypeRepo) Insert(ctx context.Context, t EntryType) (EntryType, error) {
	for _, existing := range f.types {
		if existing.CompanyID == t.CompanyID && existing.Code == t.Code {
			return EntryType{}, shared.ErrDuplicateCode
		}
	}
	t.ID = f.nextID
	f.nextID++
	f.types[t.ID] = t
	return t, nil
}

func (f *fakeTypeRepo) Update(ctx context.Context, t EntryType) error {
	if _, ok := f.types[t.ID]; !ok {
		return shared.ErrUnknownEntryType
	}
	f.types[t.ID] = t
	return nil
}

func (f *fakeTypeRepo) Delete(ctx context.Context, companyID, id int64) error {
	delete(f.types, id)
	return nil
}

func (f *fakeTypeRepo) HasEntries(ctx context.Context, companyID int64, code string) (bool, error) {
	return f.entries[code], nil
}

func (f *fakeTypeRepo) SeedSystemTypes(ctx context.Context, companyID int64) error {
	for _, t := range SystemTypes {
		if _, err := f.GetByCode(ctx, companyID, t.Code); err == nil {
			continue
		}
		t.CompanyID = companyID
		if _, err := f.Insert(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

const companyID = int64(7)

func TestCreateUppercasesCode(t *testing.T) {
	repo := newFakeTypeRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), companyID, CreateEntryTypeRequest{
		Code: "ajuste", Name: "Ajuste",
	})
	require.NoError(t, err)
	assert.Equal(t, "AJUSTE", created.Code)
	assert.False(t, created.IsSystem)
	assert.True(t, created.Active)

	off := false
	updated, err := svc.Update(context.Background(), companyID, created.ID, UpdateEntryTypeRequest{Active: &off})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	on := true
	_, err = svc.Update(context.Background(), companyID, created.ID, UpdateEntryTypeRequest{Active: &on})
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), companyID, " Ajuste ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)

	_, err = svc.Create(context.Background(), companyID, CreateEntryTypeRequest{
		Code: "AJUSTE", Name: "Otro",
	})
	require.ErrorIs(t, err, shared.ErrDuplicateCode)
}

func TestDeleteGuardsSystemAndReferencedTypes(t *testing.T) {
	repo := newFakeTypeRepo()
	svc := NewService(repo)
	require.NoError(t, svc.SeedSystemTypes(context.Background(), companyID))

	diario, err := svc.Resolve(context.Background(), companyID, "DIARIO")
	require.NoError(t, err)
	err = svc.Delete(context.Background(), companyID, diario.ID)
	require.ErrorIs(t, err, shared.ErrEntryTypeInUse)

	custom, err := svc.Create(context.Background(), companyID, CreateEntryTypeRequest{
		Code: "NOMINA", Name: "Nomina",
	})
	require.NoError(t, err)

	repo.entries["NOMINA"] = true
	err = svc.Delete(context.Background(), companyID, custom.ID)
	require.ErrorIs(t, err, shared.ErrEntryTypeInUse)
	require.ErrorIs(t, err, shared.ErrConflict)

	repo.entries["NOMINA"] = false
	require.NoError(t, svc.Delete(context.Background(), companyID, custom.ID))
	_, err = svc.Resolve(context.Background(), companyID, "NOMINA")
	require.ErrorIs(t, err, shared.ErrUnknownEntryType)
}

func TestSeedSystemTypesIsIdempotent(t *testing.T) {
	repo := newFakeTypeRepo()
	svc := NewService(repo)

	require.NoError(t, svc.SeedSystemTypes(context.Background(), companyID))
	require.NoError(t, svc.SeedSystemTypes(context.Background(), companyID))

	types, err := svc.List(context.Background(), companyID)
	require.NoError(t, err)
	assert.Len(t, types, len(SystemTypes))
}
