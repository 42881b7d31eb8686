package manager

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.com/qianyu.zhou/addressbook-service/internal/model"
)

// fakeStore is an in-memory Store holding contacts in a map. It
// mirrors the real store's contract: Save owns the timestamps and a
// phone collision surfaces as DuplicatePhoneError even when the
// manager's fast-path check was skipped.
type fakeStore struct {
	contacts map[int64]model.Contact
	nextId   int64
	saves    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{contacts: map[int64]model.Contact{}, nextId: 1}
}

func (f *fakeStore) all() []model.Contact {
	contacts := []model.Contact{}
	for _, contact := range f.contacts {
		contacts = append(contacts, contact)
	}
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].Id < contacts[j].Id })
	return contacts
}

func (f *fakeStore) FindAll(ctx context.Context) ([]model.Contact, error) {
	return f.all(), nil
}

func (f *fakeStore) FindBookmarked(ctx context.Context, bookmarked bool) ([]model.Contact, error) {
	contacts := []model.Contact{}
	for _, contact := range f.all() {
		if contact.Bookmarked == bookmarked {
			contacts = append(contacts, contact)
		}
	}
	return contacts, nil
}

func (f *fakeStore) FindByID(ctx context.Context, id int64) (*model.Contact, error) {
	contact, ok := f.contacts[id]
	if !ok {
		return nil, nil
	}
	return &contact, nil
}

func (f *fakeStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	_, ok := f.contacts[id]
	return ok, nil
}

func (f *fakeStore) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	for _, contact := range f.contacts {
		if model.StringValue(contact.Phone) == phone {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ExistsByPhoneExcluding(ctx context.Context, phone string, id int64) (bool, error) {
	for _, contact := range f.contacts {
		if contact.Id != id && model.StringValue(contact.Phone) == phone {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Save(ctx context.Context, contact model.Contact) (model.Contact, error) {
	if taken, _ := f.ExistsByPhoneExcluding(ctx, model.StringValue(contact.Phone), contact.Id); taken {
		return model.Contact{}, DuplicatePhoneError{Phone: model.StringValue(contact.Phone)}
	}
	f.saves++
	contact.UpdatedTime = time.Now()
	if contact.Id == 0 {
		contact.Id = f.nextId
		f.nextId++
		contact.CreatedTime = contact.UpdatedTime
	}
	f.contacts[contact.Id] = contact
	return contact, nil
}

func (f *fakeStore) DeleteByID(ctx context.Context, id int64) error {
	delete(f.contacts, id)
	return nil
}

func (f *fakeStore) SearchByNameOrPhone(ctx context.Context, keyword string) ([]model.Contact, error) {
	contacts := []model.Contact{}
	for _, contact := range f.all() {
		if strings.Contains(model.StringValue(contact.Name), keyword) ||
			strings.Contains(model.StringValue(contact.Phone), keyword) {
			contacts = append(contacts, contact)
		}
	}
	return contacts, nil
}

func (f *fakeStore) FindByNameContaining(ctx context.Context, name string) ([]model.Contact, error) {
	contacts := []model.Contact{}
	for _, contact := range f.all() {
		if strings.Contains(model.StringValue(contact.Name), name) {
			contacts = append(contacts, contact)
		}
	}
	return contacts, nil
}

func (f *fakeStore) FindByPhoneContaining(ctx context.Context, phone string) ([]model.Contact, error) {
	contacts := []model.Contact{}
	for _, contact := range f.all() {
		if strings.Contains(model.StringValue(contact.Phone), phone) {
			contacts = append(contacts, contact)
		}
	}
	return contacts, nil
}

func newTestManager() (*Manager, *fakeStore) {
	store := newFakeStore()
	return New(store, zap.NewNop().Sugar()), store
}

func mustCreate(t *testing.T, mgr *Manager, contact model.Contact) model.Contact {
	t.Helper()
	created, err := mgr.Create(context.Background(), &contact)
	require.NoError(t, err)
	return created
}

func TestCreateAssignsIdAndTimestamps(t *testing.T) {
	mgr, _ := newTestManager()
	created := mustCreate(t, mgr, model.Contact{Name: str(" Bob "), Phone: str("13800138000")})

	assert.Equal(t, int64(1), created.Id)
	assert.Equal(t, "Bob", *created.Name)
	assert.False(t, created.Bookmarked)
	assert.False(t, created.CreatedTime.IsZero())
	assert.Equal(t, created.CreatedTime, created.UpdatedTime)
}

func TestCreateRejectsDuplicatePhone(t *testing.T) {
	mgr, _ := newTestManager()
	mustCreate(t, mgr, model.Contact{Name: str("Bob"), Phone: str("13800138000")})

	_, err := mgr.Create(context.Background(), &model.Contact{Name: str("Eve"), Phone: str("13800138000")})
	require.Error(t, err)
	assert.True(t, IsDuplicatePhone(err))
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	mgr, store := newTestManager()
	_, err := mgr.Create(context.Background(), &model.Contact{Name: str("Bob"), Phone: str("not-a-phone")})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Empty(t, store.contacts)
}

func TestUpdateKeepingOwnPhoneIsNoConflict(t *testing.T) {
	mgr, _ := newTestManager()
	created := mustCreate(t, mgr, model.Contact{Name: str("Bob"), Phone: str("13800138000")})

	updated, err := mgr.Update(context.Background(), created.Id,
		&model.Contact{Name: str("Robert"), Phone: str("13800138000")})
	require.NoError(t, err)
	assert.Equal(t, "Robert", *updated.Name)
	assert.Equal(t, "13800138000", *updated.Phone)
}

func TestUpdateRejectsPhoneOfOtherContact(t *testing.T) {
	mgr, _ := newTestManager()
	mustCreate(t, mgr, model.Contact{Name: str("Bob"), Phone: str("13800138000")})
	other := mustCreate(t, mgr, model.Contact{Name: str("Eve"), Phone: str("13900139000")})

	_, err := mgr.Update(context.Background(), other.Id,
		&model.Contact{Name: str("Eve"), Phone: str("13800138000")})
	require.Error(t, err)
	assert.True(t, IsDuplicatePhone(err))
}

func TestUpdatePreservesBookmarkCreatedTimeAndAvatar(t *testing.T) {
	mgr, _ := newTestManager()
	created := mustCreate(t, mgr, model.Contact{
		Name: str("Bob"), Phone: str("13800138000"), Avatar: str("img:1"), Bookmarked: true,
	})

	updated, err := mgr.Update(context.Background(), created.Id, &model.Contact{
		Name: str("Robert"), Phone: str("13800138000"), Bookmarked: false,
	})
	require.NoError(t, err)

	assert.True(t, updated.Bookmarked, "update must not change the bookmark state")
	assert.Equal(t, created.CreatedTime, updated.CreatedTime)
	assert.Equal(t, "img:1", model.StringValue(updated.Avatar), "absent avatar keeps the stored one")
}

func TestUpdateMissingContact(t *testing.T) {
	mgr, _ := newTestManager()
	_, err := mgr.Update(context.Background(), 42, &model.Contact{Name: str("Bob"), Phone: str("13800138000")})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestDeleteThenGet(t *testing.T) {
	mgr, _ := newTestManager()
	created := mustCreate(t, mgr, model.Contact{Name: str("Bob"), Phone: str("13800138000")})

	require.NoError(t, mgr.Delete(context.Background(), created.Id))

	_, err := mgr.GetByID(context.Background(), created.Id)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	err = mgr.Delete(context.Background(), created.Id)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestIdPreconditions(t *testing.T) {
	mgr, _ := newTestManager()
	ctx := context.Background()
	for _, id := range []int64{0, -1} {
		_, err := mgr.GetByID(ctx, id)
		assert.True(t, IsValidation(err))
		err = mgr.Delete(ctx, id)
		assert.True(t, IsValidation(err))
		_, err = mgr.Bookmark(ctx, id)
		assert.True(t, IsValidation(err))
		_, err = mgr.ToggleBookmark(ctx, id)
		assert.True(t, IsValidation(err))
	}
}

func TestBookmarkIsIdempotent(t *testing.T) {
	mgr, store := newTestManager()
	created := mustCreate(t, mgr, model.Contact{Name: str("Bob"), Phone: str("13800138000")})

	first, err := mgr.Bookmark(context.Background(), created.Id)
	require.NoError(t, err)
	assert.True(t, first.Bookmarked)
	savesAfterFirst := store.saves

	second, err := mgr.Bookmark(context.Background(), created.Id)
	require.NoError(t, err)
	assert.True(t, second.Bookmarked)
	assert.Equal(t, savesAfterFirst, store.saves, "repeated bookmark must not write")
	assert.Equal(t, first.UpdatedTime, second.UpdatedTime)
}

func TestUnbookmarkIsIdempotent(t *testing.T) {
	mgr, store := newTestManager()
	created := mustCreate(t, mgr, model.Contact{Name: str("Bob"), Phone: str("13800138000")})
	savesAfterCreate := store.saves

	unchanged, err := mgr.Unbookmark(context.Background(), created.Id)
	require.NoError(t, err)
	assert.False(t, unchanged.Bookmarked)
	assert.Equal(t, savesAfterCreate, store.saves)
}

func TestToggleBookmarkTwiceRestoresState(t *testing.T) {
	mgr, _ := newTestManager()
	created := mustCreate(t, mgr, model.Contact{Name: str("Bob"), Phone: str("13800138000")})

	once, err := mgr.ToggleBookmark(context.Background(), created.Id)
	require.NoError(t, err)
	assert.True(t, once.Bookmarked)

	twice, err := mgr.ToggleBookmark(context.Background(), created.Id)
	require.NoError(t, err)
	assert.False(t, twice.Bookmarked)
}

func TestGetBookmarkedFiltersByState(t *testing.T) {
	mgr, _ := newTestManager()
	mustCreate(t, mgr, model.Contact{Name: str("Bob"), Phone: str("13800138000")})
	starred := mustCreate(t, mgr, model.Contact{Name: str("Eve"), Phone: str("13900139000")})
	_, err := mgr.Bookmark(context.Background(), starred.Id)
	require.NoError(t, err)

	bookmarked, err := mgr.GetBookmarked(context.Background())
	require.NoError(t, err)
	require.Len(t, bookmarked, 1)
	assert.Equal(t, starred.Id, bookmarked[0].Id)
}

func TestSearchBlankKeywordReturnsAll(t *testing.T) {
	mgr, _ := newTestManager()
	mustCreate(t, mgr, model.Contact{Name: str("Bob"), Phone: str("13800138000")})
	mustCreate(t, mgr, model.Contact{Name: str("Eve"), Phone: str("13900139000")})

	for _, keyword := range []string{"", "   "} {
		contacts, err := mgr.Search(context.Background(), keyword)
		require.NoError(t, err)
		assert.Len(t, contacts, 2)
	}
}

func TestSearchMatchesNameAndPhone(t *testing.T) {
	mgr, _ := newTestManager()
	mustCreate(t, mgr, model.Contact{Name: str("Bob"), Phone: str("13800138000")})
	mustCreate(t, mgr, model.Contact{Name: str("Eve"), Phone: str("13900139000")})

	byName, err := mgr.Search(context.Background(), "Bo")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Bob", *byName[0].Name)

	byPhone, err := mgr.Search(context.Background(), "139")
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, "Eve", *byPhone[0].Name)
}

func TestImportAllCollectsPerRowFailures(t *testing.T) {
	mgr, _ := newTestManager()
	mustCreate(t, mgr, model.Contact{Name: str("Bob"), Phone: str("13800138000")})

	result := mgr.ImportAll(context.Background(), []model.Contact{
		{Name: str("Eve"), Phone: str("13900139000")},
		{Name: str("Mallory"), Phone: str("13800138000")}, // duplicate of Bob
		{Name: str("Trent"), Phone: str("bad")},           // malformed phone
		{Name: str("Peggy"), Phone: str("010-12345678")},
	})

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "row 3")
	assert.Contains(t, result.Errors[0], "Mallory")
	assert.Contains(t, result.Errors[1], "row 4")
}
