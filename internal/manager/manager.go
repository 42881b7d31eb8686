// Package manager implements the business rules of the address book:
// input normalization, field validation, phone uniqueness enforcement
// and the bookmark state transitions. Persistence is delegated to a
// Store implementation.
package manager

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gitlab.com/qianyu.zhou/addressbook-service/internal/model"
)

// Store is the persistence contract the manager operates against.
// FindByID returns (nil, nil) when no contact has the given id.
// Save inserts when the contact's Id is 0 and updates otherwise; the
// store owns the created/updated timestamps and must enforce phone
// uniqueness as the authoritative guard, surfacing a collision as
// DuplicatePhoneError.
type Store interface {
	FindAll(ctx context.Context) ([]model.Contact, error)
	FindBookmarked(ctx context.Context, bookmarked bool) ([]model.Contact, error)
	FindByID(ctx context.Context, id int64) (*model.Contact, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	ExistsByPhoneExcluding(ctx context.Context, phone string, id int64) (bool, error)
	Save(ctx context.Context, contact model.Contact) (model.Contact, error)
	DeleteByID(ctx context.Context, id int64) error
	SearchByNameOrPhone(ctx context.Context, keyword string) ([]model.Contact, error)
	FindByNameContaining(ctx context.Context, name string) ([]model.Contact, error)
	FindByPhoneContaining(ctx context.Context, phone string) ([]model.Contact, error)
}

// Manager orchestrates all contact operations.
type Manager struct {
	store Store
	log   *zap.SugaredLogger
}

// New creates a Manager on top of the given store.
func New(store Store, log *zap.SugaredLogger) *Manager {
	return &Manager{store: store, log: log}
}

// GetAll returns every contact in the address book.
func (m *Manager) GetAll(ctx context.Context) ([]model.Contact, error) {
	contacts, err := m.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// GetBookmarked returns all bookmarked contacts.
func (m *Manager) GetBookmarked(ctx context.Context) ([]model.Contact, error) {
	contacts, err := m.store.FindBookmarked(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list bookmarked contacts: %w", err)
	}
	return contacts, nil
}

// GetByID returns the contact with the given id.
func (m *Manager) GetByID(ctx context.Context, id int64) (model.Contact, error) {
	if err := checkId(id); err != nil {
		return model.Contact{}, err
	}
	contact, err := m.store.FindByID(ctx, id)
	if err != nil {
		return model.Contact{}, fmt.Errorf("load contact %d: %w", id, err)
	}
	if contact == nil {
		return model.Contact{}, NotFoundError{Id: id}
	}
	return *contact, nil
}

// Create validates and stores a new contact, returning it with the
// assigned id. The bookmark state defaults to false unless the caller
// explicitly supplies true.
func (m *Manager) Create(ctx context.Context, input *model.Contact) (model.Contact, error) {
	normalized, err := Normalize(input)
	if err != nil {
		return model.Contact{}, err
	}

	// Fast-path collision check for a precise error; the unique key on
	// the phone column remains the authoritative guard under races.
	taken, err := m.store.ExistsByPhone(ctx, *normalized.Phone)
	if err != nil {
		return model.Contact{}, fmt.Errorf("check phone %s: %w", *normalized.Phone, err)
	}
	if taken {
		m.log.Warnw("phone number already in use", "phone", *normalized.Phone)
		return model.Contact{}, DuplicatePhoneError{Phone: *normalized.Phone}
	}

	normalized.Id = 0
	created, err := m.store.Save(ctx, normalized)
	if err != nil {
		if IsDuplicatePhone(err) {
			return model.Contact{}, err
		}
		return model.Contact{}, fmt.Errorf("create contact: %w", err)
	}
	m.log.Infow("contact created", "id", created.Id, "name", model.StringValue(created.Name))
	return created, nil
}

// Update overwrites the contact's fields with the validated input. The
// id, the bookmark state and the creation time are never changed by an
// update; an absent avatar keeps the stored one.
func (m *Manager) Update(ctx context.Context, id int64, input *model.Contact) (model.Contact, error) {
	if err := checkId(id); err != nil {
		return model.Contact{}, err
	}
	normalized, err := Normalize(input)
	if err != nil {
		return model.Contact{}, err
	}

	existing, err := m.store.FindByID(ctx, id)
	if err != nil {
		return model.Contact{}, fmt.Errorf("load contact %d: %w", id, err)
	}
	if existing == nil {
		return model.Contact{}, NotFoundError{Id: id}
	}

	if model.StringValue(existing.Phone) != *normalized.Phone {
		taken, err := m.store.ExistsByPhoneExcluding(ctx, *normalized.Phone, id)
		if err != nil {
			return model.Contact{}, fmt.Errorf("check phone %s: %w", *normalized.Phone, err)
		}
		if taken {
			m.log.Warnw("phone number used by another contact", "phone", *normalized.Phone, "id", id)
			return model.Contact{}, DuplicatePhoneError{Phone: *normalized.Phone}
		}
	}

	updated := normalized
	updated.Id = id
	updated.Bookmarked = existing.Bookmarked
	updated.CreatedTime = existing.CreatedTime
	if updated.Avatar == nil {
		updated.Avatar = existing.Avatar
	}

	saved, err := m.store.Save(ctx, updated)
	if err != nil {
		if IsDuplicatePhone(err) {
			return model.Contact{}, err
		}
		return model.Contact{}, fmt.Errorf("update contact %d: %w", id, err)
	}
	m.log.Infow("contact updated", "id", saved.Id, "name", model.StringValue(saved.Name))
	return saved, nil
}

// Delete removes the contact with the given id permanently.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	if err := checkId(id); err != nil {
		return err
	}
	exists, err := m.store.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("check contact %d: %w", id, err)
	}
	if !exists {
		return NotFoundError{Id: id}
	}
	if err := m.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete contact %d: %w", id, err)
	}
	m.log.Infow("contact deleted", "id", id)
	return nil
}

// Search returns the contacts whose name or phone contains the keyword.
// A blank keyword returns the full contact list.
func (m *Manager) Search(ctx context.Context, keyword string) ([]model.Contact, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return m.GetAll(ctx)
	}
	contacts, err := m.store.SearchByNameOrPhone(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("search contacts %q: %w", keyword, err)
	}
	return contacts, nil
}

// SearchByName returns the contacts whose name contains the substring.
func (m *Manager) SearchByName(ctx context.Context, name string) ([]model.Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return m.GetAll(ctx)
	}
	contacts, err := m.store.FindByNameContaining(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("search contacts by name %q: %w", name, err)
	}
	return contacts, nil
}

// SearchByPhone returns the contacts whose phone contains the substring.
func (m *Manager) SearchByPhone(ctx context.Context, phone string) ([]model.Contact, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return m.GetAll(ctx)
	}
	contacts, err := m.store.FindByPhoneContaining(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("search contacts by phone %q: %w", phone, err)
	}
	return contacts, nil
}

// Bookmark marks the contact as bookmarked. Bookmarking an already
// bookmarked contact is a no-op and does not bump the update time.
func (m *Manager) Bookmark(ctx context.Context, id int64) (model.Contact, error) {
	return m.setBookmarked(ctx, id, true)
}

// Unbookmark clears the contact's bookmark flag. Clearing an already
// unbookmarked contact is a no-op and does not bump the update time.
func (m *Manager) Unbookmark(ctx context.Context, id int64) (model.Contact, error) {
	return m.setBookmarked(ctx, id, false)
}

func (m *Manager) setBookmarked(ctx context.Context, id int64, bookmarked bool) (model.Contact, error) {
	if err := checkId(id); err != nil {
		return model.Contact{}, err
	}
	existing, err := m.store.FindByID(ctx, id)
	if err != nil {
		return model.Contact{}, fmt.Errorf("load contact %d: %w", id, err)
	}
	if existing == nil {
		return model.Contact{}, NotFoundError{Id: id}
	}
	if existing.Bookmarked == bookmarked {
		return *existing, nil
	}
	updated := *existing
	updated.Bookmarked = bookmarked
	saved, err := m.store.Save(ctx, updated)
	if err != nil {
		return model.Contact{}, fmt.Errorf("save bookmark state of contact %d: %w", id, err)
	}
	m.log.Infow("bookmark state changed", "id", id, "bookmarked", bookmarked)
	return saved, nil
}

// ToggleBookmark flips the contact's bookmark flag unconditionally.
func (m *Manager) ToggleBookmark(ctx context.Context, id int64) (model.Contact, error) {
	if err := checkId(id); err != nil {
		return model.Contact{}, err
	}
	existing, err := m.store.FindByID(ctx, id)
	if err != nil {
		return model.Contact{}, fmt.Errorf("load contact %d: %w", id, err)
	}
	if existing == nil {
		return model.Contact{}, NotFoundError{Id: id}
	}
	updated := *existing
	updated.Bookmarked = !existing.Bookmarked
	saved, err := m.store.Save(ctx, updated)
	if err != nil {
		return model.Contact{}, fmt.Errorf("save bookmark state of contact %d: %w", id, err)
	}
	m.log.Infow("bookmark state toggled", "id", id, "bookmarked", saved.Bookmarked)
	return saved, nil
}

// ImportResult aggregates the outcome of a batch import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportAll creates every given contact individually and collects the
// per-row outcomes; a failing row never aborts the rest of the batch.
// Row numbers in the error messages start at 2, the first data row of
// the spreadsheet the contacts were decoded from.
func (m *Manager) ImportAll(ctx context.Context, contacts []model.Contact) ImportResult {
	var result ImportResult
	for i := range contacts {
		contact := contacts[i]
		if _, err := m.Create(ctx, &contact); err != nil {
			result.Failed++
			result.Errors = append(result.Errors,
				fmt.Sprintf("row %d: %s - %s", i+2, model.StringValue(contact.Name), err))
			continue
		}
		result.Imported++
	}
	m.log.Infow("import finished", "imported", result.Imported, "failed", result.Failed)
	return result
}

// checkId guards every id-addressed operation.
func checkId(id int64) error {
	if id <= 0 {
		return validation("id", "contact id must be a positive number")
	}
	return nil
}
