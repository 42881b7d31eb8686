// Package store persists contacts in a MySQL database through sqlx.
// The contacts table carries a unique key on the phone column, which
// is the authoritative guard against duplicate phone numbers; a
// violated key surfaces as manager.DuplicatePhoneError.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"gitlab.com/qianyu.zhou/addressbook-service/internal/manager"
	"gitlab.com/qianyu.zhou/addressbook-service/internal/model"
)

// mysqlDuplicateEntry is the server error number for a violated
// unique key.
const mysqlDuplicateEntry = 1062

// Store gives access to the contacts table.
type Store struct {
	db *sqlx.DB

	// Prepared statements offer a significant speed increase if
	// executed many times.
	insert        *sqlx.NamedStmt
	update        *sqlx.NamedStmt
	selectWhereId *sqlx.Stmt
	deleteWhereId *sqlx.Stmt
}

// New wraps the specified sql database and prepares all statements.
// The database argument can be a real database for production use or
// a mock database within unit tests.
func New(sqlDB *sql.DB) (*Store, error) {
	s := &Store{db: sqlx.NewDb(sqlDB, "mysql")}

	var err error
	s.insert, err = s.db.PrepareNamed(`
		INSERT INTO contacts
			(name, phone, email, wechat, qq, address, company, avatar, bookmarked, created_time, updated_time)
		VALUES
			(:name, :phone, :email, :wechat, :qq, :address, :company, :avatar, :bookmarked, :created_time, :updated_time)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	s.update, err = s.db.PrepareNamed(`
		UPDATE contacts
		SET name=:name, phone=:phone, email=:email, wechat=:wechat, qq=:qq,
			address=:address, company=:company, avatar=:avatar,
			bookmarked=:bookmarked, updated_time=:updated_time
		WHERE id=:id
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare update: %w", err)
	}
	s.selectWhereId, err = s.db.Preparex(`
		SELECT * FROM contacts WHERE id=?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare select by id: %w", err)
	}
	s.deleteWhereId, err = s.db.Preparex(`
		DELETE FROM contacts WHERE id=?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare delete by id: %w", err)
	}
	return s, nil
}

// Open connects to MySQL with the given data source name.
func Open(dsn string) (*sql.DB, error) {
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return sqlDB, nil
}

// Close releases the prepared statements and the database handle.
func (s *Store) Close() error {
	s.insert.Close()
	s.update.Close()
	s.selectWhereId.Close()
	s.deleteWhereId.Close()
	return s.db.Close()
}

// FindAll returns every contact ordered by id.
func (s *Store) FindAll(ctx context.Context) ([]model.Contact, error) {
	contacts := []model.Contact{}
	err := s.db.SelectContext(ctx, &contacts, `
		SELECT * FROM contacts ORDER BY id
	`)
	return contacts, err
}

// FindBookmarked returns the contacts with the given bookmark state,
// ordered by id.
func (s *Store) FindBookmarked(ctx context.Context, bookmarked bool) ([]model.Contact, error) {
	contacts := []model.Contact{}
	err := s.db.SelectContext(ctx, &contacts, `
		SELECT * FROM contacts WHERE bookmarked=? ORDER BY id
	`, bookmarked)
	return contacts, err
}

// FindByID returns the contact with the given id, or nil if it does
// not exist.
func (s *Store) FindByID(ctx context.Context, id int64) (*model.Contact, error) {
	var contact model.Contact
	err := s.selectWhereId.GetContext(ctx, &contact, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// ExistsByID reports whether a contact with the given id exists.
func (s *Store) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM contacts WHERE id=?
	`, id)
	return count > 0, err
}

// ExistsByPhone reports whether any contact holds the given phone
// number.
func (s *Store) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM contacts WHERE phone=?
	`, phone)
	return count > 0, err
}

// ExistsByPhoneExcluding reports whether any contact other than the
// one with the given id holds the phone number.
func (s *Store) ExistsByPhoneExcluding(ctx context.Context, phone string, id int64) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM contacts WHERE phone=? AND id<>?
	`, phone, id)
	return count > 0, err
}

// Save inserts the contact when its Id is 0 and updates it otherwise.
// The store owns the timestamps: inserting sets both, updating only
// refreshes updated_time.
func (s *Store) Save(ctx context.Context, contact model.Contact) (model.Contact, error) {
	now := time.Now().Truncate(time.Second)
	contact.UpdatedTime = now
	if contact.Id == 0 {
		contact.CreatedTime = now
		result, err := s.insert.ExecContext(ctx, &contact)
		if err != nil {
			return model.Contact{}, wrapDuplicate(err, contact)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return model.Contact{}, err
		}
		contact.Id = id
		return contact, nil
	}

	result, err := s.update.ExecContext(ctx, &contact)
	if err != nil {
		return model.Contact{}, wrapDuplicate(err, contact)
	}
	if _, err := result.RowsAffected(); err != nil {
		return model.Contact{}, err
	}
	return contact, nil
}

// DeleteByID removes the contact with the given id.
func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	_, err := s.deleteWhereId.ExecContext(ctx, id)
	return err
}

// SearchByNameOrPhone returns the contacts whose name or phone
// contains the keyword, ordered by id.
func (s *Store) SearchByNameOrPhone(ctx context.Context, keyword string) ([]model.Contact, error) {
	contacts := []model.Contact{}
	pattern := "%" + keyword + "%"
	err := s.db.SelectContext(ctx, &contacts, `
		SELECT * FROM contacts WHERE name LIKE ? OR phone LIKE ? ORDER BY id
	`, pattern, pattern)
	return contacts, err
}

// FindByNameContaining returns the contacts whose name contains the
// substring, ordered by id.
func (s *Store) FindByNameContaining(ctx context.Context, name string) ([]model.Contact, error) {
	contacts := []model.Contact{}
	err := s.db.SelectContext(ctx, &contacts, `
		SELECT * FROM contacts WHERE name LIKE ? ORDER BY id
	`, "%"+name+"%")
	return contacts, err
}

// FindByPhoneContaining returns the contacts whose phone contains the
// substring, ordered by id.
func (s *Store) FindByPhoneContaining(ctx context.Context, phone string) ([]model.Contact, error) {
	contacts := []model.Contact{}
	err := s.db.SelectContext(ctx, &contacts, `
		SELECT * FROM contacts WHERE phone LIKE ? ORDER BY id
	`, "%"+phone+"%")
	return contacts, err
}

// wrapDuplicate converts a violated unique key on the phone column
// into the manager's duplicate phone error.
func wrapDuplicate(err error, contact model.Contact) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return manager.DuplicatePhoneError{Phone: model.StringValue(contact.Phone)}
	}
	return err
}
