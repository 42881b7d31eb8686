package model

import "time"

// Contact is the data structure for one address book entry. Optional
// fields are pointers; nil means the field is absent. An Id of 0 means
// the contact has not been stored yet.
type Contact struct {
	Id          int64     `json:"id"                db:"id"`
	Name        *string   `json:"name,omitempty"    db:"name"`
	Phone       *string   `json:"phone,omitempty"   db:"phone"`
	Email       *string   `json:"email,omitempty"   db:"email"`
	Wechat      *string   `json:"wechat,omitempty"  db:"wechat"`
	Qq          *string   `json:"qq,omitempty"      db:"qq"`
	Address     *string   `json:"address,omitempty" db:"address"`
	Company     *string   `json:"company,omitempty" db:"company"`
	Avatar      *string   `json:"avatar,omitempty"  db:"avatar"`
	Bookmarked  bool      `json:"bookmarked"        db:"bookmarked"`
	CreatedTime time.Time `json:"createdTime"       db:"created_time"`
	UpdatedTime time.Time `json:"updatedTime"       db:"updated_time"`
}

// StringValue returns the dereferenced string, or "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns a pointer to s, or nil if s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
