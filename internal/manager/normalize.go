package manager

import (
	"strings"

	"gitlab.com/qianyu.zhou/addressbook-service/internal/model"
	"gitlab.com/qianyu.zhou/addressbook-service/internal/validate"
)

// Field length limits, mirroring the column widths of the contacts table.
const (
	maxNameLen    = 100
	maxWechatLen  = 50
	maxQqLen      = 20
	maxAddressLen = 200
	maxCompanyLen = 100
)

// Normalize trims all text fields of the contact, converts optional
// fields that are empty after trimming to absent, and checks every
// field format rule. It returns the normalized copy without touching
// its input. The phone uniqueness check is not part of normalization.
func Normalize(contact *model.Contact) (model.Contact, error) {
	if contact == nil {
		return model.Contact{}, validation("contact", "contact data must not be empty")
	}
	normalized := *contact

	name := strings.TrimSpace(model.StringValue(contact.Name))
	if name == "" {
		return model.Contact{}, validation("name", "name must not be empty")
	}
	if len([]rune(name)) > maxNameLen {
		return model.Contact{}, validation("name", "name must not exceed 100 characters")
	}
	normalized.Name = &name

	phone := strings.TrimSpace(model.StringValue(contact.Phone))
	if phone == "" {
		return model.Contact{}, validation("phone", "phone must not be empty")
	}
	if !validate.IsValidPhone(phone) {
		return model.Contact{}, validation("phone", "invalid phone number format")
	}
	normalized.Phone = &phone

	email := strings.TrimSpace(model.StringValue(contact.Email))
	if email != "" && !validate.IsValidEmail(email) {
		return model.Contact{}, validation("email", "invalid email format")
	}
	normalized.Email = model.StringPtr(email)

	wechat := strings.TrimSpace(model.StringValue(contact.Wechat))
	if len([]rune(wechat)) > maxWechatLen {
		return model.Contact{}, validation("wechat", "wechat account must not exceed 50 characters")
	}
	normalized.Wechat = model.StringPtr(wechat)

	qq := strings.TrimSpace(model.StringValue(contact.Qq))
	if qq != "" {
		if !validate.IsValidQQ(qq) {
			return model.Contact{}, validation("qq", "invalid QQ number format")
		}
		if len(qq) > maxQqLen {
			return model.Contact{}, validation("qq", "QQ number must not exceed 20 characters")
		}
	}
	normalized.Qq = model.StringPtr(qq)

	address := strings.TrimSpace(model.StringValue(contact.Address))
	if len([]rune(address)) > maxAddressLen {
		return model.Contact{}, validation("address", "address must not exceed 200 characters")
	}
	normalized.Address = model.StringPtr(address)

	company := strings.TrimSpace(model.StringValue(contact.Company))
	if len([]rune(company)) > maxCompanyLen {
		return model.Contact{}, validation("company", "company name must not exceed 100 characters")
	}
	normalized.Company = model.StringPtr(company)

	return normalized, nil
}
