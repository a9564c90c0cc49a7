// Package extract pulls an email address and a phone number out of a
// company website using several independent strategies.
package extract

import (
	"contactscraper/patterns"
	"contactscraper/validate"
)

// ContactInfo is the contact record of one site. Each field is written at
// most once: the first accepted value wins.
type ContactInfo struct {
	Website string `json:"website"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// SetEmail stores email if none is stored yet and reports whether it did
func (c *ContactInfo) SetEmail(email string) bool {
	if c.Email != "" || email == "" {
		return false
	}
	c.Email = email
	return true
}

// SetPhone stores phone if none is stored yet and reports whether it did
func (c *ContactInfo) SetPhone(phone string) bool {
	if c.Phone != "" || phone == "" {
		return false
	}
	c.Phone = phone
	return true
}

// Complete reports whether both email and phone are known
func (c *ContactInfo) Complete() bool {
	return c.Email != "" && c.Phone != ""
}

// OfferEmail validates a raw candidate and stores it on success
func (c *ContactInfo) OfferEmail(raw string) bool {
	if c.Email != "" {
		return false
	}
	email := validate.NormalizeEmail(raw)
	if !validate.Email(email) {
		return false
	}
	return c.SetEmail(email)
}

// OfferPhone validates a raw candidate and stores it formatted on success
func (c *ContactInfo) OfferPhone(raw string) bool {
	if c.Phone != "" || !validate.Phone(raw) {
		return false
	}
	return c.SetPhone(validate.FormatPhone(raw))
}

// scanText runs the pattern library over text for whichever fields are still missing
func (c *ContactInfo) scanText(text string) {
	if c.Email == "" {
		if email, ok := patterns.FirstEmail(text); ok {
			c.SetEmail(email)
		}
	}
	if c.Phone == "" {
		if phone, ok := patterns.FirstPhone(text); ok {
			c.SetPhone(phone)
		}
	}
}
