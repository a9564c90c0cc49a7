// Package scraper turns company names into contact records: it resolves each
// company's website and extracts an email address and phone number from it.
package scraper

import (
	"encoding/json"
)

// Status describes how processing of one company ended
type Status string

const (
	StatusSuccess       Status = "success"
	StatusNoWebsite     Status = "no_website_found"
	StatusError         Status = "error"
	StatusEncodingError Status = "encoding_error"
)

// CompanyResult is the outcome for one input name. Empty Website, Email or
// Phone mean the value was not found and encode as JSON null.
type CompanyResult struct {
	CompanyName string `json:"company_name"`
	Website     string `json:"website"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Status      Status `json:"status"`
}

func (r CompanyResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CompanyName string  `json:"company_name"`
		Website     *string `json:"website"`
		Email       *string `json:"email"`
		Phone       *string `json:"phone"`
		Status      Status  `json:"status"`
	}{
		CompanyName: r.CompanyName,
		Website:     nullable(r.Website),
		Email:       nullable(r.Email),
		Phone:       nullable(r.Phone),
		Status:      r.Status,
	})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
