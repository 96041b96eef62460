package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"salmonsurvey/internal/core"
)

var (
	ErrMalformedPage = errors.New("malformed page")
	// ErrMissingDate marks a submission without a survey date. The loader skips these.
	ErrMissingDate = errors.New("missing survey date")
)

// Page is one page of survey submissions.
type Page struct {
	Results []RawRecord
	// Next is the locator of the following page; empty when exhausted.
	Next string
}

// HasNext reports whether another page should be fetched.
func (p Page) HasNext() bool {
	return p.Next != ""
}

type wirePage struct {
	Results *[]RawRecord `json:"results"`
	Next    *string      `json:"next"`
}

// DecodePage parses a page body. Both keys are required: a missing results
// array or next cursor is an error, and only "next": null ends pagination.
// An empty next is rejected since it cannot be fetched.
func DecodePage(body []byte) (Page, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}
	if _, ok := keys["next"]; !ok {
		return Page{}, fmt.Errorf("%w: missing next", ErrMalformedPage)
	}

	var wp wirePage
	if err := json.Unmarshal(body, &wp); err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}
	if wp.Results == nil {
		return Page{}, fmt.Errorf("%w: missing results", ErrMalformedPage)
	}
	p := Page{Results: *wp.Results}
	if wp.Next != nil {
		p.Next = strings.TrimSpace(*wp.Next)
		if p.Next == "" {
			return Page{}, fmt.Errorf("%w: empty next", ErrMalformedPage)
		}
	}
	return p, nil
}

// RawRecord is a survey submission as served by the form backend.
type RawRecord struct {
	ID         FlexString `json:"_id"`
	SurveyDate string     `json:"Survey_Date"`
	Quantity   *FlexInt   `json:"Quantity"`
	Type       string     `json:"Type"`
	Species    string     `json:"Species"`
}

// ToRecord converts the submission to a domain record, defaulting a missing quantity to 1.
// A blank Survey_Date yields ErrMissingDate; an unparseable one core.ErrInvalidDate.
func (r RawRecord) ToRecord() (core.Record, error) {
	if strings.TrimSpace(r.SurveyDate) == "" {
		return core.Record{}, fmt.Errorf("record %s: %w", r.ID, ErrMissingDate)
	}
	date, err := core.ParseDate(r.SurveyDate)
	if err != nil {
		return core.Record{}, fmt.Errorf("record %s: %w", r.ID, err)
	}
	qty := int64(1)
	if r.Quantity != nil {
		qty = int64(*r.Quantity)
	}
	rec := core.Record{
		ID:       string(r.ID),
		Date:     date,
		Quantity: qty,
		Status:   strings.TrimSpace(r.Type),
		Category: strings.TrimSpace(r.Species),
	}
	if err := rec.Validate(); err != nil {
		return core.Record{}, err
	}
	return rec, nil
}

// FlexString accepts a JSON string or number.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = FlexString(n.String())
	return nil
}

// FlexInt accepts a JSON integer or a string holding one. An empty string means 1.
type FlexInt int64

func (i *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*i = 1
			return nil
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s", core.ErrInvalidQuantity, b)
	}
	*i = FlexInt(n)
	return nil
}
