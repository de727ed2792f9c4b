package model

import "strings"

// Address mirrors the `addresses` table.  Rows are shared between profiles
// and are never edited in place; a different combination resolves to a
// different row.
type Address struct {
	ID       uint64  `json:"id"`
	LineOne  string  `json:"lineOne"`
	LineTwo  *string `json:"lineTwo"`
	Suburb   string  `json:"suburb"`
	Postcode string  `json:"postcode"`
	State    string  `json:"state"`
	Country  string  `json:"country"`
}

// AddressInput carries the six address fields as submitted.  Any of them may
// be empty.
type AddressInput struct {
	LineOne  string `json:"lineOne" validate:"max=45"`
	LineTwo  string `json:"lineTwo" validate:"max=45"`
	Suburb   string `json:"suburb" validate:"max=45"`
	Postcode string `json:"postcode" validate:"max=10"`
	State    string `json:"state" validate:"max=45"`
	Country  string `json:"country" validate:"max=45"`
}

// Complete reports whether every required field is present.  LineTwo is
// optional.
func (a AddressInput) Complete() bool {
	for _, v := range []string{a.LineOne, a.Suburb, a.Postcode, a.State, a.Country} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Empty reports whether no field at all was supplied.
func (a AddressInput) Empty() bool {
	return a == AddressInput{}
}
