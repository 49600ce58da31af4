package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID is the opaque, server-assigned record identifier.
// Servers that hand out numeric ids are accepted and normalised to strings.
type ID string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the id as a plain string
func (id ID) String() string {
	return string(id)
}

// Record is a single phonebook entry
type Record struct {
	ID     ID     `json:"id,omitempty"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

// Draft is the unsaved name/number pair the user is composing
type Draft struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// Blank reports whether the draft has no usable name
func (d Draft) Blank() bool {
	return strings.TrimSpace(d.Name) == ""
}

// Record converts the draft into a record without an id
func (d Draft) Record() Record {
	return Record{Name: d.Name, Number: d.Number}
}

// Part is a single section of a course
type Part struct {
	ID        int    `toml:"id" json:"id"`
	Name      string `toml:"name" json:"name"`
	Exercises int    `toml:"exercises" json:"exercises"`
}

// Course is a named list of parts
type Course struct {
	ID    int    `toml:"id" json:"id"`
	Name  string `toml:"name" json:"name"`
	Parts []Part `toml:"parts" json:"parts"`
}

// Total returns the number of exercises across all parts
func (c Course) Total() int {
	total := 0
	for _, p := range c.Parts {
		total += p.Exercises
	}
	return total
}

// StatusKind classifies a status message
type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// StatusMessage is transient feedback about the last operation
type StatusMessage struct {
	Text      string     `json:"text"`
	Kind      StatusKind `json:"kind"`
	ExpiresAt time.Time  `json:"expires_at"`
}
