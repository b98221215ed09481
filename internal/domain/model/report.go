// Package model contains domain models passed between layers.
//
// Report, Fight, Role and Character mirror the provider's decoded rankings
// payload. Fields the extractor requires are pointers (or nil-able slices) so
// that an absent field can be told apart from a zero value.
package model

import (
	"bytes"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Report is one recorded raid session.
type Report struct {
	Code      *string   `json:"code"`
	StartTime *int64    `json:"startTime"` // epoch milliseconds
	Rankings  *Rankings `json:"rankings"`
}

// Start returns the report start time in UTC, or the zero time when the
// provider did not send one.
func (r Report) Start() time.Time {
	if r.StartTime == nil {
		return time.Time{}
	}
	return time.UnixMilli(*r.StartTime).UTC()
}

// Rankings wraps the per-fight ranking entries of a report.
type Rankings struct {
	Data []Fight `json:"data"`
}

// UnmarshalJSON accepts the rankings object either inline or encoded as a
// JSON string, which is how the provider's JSON scalar sometimes arrives.
func (r *Rankings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		data = []byte(inner)
	}

	type plain Rankings
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Rankings(p)
	return nil
}

// Fight is one encounter attempt within a report.
type Fight struct {
	FightID   *int       `json:"fightID"`
	Encounter *Encounter `json:"encounter"`
	Kill      *bool      `json:"kill"`
	Roles     Roles      `json:"roles"`
}

// Encounter names the boss of a fight.
type Encounter struct {
	ID   *int    `json:"id"`
	Name *string `json:"name"`
}

// Role groups the characters that played one role (tanks, healers, dps) in a fight.
type Role struct {
	Name       string      `json:"-"`
	Characters []Character `json:"characters"`
}

// Roles is the role mapping of a fight in the order the provider emitted its
// keys. A nil Roles means the field was absent.
type Roles []Role

// UnmarshalJSON decodes a JSON object of role name -> role, keeping key order.
func (rs *Roles) UnmarshalJSON(data []byte) error {
	iter := json.BorrowIterator(data)
	defer json.ReturnIterator(iter)

	if iter.WhatIsNext() == jsoniter.NilValue {
		iter.ReadNil()
		*rs = nil
		return nil
	}

	out := Roles{}
	iter.ReadObjectCB(func(it *jsoniter.Iterator, name string) bool {
		var role Role
		it.ReadVal(&role)
		role.Name = name
		out = append(out, role)
		return it.Error == nil
	})
	if iter.Error != nil {
		return iter.Error
	}
	*rs = out
	return nil
}

// MarshalJSON encodes the roles back into an object, keeping order.
func (rs Roles) MarshalJSON() ([]byte, error) {
	if rs == nil {
		return []byte("null"), nil
	}
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, role := range rs {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(role.Name)
		stream.WriteVal(role)
	}
	stream.WriteObjectEnd()
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

// Character is one character's result within one fight.
type Character struct {
	ID             *int64   `json:"id"`
	Name           *string  `json:"name"`
	RankPercent    *float64 `json:"rankPercent"`
	BracketPercent *float64 `json:"bracketPercent"`
}

// Ptr returns a pointer to v. Handy when building reports by hand.
func Ptr[T any](v T) *T {
	return &v
}
