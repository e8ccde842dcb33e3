// Copyright (c) 2025 Adrián Gómez Morales
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
//
// Author(s): Adrián Gómez Morales

package telegommor

import (
	"fmt"
	"time"
)

// discriminator is the column that identifies the internal format of a raw
// row. Every row handed to Decode must carry it.
const discriminator = "kind"

// RawRecord is a single row as read from the cache database, prior to any
// interpretation: a mapping from column name to value. Blob columns hold
// opaque encoded byte sequences.
type RawRecord map[string]interface{}

// Kind returns the record discriminator, or "" if the row has none.
func (r RawRecord) Kind() string {
	if v, ok := r[discriminator].(string); ok {
		return v
	}
	return ""
}

// Int reads an integer column. Row sources may materialize integers as
// int64 or int depending on the driver.
func (r RawRecord) Int(column string) (int64, bool) {
	switch v := r[column].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

// Text reads a text column.
func (r RawRecord) Text(column string) (string, bool) {
	v, ok := r[column].(string)
	return v, ok
}

// Blob reads a blob column. A missing or NULL column yields (nil, false).
func (r RawRecord) Blob(column string) ([]byte, bool) {
	v, ok := r[column].([]byte)
	return v, ok
}

// Epoch identifies the timestamp convention a record version encodes.
type Epoch int

const (
	// EpochSeconds is a unix timestamp in seconds.
	EpochSeconds Epoch = iota
	// EpochMillis is a unix timestamp in milliseconds.
	EpochMillis
)

// RawTime is a timestamp as found on disk, tagged with its convention. The
// Normalizer converts all RawTimes to UTC instants before any ordering.
type RawTime struct {
	Value int64
	Epoch Epoch
}

// UTC resolves the raw timestamp to an absolute instant. Non-positive
// values resolve to the zero epoch instant.
func (t RawTime) UTC() time.Time {
	if t.Value <= 0 {
		return time.Unix(0, 0).UTC()
	}
	if t.Epoch == EpochMillis {
		return time.UnixMilli(t.Value).UTC()
	}
	return time.Unix(t.Value, 0).UTC()
}

// Encoding identifies the character encoding a record version declares for
// its text payloads.
type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingUTF16LE
	EncodingLatin1
)

// Direction of a message relative to the analyzed account.
type Direction int

const (
	Incoming Direction = iota
	Outgoing
)

func (d Direction) String() string {
	if d == Outgoing {
		return "outgoing"
	}
	return "incoming"
}

// PayloadKind classifies a message payload.
type PayloadKind int

const (
	PayloadText PayloadKind = iota
	PayloadMedia
	PayloadSystem
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadMedia:
		return "media"
	case PayloadSystem:
		return "system"
	default:
		return "text"
	}
}

// UnknownReason states why a raw record could not be decoded.
type UnknownReason int

const (
	// ReasonUnsupported marks a discriminator value the decoder does not know.
	ReasonUnsupported UnknownReason = iota
	// ReasonCorrupt marks a known kind whose bytes do not match its layout.
	ReasonCorrupt
)

func (r UnknownReason) String() string {
	if r == ReasonCorrupt {
		return "corrupt"
	}
	return "unsupported"
}

// RawMessage is a decoded but not yet normalized message record.
type RawMessage struct {
	ID           int64
	ContactID    int64
	Time         RawTime
	Direction    Direction
	Payload      PayloadKind
	Body         []byte
	BodyEncoding Encoding
}

// RawContact is a decoded but not yet normalized contact observation.
// Multiple observations of the same contact id may exist; the Normalizer
// merges them.
type RawContact struct {
	ContactID      int64
	Name           []byte
	NameEncoding   Encoding
	AltIdentifiers []string
	ObservedAt     RawTime
}

// RawSession is a decoded but not yet normalized session state record. The
// cache keeps one row of synchronization counters for the logged-in account.
type RawSession struct {
	Seq      int64
	Pts      int64
	Qts      int64
	LastSync RawTime
}

// UnknownRecord carries a record that could not be decoded, as data instead
// of an error, so that corruption in one row never stops the run.
type UnknownRecord struct {
	Kind   string
	Reason UnknownReason
	Detail string
}

// DecodedRecord is the tagged result of decoding one raw row. Exactly one
// of the variant fields is non-nil.
type DecodedRecord struct {
	Message *RawMessage
	Contact *RawContact
	Session *RawSession
	Unknown *UnknownRecord
}

// Message is a fully normalized message: absolute UTC timestamp and decoded
// body text. ID is unique within the corpus.
type Message struct {
	ID        int64       `json:"id"`
	ContactID int64       `json:"contact_id"`
	Timestamp time.Time   `json:"timestamp"`
	Direction Direction   `json:"direction"`
	Payload   PayloadKind `json:"payload_kind"`
	Body      string      `json:"body"`
}

// Contact is a resolved contact. DisplayName may be empty when no name
// record survived decoding; use Label for presentation.
type Contact struct {
	ID             int64    `json:"contact_id"`
	DisplayName    string   `json:"display_name"`
	AltIdentifiers []string `json:"alt_identifiers,omitempty"`
}

// Label returns the display name, falling back to a synthetic name for
// contacts whose name records were missing or unreadable.
func (c Contact) Label() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return fmt.Sprintf("contact %d", c.ID)
}

// Session holds the synchronization state of the analyzed account:
// sequence and timestamp counters plus the last time the client synced with
// the server.
type Session struct {
	Seq        int64     `json:"seq"`
	Pts        int64     `json:"pts"`
	Qts        int64     `json:"qts"`
	LastSyncAt time.Time `json:"last_sync_at"`
}

// TimeSpan is the (first, last) message instant of a conversation.
type TimeSpan struct {
	First time.Time `json:"first"`
	Last  time.Time `json:"last"`
}

// Conversation is the ordered message history between the analyzed account
// and one contact. Messages are sorted ascending by timestamp, ties broken
// by record id. Read-only once built.
type Conversation struct {
	Contact  Contact   `json:"contact"`
	Messages []Message `json:"messages"`
	Span     *TimeSpan `json:"time_span,omitempty"`
}

// MessageCount returns the number of messages in the conversation.
func (c Conversation) MessageCount() int {
	return len(c.Messages)
}
