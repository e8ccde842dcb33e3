/*
 * Copyright (c) 2025 Adrián Gómez Morales
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy of
 * this software and associated documentation files (the "Software"), to deal in
 * the Software without restriction, including without limitation the rights to
 * use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
 * the Software, and to permit persons to whom the Software is furnished to do so,
 * subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
 * FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
 * COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
 * IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
 * CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 *
 * Author(s): Adrián Gómez Morales
 */

package telegommor

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/imdario/mergo"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// placeholder replaces byte sequences that cannot be decoded under the
// declared scheme.
const placeholder = "�"

// maxNameLen caps display names; the cache occasionally holds names padded
// with kilobytes of junk from reused slots.
const maxNameLen = 50

// Normalize resolves decoded records into canonical messages, contacts and
// session state: timestamps become UTC instants, text is decoded under each
// record's declared encoding, contact observations sharing an id are merged
// keeping the most recently observed display name and the union of
// alternate identifiers, and message candidates with identical (contact,
// timestamp, direction, body) collapse to one. Of multiple session records
// the one with the latest sync instant survives, ties resolved by the
// higher sequence number. Unknown records are counted in the returned
// failure count and excluded from all outputs.
func Normalize(records []DecodedRecord) ([]Message, map[int64]Contact, *Session, int) {
	type dedupKey struct {
		contactID int64
		unixNano  int64
		direction Direction
		body      string
	}

	seen := map[dedupKey]int{} // key -> index into messages
	var messages []Message
	accumulators := map[int64]*contactAccumulator{}
	var session *Session
	failures := 0

	for _, rec := range records {
		switch {
		case rec.Unknown != nil:
			failures++

		case rec.Message != nil:
			raw := rec.Message
			msg := Message{
				ID:        raw.ID,
				ContactID: raw.ContactID,
				Timestamp: raw.Time.UTC(),
				Direction: raw.Direction,
				Payload:   raw.Payload,
				Body:      decodeText(raw.Body, raw.BodyEncoding),
			}

			key := dedupKey{msg.ContactID, msg.Timestamp.UnixNano(), msg.Direction, msg.Body}
			if i, ok := seen[key]; ok {
				// Same logical event seen through another cache entry.
				// Keep the lower id so reruns are deterministic.
				if msg.ID < messages[i].ID {
					messages[i] = msg
				}
				continue
			}
			seen[key] = len(messages)
			messages = append(messages, msg)

		case rec.Contact != nil:
			raw := rec.Contact
			acc, ok := accumulators[raw.ContactID]
			if !ok {
				acc = &contactAccumulator{alts: map[string]struct{}{}}
				acc.contact.ID = raw.ContactID
				accumulators[raw.ContactID] = acc
			}
			acc.observe(raw)

		case rec.Session != nil:
			raw := rec.Session
			candidate := &Session{
				Seq:        raw.Seq,
				Pts:        raw.Pts,
				Qts:        raw.Qts,
				LastSyncAt: raw.LastSync.UTC(),
			}
			if session == nil || newerSession(candidate, session) {
				session = candidate
			}
		}
	}

	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })

	// Seal the accumulators. The resulting map is never mutated again.
	contacts := make(map[int64]Contact, len(accumulators))
	for id, acc := range accumulators {
		contacts[id] = acc.seal()
	}

	return messages, contacts, session, failures
}

func newerSession(a, b *Session) bool {
	if !a.LastSyncAt.Equal(b.LastSyncAt) {
		return a.LastSyncAt.After(b.LastSyncAt)
	}
	return a.Seq > b.Seq
}

// contactAccumulator merges contact observations for one id. It is mutable
// only within Normalize; seal produces the frozen Contact handed onward.
// The surviving display name is the one from the latest observation that
// carried any name; among same-instant names the lexicographically smallest
// wins, so the merge never depends on row order. namedAt is the instant the
// current name was observed.
type contactAccumulator struct {
	contact Contact
	namedAt time.Time
	alts    map[string]struct{}
}

func (a *contactAccumulator) observe(raw *RawContact) {
	incoming := Contact{
		ID:          raw.ContactID,
		DisplayName: cleanName(decodeText(raw.Name, raw.NameEncoding)),
	}

	at := raw.ObservedAt.UTC()
	if incoming.DisplayName != "" {
		switch {
		case a.contact.DisplayName == "" || at.After(a.namedAt):
			_ = mergo.Merge(&a.contact, incoming, mergo.WithOverride)
			a.namedAt = at
		case at.Equal(a.namedAt) && incoming.DisplayName < a.contact.DisplayName:
			a.contact.DisplayName = incoming.DisplayName
		}
	}

	for _, alt := range raw.AltIdentifiers {
		if alt != "" {
			a.alts[alt] = struct{}{}
		}
	}
}

func (a *contactAccumulator) seal() Contact {
	c := a.contact
	if len(a.alts) > 0 {
		c.AltIdentifiers = make([]string, 0, len(a.alts))
		for alt := range a.alts {
			c.AltIdentifiers = append(c.AltIdentifiers, alt)
		}
		sort.Strings(c.AltIdentifiers)
	}
	return c
}

var (
	utf16Decoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

	semicolonRuns = regexp.MustCompile(`;{2,}`)
	spaceRuns     = regexp.MustCompile(`\s+`)
)

// decodeText decodes body bytes under the declared scheme. Undecodable
// sequences become the visible replacement rune instead of failing the
// record.
func decodeText(b []byte, enc Encoding) string {
	if len(b) == 0 {
		return ""
	}
	switch enc {
	case EncodingUTF16LE:
		decoded, err := utf16Decoder.NewDecoder().Bytes(b)
		if err != nil {
			return strings.ToValidUTF8(string(b), placeholder)
		}
		return string(decoded)
	case EncodingLatin1:
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
		if err != nil {
			return strings.ToValidUTF8(string(b), placeholder)
		}
		return string(decoded)
	default:
		return strings.ToValidUTF8(string(b), placeholder)
	}
}

// cleanName strips the junk the cache accumulates around display names:
// runs of semicolons, repeated whitespace, and overlong padding.
func cleanName(name string) string {
	name = semicolonRuns.ReplaceAllString(name, "")
	name = spaceRuns.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	runes := []rune(name)
	if len(runes) > maxNameLen {
		name = string(runes[:maxNameLen-3]) + "..."
	}
	return name
}
