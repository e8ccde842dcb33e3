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
	"encoding/binary"
	"fmt"
	"strings"
)

// decodeFunc turns one raw row of a known kind into a DecodedRecord. Each
// record version gets its own entry in the decode table; adding a version
// means adding an entry, never touching existing ones.
type decodeFunc func(RawRecord) DecodedRecord

var decoders = map[string]decodeFunc{
	"message_v2": decodeMessageV2,
	"message_v4": decodeMessageV4,
	"user":       decodeUser,
	"chat":       decodeChat,
	"enc_chat":   decodeChat,
	"contact_v7": decodeContactV7,
	"session":    decodeSession,
}

// Decode converts one raw database row into a typed record. It is a pure
// function of its input and never fails: rows with an unrecognized
// discriminator or bytes that do not match their declared layout come back
// as Unknown records so that one damaged row cannot stop the run.
func Decode(raw RawRecord) DecodedRecord {
	kind := raw.Kind()
	decode, ok := decoders[kind]
	if !ok {
		return unsupported(kind)
	}
	return decode(raw)
}

func unsupported(kind string) DecodedRecord {
	return DecodedRecord{Unknown: &UnknownRecord{
		Kind:   kind,
		Reason: ReasonUnsupported,
		Detail: fmt.Sprintf("unrecognized discriminator %q", kind),
	}}
}

func corrupt(kind, detail string) DecodedRecord {
	return DecodedRecord{Unknown: &UnknownRecord{
		Kind:   kind,
		Reason: ReasonCorrupt,
		Detail: detail,
	}}
}

// message_v2 rows carry the timestamp in epoch seconds and a data blob of
// [u8 payload kind][u32 body length][UTF-8 body].
func decodeMessageV2(raw RawRecord) DecodedRecord {
	msg, blob, rec := messageHead(raw, "message_v2", EpochSeconds)
	if msg == nil {
		return rec
	}

	r := newBlobReader(blob)
	payload := r.uint8()
	body := r.lenPrefixed()
	if r.err != nil {
		return corrupt("message_v2", r.err.Error())
	}
	if payload > uint8(PayloadSystem) {
		return corrupt("message_v2", fmt.Sprintf("payload kind %d out of range", payload))
	}

	msg.Payload = PayloadKind(payload)
	msg.Body = body
	msg.BodyEncoding = EncodingUTF8
	return DecodedRecord{Message: msg}
}

// message_v4 rows carry the timestamp in epoch milliseconds and declare the
// body encoding in the blob: [u8 payload kind][u8 encoding][u32 length][body].
func decodeMessageV4(raw RawRecord) DecodedRecord {
	msg, blob, rec := messageHead(raw, "message_v4", EpochMillis)
	if msg == nil {
		return rec
	}

	r := newBlobReader(blob)
	payload := r.uint8()
	enc := r.uint8()
	body := r.lenPrefixed()
	if r.err != nil {
		return corrupt("message_v4", r.err.Error())
	}
	if payload > uint8(PayloadSystem) {
		return corrupt("message_v4", fmt.Sprintf("payload kind %d out of range", payload))
	}
	if enc > uint8(EncodingLatin1) {
		return corrupt("message_v4", fmt.Sprintf("encoding tag %d out of range", enc))
	}

	msg.Payload = PayloadKind(payload)
	msg.Body = body
	msg.BodyEncoding = Encoding(enc)
	return DecodedRecord{Message: msg}
}

// messageHead reads the plain columns shared by all message versions. The
// contact id is canonicalized to its absolute value: the cache negates ids
// for group peers but they reference the same conversation partner.
func messageHead(raw RawRecord, kind string, epoch Epoch) (*RawMessage, []byte, DecodedRecord) {
	mid, ok := raw.Int("mid")
	if !ok {
		return nil, nil, corrupt(kind, "missing mid column")
	}
	uid, ok := raw.Int("uid")
	if !ok {
		return nil, nil, corrupt(kind, "missing uid column")
	}
	date, ok := raw.Int("date")
	if !ok {
		return nil, nil, corrupt(kind, "missing date column")
	}
	blob, ok := raw.Blob("data")
	if !ok {
		return nil, nil, corrupt(kind, "missing data blob")
	}

	out, _ := raw.Int("out")
	direction := Incoming
	if out == 1 {
		direction = Outgoing
	}

	return &RawMessage{
		ID:        mid,
		ContactID: abs64(uid),
		Time:      RawTime{Value: date, Epoch: epoch},
		Direction: direction,
	}, blob, DecodedRecord{}
}

// user rows hold the display name as a plain column and a data blob of
// [u64 observed-at seconds][u16 count][count x (u8 length, identifier)].
// An absent blob means no alternates and an unknown observation time.
func decodeUser(raw RawRecord) DecodedRecord {
	uid, ok := raw.Int("uid")
	if !ok {
		return corrupt("user", "missing uid column")
	}
	name, _ := raw.Text("name")

	contact := &RawContact{
		ContactID:    abs64(uid),
		Name:         []byte(name),
		NameEncoding: EncodingUTF8,
	}

	blob, ok := raw.Blob("data")
	if !ok || len(blob) == 0 {
		return DecodedRecord{Contact: contact}
	}

	r := newBlobReader(blob)
	observed := r.uint64()
	count := r.uint16()
	for i := 0; i < int(count); i++ {
		n := r.uint8()
		contact.AltIdentifiers = append(contact.AltIdentifiers, string(r.bytes(int(n))))
	}
	if r.err != nil {
		return corrupt("user", r.err.Error())
	}

	contact.ObservedAt = RawTime{Value: int64(observed), Epoch: EpochSeconds}
	return DecodedRecord{Contact: contact}
}

// chat and enc_chat rows only contribute a name for the peer id.
func decodeChat(raw RawRecord) DecodedRecord {
	uid, ok := raw.Int("uid")
	if !ok {
		return corrupt(raw.Kind(), "missing uid column")
	}
	name, _ := raw.Text("name")
	return DecodedRecord{Contact: &RawContact{
		ContactID:    abs64(uid),
		Name:         []byte(name),
		NameEncoding: EncodingUTF8,
	}}
}

// contact_v7 rows split the name into first/surname columns.
func decodeContactV7(raw RawRecord) DecodedRecord {
	uid, ok := raw.Int("uid")
	if !ok {
		return corrupt("contact_v7", "missing uid column")
	}
	fname, _ := raw.Text("fname")
	sname, _ := raw.Text("sname")

	parts := make([]string, 0, 2)
	for _, p := range []string{fname, sname} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return DecodedRecord{Contact: &RawContact{
		ContactID:    abs64(uid),
		Name:         []byte(strings.Join(parts, " ")),
		NameEncoding: EncodingUTF8,
	}}
}

// session rows carry the account's synchronization counters as plain
// columns; date is the last sync instant in epoch seconds.
func decodeSession(raw RawRecord) DecodedRecord {
	seq, ok := raw.Int("seq")
	if !ok {
		return corrupt("session", "missing seq column")
	}
	pts, ok := raw.Int("pts")
	if !ok {
		return corrupt("session", "missing pts column")
	}
	qts, ok := raw.Int("qts")
	if !ok {
		return corrupt("session", "missing qts column")
	}
	date, ok := raw.Int("date")
	if !ok {
		return corrupt("session", "missing date column")
	}

	return DecodedRecord{Session: &RawSession{
		Seq:      seq,
		Pts:      pts,
		Qts:      qts,
		LastSync: RawTime{Value: date, Epoch: EpochSeconds},
	}}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// blobReader reads fixed-width and length-prefixed fields from an opaque
// blob. All reads are fallible; the first failure sticks and subsequent
// reads return zero values, so decode functions check err once at the end.
// Trailing bytes after the expected layout are ignored, rotating caches pad
// their slots.
type blobReader struct {
	buf []byte
	off int
	err error
}

func newBlobReader(buf []byte) *blobReader {
	return &blobReader{buf: buf}
}

func (r *blobReader) fail(format string, args ...interface{}) {
	if r.err == nil {
		r.err = fmt.Errorf(format, args...)
	}
}

func (r *blobReader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.fail("field of %d bytes exceeds remaining %d bytes at offset %d", n, len(r.buf)-r.off, r.off)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *blobReader) uint8() uint8 {
	b := r.bytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *blobReader) uint16() uint16 {
	b := r.bytes(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *blobReader) uint32() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *blobReader) uint64() uint64 {
	b := r.bytes(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// lenPrefixed reads a u32 length prefix followed by that many bytes.
func (r *blobReader) lenPrefixed() []byte {
	n := r.uint32()
	return r.bytes(int(n))
}
