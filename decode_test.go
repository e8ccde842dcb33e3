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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageBlobV2(payload byte, body string) []byte {
	blob := []byte{payload}
	blob = binary.LittleEndian.AppendUint32(blob, uint32(len(body)))
	return append(blob, body...)
}

func messageBlobV4(payload, encoding byte, body []byte) []byte {
	blob := []byte{payload, encoding}
	blob = binary.LittleEndian.AppendUint32(blob, uint32(len(body)))
	return append(blob, body...)
}

func userBlob(observed uint64, alts ...string) []byte {
	blob := binary.LittleEndian.AppendUint64(nil, observed)
	blob = binary.LittleEndian.AppendUint16(blob, uint16(len(alts)))
	for _, alt := range alts {
		blob = append(blob, byte(len(alt)))
		blob = append(blob, alt...)
	}
	return blob
}

func messageRecordV2(mid, uid, date, out int64, data []byte) RawRecord {
	return RawRecord{"kind": "message_v2", "mid": mid, "uid": uid, "date": date, "out": out, "data": data}
}

func messageRecordV4(mid, uid, date, out int64, data []byte) RawRecord {
	return RawRecord{"kind": "message_v4", "mid": mid, "uid": uid, "date": date, "out": out, "data": data}
}

func TestDecodeMessageV2(t *testing.T) {
	rec := Decode(messageRecordV2(7, -42, 1672653600, 1, messageBlobV2(0, "hola")))

	require.NotNil(t, rec.Message)
	assert.Equal(t, int64(7), rec.Message.ID)
	assert.Equal(t, int64(42), rec.Message.ContactID, "contact ids are canonicalized to their absolute value")
	assert.Equal(t, RawTime{Value: 1672653600, Epoch: EpochSeconds}, rec.Message.Time)
	assert.Equal(t, Outgoing, rec.Message.Direction)
	assert.Equal(t, PayloadText, rec.Message.Payload)
	assert.Equal(t, []byte("hola"), rec.Message.Body)
	assert.Equal(t, EncodingUTF8, rec.Message.BodyEncoding)
}

func TestDecodeMessageV4(t *testing.T) {
	utf16Body := []byte{'h', 0, 'i', 0}
	rec := Decode(messageRecordV4(9, 42, 1672653600123, 0, messageBlobV4(1, 1, utf16Body)))

	require.NotNil(t, rec.Message)
	assert.Equal(t, RawTime{Value: 1672653600123, Epoch: EpochMillis}, rec.Message.Time)
	assert.Equal(t, Incoming, rec.Message.Direction)
	assert.Equal(t, PayloadMedia, rec.Message.Payload)
	assert.Equal(t, EncodingUTF16LE, rec.Message.BodyEncoding)
	assert.Equal(t, utf16Body, rec.Message.Body)
}

func TestDecodeUnknown(t *testing.T) {
	tests := []struct {
		name   string
		raw    RawRecord
		reason UnknownReason
	}{
		{"unrecognized discriminator", RawRecord{"kind": "message_v9"}, ReasonUnsupported},
		{"no discriminator", RawRecord{"mid": int64(1)}, ReasonUnsupported},
		{"missing data blob", RawRecord{"kind": "message_v2", "mid": int64(1), "uid": int64(2), "date": int64(3)}, ReasonCorrupt},
		{"length prefix exceeds remaining bytes",
			messageRecordV2(1, 2, 3, 0, []byte{0, 0xFF, 0xFF, 0xFF, 0xFF, 'x'}), ReasonCorrupt},
		{"truncated fixed-width field", messageRecordV2(1, 2, 3, 0, []byte{0, 4}), ReasonCorrupt},
		{"payload kind out of range", messageRecordV2(1, 2, 3, 0, messageBlobV2(9, "x")), ReasonCorrupt},
		{"encoding tag out of range", messageRecordV4(1, 2, 3, 0, messageBlobV4(0, 7, []byte("x"))), ReasonCorrupt},
		{"user with truncated alt identifier",
			RawRecord{"kind": "user", "uid": int64(1), "name": "a", "data": []byte{0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 20}}, ReasonCorrupt},
		{"session missing counters", RawRecord{"kind": "session", "seq": int64(1)}, ReasonCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Decode(tt.raw)
			require.NotNil(t, rec.Unknown)
			assert.Equal(t, tt.reason, rec.Unknown.Reason)
			assert.NotEmpty(t, rec.Unknown.Detail)
		})
	}
}

func TestDecodeUser(t *testing.T) {
	rec := Decode(RawRecord{
		"kind": "user",
		"uid":  int64(42),
		"name": "Ana López",
		"data": userBlob(1672653600, "+3466612345", "@ana"),
	})

	require.NotNil(t, rec.Contact)
	assert.Equal(t, int64(42), rec.Contact.ContactID)
	assert.Equal(t, []byte("Ana López"), rec.Contact.Name)
	assert.Equal(t, []string{"+3466612345", "@ana"}, rec.Contact.AltIdentifiers)
	assert.Equal(t, RawTime{Value: 1672653600, Epoch: EpochSeconds}, rec.Contact.ObservedAt)
}

func TestDecodeUserWithoutBlob(t *testing.T) {
	rec := Decode(RawRecord{"kind": "user", "uid": int64(42), "name": "Ana", "data": []byte{}})

	require.NotNil(t, rec.Contact)
	assert.Empty(t, rec.Contact.AltIdentifiers)
	assert.Zero(t, rec.Contact.ObservedAt.Value)
}

func TestDecodeChat(t *testing.T) {
	tests := []struct {
		name string
		raw  RawRecord
		want RawContact
	}{
		{"chat with negated group id",
			RawRecord{"kind": "chat", "uid": int64(-100), "name": "familia"},
			RawContact{ContactID: 100, Name: []byte("familia")}},
		{"enc_chat",
			RawRecord{"kind": "enc_chat", "uid": int64(7), "name": "secret"},
			RawContact{ContactID: 7, Name: []byte("secret")}},
		{"contact_v7 joins name parts",
			RawRecord{"kind": "contact_v7", "uid": int64(3), "fname": "Ana", "sname": "López"},
			RawContact{ContactID: 3, Name: []byte("Ana López")}},
		{"contact_v7 with empty surname",
			RawRecord{"kind": "contact_v7", "uid": int64(3), "fname": "Ana", "sname": ""},
			RawContact{ContactID: 3, Name: []byte("Ana")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Decode(tt.raw)
			require.NotNil(t, rec.Contact)
			assert.Equal(t, tt.want.ContactID, rec.Contact.ContactID)
			assert.Equal(t, tt.want.Name, rec.Contact.Name)
		})
	}
}

func TestDecodeSession(t *testing.T) {
	rec := Decode(RawRecord{
		"kind": "session",
		"seq":  int64(7),
		"pts":  int64(100),
		"date": int64(1672653600),
		"qts":  int64(3),
	})

	require.NotNil(t, rec.Session)
	assert.Equal(t, int64(7), rec.Session.Seq)
	assert.Equal(t, int64(100), rec.Session.Pts)
	assert.Equal(t, int64(3), rec.Session.Qts)
	assert.Equal(t, RawTime{Value: 1672653600, Epoch: EpochSeconds}, rec.Session.LastSync)
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	blob := append(messageBlobV2(0, "hi"), 0xDE, 0xAD)
	rec := Decode(messageRecordV2(1, 2, 3, 0, blob))

	require.NotNil(t, rec.Message)
	assert.Equal(t, []byte("hi"), rec.Message.Body)
}
