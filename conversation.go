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

import "sort"

// BuildConversations groups normalized messages into per-contact threads.
// Within a thread messages are sorted ascending by timestamp with ties
// broken by record id, so output is deterministic across runs regardless of
// the row order the cache happened to return. Contacts without any resolved
// message are represented with an empty conversation only when at least one
// alternate identifier was observed for them; name-only rows with no
// messages and no alternates are dropped.
func BuildConversations(messages []Message, contacts map[int64]Contact) []Conversation {
	groups := map[int64][]Message{}
	for _, msg := range messages {
		groups[msg.ContactID] = append(groups[msg.ContactID], msg)
	}

	ids := make([]int64, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	for id, contact := range contacts {
		if _, ok := groups[id]; ok {
			continue
		}
		if len(contact.AltIdentifiers) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	conversations := make([]Conversation, 0, len(ids))
	for _, id := range ids {
		msgs := groups[id]
		if msgs == nil {
			msgs = []Message{}
		}
		sort.SliceStable(msgs, func(i, j int) bool {
			if msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
				return msgs[i].ID < msgs[j].ID
			}
			return msgs[i].Timestamp.Before(msgs[j].Timestamp)
		})

		contact, ok := contacts[id]
		if !ok {
			// Messages can reference peers whose contact rows were lost.
			contact = Contact{ID: id}
		}

		conv := Conversation{Contact: contact, Messages: msgs}
		if len(msgs) > 0 {
			conv.Span = &TimeSpan{
				First: msgs[0].Timestamp,
				Last:  msgs[len(msgs)-1].Timestamp,
			}
		}
		conversations = append(conversations, conv)
	}

	return conversations
}
