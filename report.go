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
	"sort"
	"time"

	"github.com/google/uuid"
)

// reportType is the discriminator value carried by every exported report.
const reportType = "telegram-report"

// SummaryCounts are the headline numbers of a report.
type SummaryCounts struct {
	TotalMessages  int `json:"total_messages"`
	TotalContacts  int `json:"total_contacts"`
	TotalMedia     int `json:"total_media"`
	DecodeFailures int `json:"decode_failures"`
}

// Report is the single immutable artifact handed to the rendering sink. It
// is pure data: the core never formats dates, draws, or writes files.
type Report struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	GeneratedAt   time.Time       `json:"generated_at"`
	Conversations []Conversation  `json:"conversations"`
	Activity      ActivityProfile `json:"global_activity"`
	Session       *Session        `json:"session,omitempty"`
	Summary       SummaryCounts   `json:"summary_counts"`
}

// Assemble combines conversation threads, activity statistics and the
// recovered session state into a report. Conversations are ordered by total
// message count descending, ties
// broken by contact id ascending. This stage is pure aggregation and cannot
// fail given well-formed inputs; an empty input yields a valid empty report,
// since an empty forensic result is itself meaningful.
func Assemble(conversations []Conversation, activity ActivityProfile, session *Session, decodeFailures int) *Report {
	ordered := make([]Conversation, len(conversations))
	copy(ordered, conversations)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].MessageCount() != ordered[j].MessageCount() {
			return ordered[i].MessageCount() > ordered[j].MessageCount()
		}
		return ordered[i].Contact.ID < ordered[j].Contact.ID
	})

	totalMessages, totalMedia := 0, 0
	for _, conv := range ordered {
		totalMessages += conv.MessageCount()
		for _, msg := range conv.Messages {
			if msg.Payload == PayloadMedia {
				totalMedia++
			}
		}
	}

	return &Report{
		ID:            reportType + "--" + uuid.New().String(),
		Type:          reportType,
		GeneratedAt:   time.Now().UTC(),
		Conversations: ordered,
		Activity:      activity,
		Session:       session,
		Summary: SummaryCounts{
			TotalMessages:  totalMessages,
			TotalContacts:  len(ordered),
			TotalMedia:     totalMedia,
			DecodeFailures: decodeFailures,
		},
	}
}
