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

import "time"

// Histogram holds plain frequency counts of message instants by hour of day
// and by weekday. Buckets use UTC; weekday 0 is Sunday. No normalization is
// applied, presentation is the renderer's concern.
type Histogram struct {
	Hourly  [24]int `json:"hourly"`
	Weekday [7]int  `json:"weekday"`
}

func (h *Histogram) observe(t time.Time) {
	utc := t.UTC()
	h.Hourly[utc.Hour()]++
	h.Weekday[int(utc.Weekday())]++
}

// Merge folds another histogram into this one. Analyze is a fold of observe
// over all messages, so partial histograms from independent message subsets
// can be merged in any order.
func (h *Histogram) Merge(other Histogram) {
	for i, n := range other.Hourly {
		h.Hourly[i] += n
	}
	for i, n := range other.Weekday {
		h.Weekday[i] += n
	}
}

// Total returns the number of observed messages.
func (h Histogram) Total() int {
	total := 0
	for _, n := range h.Hourly {
		total += n
	}
	return total
}

// PeakHour returns the busiest hour bucket and its count. Ties resolve to
// the earliest hour.
func (h Histogram) PeakHour() (hour, count int) {
	for i, n := range h.Hourly {
		if n > count {
			hour, count = i, n
		}
	}
	return hour, count
}

// ContactActivity is the per-contact slice of an ActivityProfile.
type ContactActivity struct {
	Histogram
	MessageCount int `json:"message_count"`
}

// ActivityProfile aggregates temporal usage statistics over the corpus and
// per conversation. It is derived data, recomputable from the conversations
// at any time.
type ActivityProfile struct {
	Global     Histogram                 `json:"global"`
	PerContact map[int64]ContactActivity `json:"per_contact"`
}

// Analyze computes the activity profile for a set of conversations. The
// result depends only on the multiset of message timestamps, not on
// processing order.
func Analyze(conversations []Conversation) ActivityProfile {
	profile := ActivityProfile{
		PerContact: make(map[int64]ContactActivity, len(conversations)),
	}

	for _, conv := range conversations {
		var partial Histogram
		for _, msg := range conv.Messages {
			partial.observe(msg.Timestamp)
		}

		activity := profile.PerContact[conv.Contact.ID]
		activity.Histogram.Merge(partial)
		activity.MessageCount += len(conv.Messages)
		profile.PerContact[conv.Contact.ID] = activity

		profile.Global.Merge(partial)
	}

	return profile
}
