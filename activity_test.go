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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conversationAt(contactID int64, instants ...time.Time) Conversation {
	conv := Conversation{Contact: Contact{ID: contactID}}
	for i, at := range instants {
		conv.Messages = append(conv.Messages, Message{ID: int64(i + 1), ContactID: contactID, Timestamp: at})
	}
	return conv
}

func TestAnalyze(t *testing.T) {
	monday10 := time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC)  // a Monday
	tuesday22 := time.Date(2023, 1, 3, 22, 0, 0, 0, time.UTC) // a Tuesday

	conversations := []Conversation{
		conversationAt(1, monday10, monday10, monday10, monday10, monday10),
		conversationAt(2, tuesday22, tuesday22),
	}

	profile := Analyze(conversations)

	assert.Equal(t, 5, profile.Global.Hourly[10])
	assert.Equal(t, 2, profile.Global.Hourly[22])
	assert.Equal(t, 5, profile.Global.Weekday[int(time.Monday)])
	assert.Equal(t, 2, profile.Global.Weekday[int(time.Tuesday)])

	require.Contains(t, profile.PerContact, int64(1))
	require.Contains(t, profile.PerContact, int64(2))
	assert.Equal(t, 5, profile.PerContact[1].MessageCount)
	assert.Equal(t, 5, profile.PerContact[1].Hourly[10])
	assert.Equal(t, 2, profile.PerContact[2].Hourly[22])
}

func TestAnalyzeHistogramSums(t *testing.T) {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	var instants []time.Time
	for i := 0; i < 50; i++ {
		instants = append(instants, base.Add(time.Duration(i)*7*time.Hour))
	}

	conversations := []Conversation{
		conversationAt(1, instants[:30]...),
		conversationAt(2, instants[30:]...),
	}

	profile := Analyze(conversations)

	assert.Equal(t, 50, profile.Global.Total())
	assert.Equal(t, 50, sum(profile.Global.Weekday[:]))
	for id, activity := range profile.PerContact {
		assert.Equal(t, activity.MessageCount, activity.Total(), "contact %d", id)
		assert.Equal(t, activity.MessageCount, sum(activity.Weekday[:]), "contact %d", id)
	}
}

func TestAnalyzeOrderIndependence(t *testing.T) {
	monday10 := time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC)
	tuesday22 := time.Date(2023, 1, 3, 22, 0, 0, 0, time.UTC)

	forward := []Conversation{conversationAt(1, monday10), conversationAt(2, tuesday22)}
	backward := []Conversation{conversationAt(2, tuesday22), conversationAt(1, monday10)}

	assert.Equal(t, Analyze(forward), Analyze(backward))
}

func TestAnalyzeEmpty(t *testing.T) {
	profile := Analyze(nil)

	assert.Zero(t, profile.Global.Total())
	assert.Empty(t, profile.PerContact)
}

func TestHistogramMerge(t *testing.T) {
	var a, b Histogram
	a.observe(time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC))
	b.observe(time.Date(2023, 1, 3, 10, 0, 0, 0, time.UTC))
	b.observe(time.Date(2023, 1, 3, 22, 0, 0, 0, time.UTC))

	a.Merge(b)

	assert.Equal(t, 3, a.Total())
	assert.Equal(t, 2, a.Hourly[10])
	assert.Equal(t, 1, a.Hourly[22])
}

func TestHistogramPeakHour(t *testing.T) {
	var h Histogram
	assert.Equal(t, 0, peakCount(h))

	h.Hourly[10] = 5
	h.Hourly[22] = 2
	hour, count := h.PeakHour()
	assert.Equal(t, 10, hour)
	assert.Equal(t, 5, count)
}

func peakCount(h Histogram) int {
	_, count := h.PeakHour()
	return count
}

func sum(counts []int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
