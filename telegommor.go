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

// Source supplies raw rows to the pipeline. Next returns the next row and
// true, or false once the source is drained. Errors are reserved for the
// row transport itself (a failing read); rows whose content cannot be
// decoded are not errors, they surface as decode failures in the report.
type Source interface {
	Next() (RawRecord, bool, error)
}

// SliceSource adapts an in-memory set of rows to the Source interface.
type SliceSource struct {
	records []RawRecord
	next    int
}

// NewSliceSource returns a Source over the given rows.
func NewSliceSource(records []RawRecord) *SliceSource {
	return &SliceSource{records: records}
}

func (s *SliceSource) Next() (RawRecord, bool, error) {
	if s.next >= len(s.records) {
		return nil, false, nil
	}
	r := s.records[s.next]
	s.next++
	return r, true, nil
}

// BuildReport drains the source through the full pipeline: decode,
// normalize, group into conversations, analyze activity, assemble. Data
// flows strictly forward; each stage only reads the previous stage's sealed
// output. A source with zero rows yields a valid empty report.
func BuildReport(src Source) (*Report, error) {
	var decoded []DecodedRecord
	for {
		raw, ok, err := src.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		decoded = append(decoded, Decode(raw))
	}

	messages, contacts, session, failures := Normalize(decoded)
	conversations := BuildConversations(messages, contacts)
	activity := Analyze(conversations)
	return Assemble(conversations, activity, session, failures), nil
}
