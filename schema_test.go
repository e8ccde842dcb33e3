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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestExportJSONValidates(t *testing.T) {
	report, err := BuildReport(NewSliceSource(wellFormedCorpus()))
	require.NoError(t, err)

	document, err := ExportJSON(report)
	require.NoError(t, err)

	flaws, err := ValidateReportJSON(document)
	require.NoError(t, err)
	assert.Empty(t, flaws)

	assert.Equal(t, int64(7), gjson.GetBytes(document, "summary_counts.total_messages").Int())
	assert.Equal(t, int64(2), gjson.GetBytes(document, "summary_counts.total_contacts").Int())
	assert.Equal(t, int64(7), gjson.GetBytes(document, "session.seq").Int())
	assert.Equal(t, "telegram-report", gjson.GetBytes(document, "type").String())
}

func TestExportJSONEmptyReportValidates(t *testing.T) {
	report, err := BuildReport(NewSliceSource(nil))
	require.NoError(t, err)

	document, err := ExportJSON(report)
	require.NoError(t, err)

	flaws, err := ValidateReportJSON(document)
	require.NoError(t, err)
	assert.Empty(t, flaws)
}

func TestValidateReportJSONSessionShape(t *testing.T) {
	report, err := BuildReport(NewSliceSource(wellFormedCorpus()))
	require.NoError(t, err)
	document, err := ExportJSON(report)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(document, &doc))
	doc["session"].(map[string]interface{})["seq"] = "seven"
	mutated, err := json.Marshal(doc)
	require.NoError(t, err)

	flaws, err := ValidateReportJSON(mutated)
	require.NoError(t, err)
	assert.NotEmpty(t, flaws, "a non-integer sequence must be flagged")
}

func TestValidateReportJSON(t *testing.T) {
	tests := []struct {
		name      string
		document  string
		wantFlaws bool
		wantErr   bool
	}{
		{"not json", "{", false, true},
		{"missing type", `{"id": "telegram-report--x"}`, true, false},
		{"wrong type", `{"type": "process"}`, true, false},
		{"missing summary counts",
			`{"id": "telegram-report--x", "type": "telegram-report", "generated_at": "2023-01-02T10:00:00Z",` +
				`"conversations": [], "global_activity": {"global": {"hourly": [], "weekday": []}, "per_contact": {}}}`,
			true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flaws, err := ValidateReportJSON([]byte(tt.document))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFlaws, len(flaws) > 0)
		})
	}
}
