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
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/qri-io/jsonschema"
	"github.com/tidwall/gjson"
)

// reportSchema describes the exported report document.
const reportSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "telegram-report",
  "type": "object",
  "required": ["id", "type", "generated_at", "conversations", "global_activity", "summary_counts"],
  "properties": {
    "id": {"type": "string", "pattern": "^telegram-report--"},
    "type": {"type": "string", "const": "telegram-report"},
    "generated_at": {"type": "string"},
    "conversations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["contact", "messages"],
        "properties": {
          "contact": {
            "type": "object",
            "required": ["contact_id"],
            "properties": {
              "contact_id": {"type": "integer"},
              "display_name": {"type": "string"},
              "alt_identifiers": {"type": "array", "items": {"type": "string"}}
            }
          },
          "messages": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "contact_id", "timestamp", "direction", "payload_kind"],
              "properties": {
                "id": {"type": "integer"},
                "contact_id": {"type": "integer"},
                "timestamp": {"type": "string"},
                "direction": {"type": "integer"},
                "payload_kind": {"type": "integer"},
                "body": {"type": "string"}
              }
            }
          },
          "time_span": {
            "type": "object",
            "required": ["first", "last"]
          }
        }
      }
    },
    "global_activity": {
      "type": "object",
      "required": ["global", "per_contact"],
      "properties": {
        "global": {
          "type": "object",
          "required": ["hourly", "weekday"],
          "properties": {
            "hourly": {"type": "array", "minItems": 24, "maxItems": 24, "items": {"type": "integer"}},
            "weekday": {"type": "array", "minItems": 7, "maxItems": 7, "items": {"type": "integer"}}
          }
        }
      }
    },
    "session": {
      "type": "object",
      "required": ["seq", "pts", "qts", "last_sync_at"],
      "properties": {
        "seq": {"type": "integer"},
        "pts": {"type": "integer"},
        "qts": {"type": "integer"},
        "last_sync_at": {"type": "string"}
      }
    },
    "summary_counts": {
      "type": "object",
      "required": ["total_messages", "total_contacts", "total_media", "decode_failures"],
      "properties": {
        "total_messages": {"type": "integer", "minimum": 0},
        "total_contacts": {"type": "integer", "minimum": 0},
        "total_media": {"type": "integer", "minimum": 0},
        "decode_failures": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

// ValidateReportJSON checks an exported report document against the report
// schema. Schema violations come back as flaw strings, not errors; the
// error return is reserved for unusable input or a broken schema.
func ValidateReportJSON(document []byte) (flaws []string, err error) {
	flaws = []string{}

	if !gjson.ValidBytes(document) {
		return nil, errors.New("document is not valid JSON")
	}

	docType := gjson.GetBytes(document, "type")
	if !docType.Exists() {
		flaws = append(flaws, "report needs to have a type")
	} else if docType.String() != reportType {
		flaws = append(flaws, fmt.Sprintf("unexpected report type %q", docType.String()))
	}

	schema := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(reportSchema), schema); err != nil {
		return nil, errors.Wrap(err, "could not parse report schema")
	}

	keyErrs, err := schema.ValidateBytes(context.Background(), document)
	if err != nil {
		return nil, errors.Wrap(err, "could not validate report")
	}
	for _, keyErr := range keyErrs {
		flaws = append(flaws, fmt.Sprintf("failed to validate report: %s", keyErr.Error()))
	}
	return flaws, nil
}
