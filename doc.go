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

// Package telegommor reconstructs human-readable conversation history and
// usage patterns from a Telegram cache4.db database for forensic review.
//
// The package is the decoding and analysis pipeline only. Raw rows come in
// through a Source, flow strictly forward through five pure stages, and
// leave as a single immutable Report:
//
//	raw rows -> Decode -> Normalize -> BuildConversations -> Analyze -> Assemble
//
// Decoding is defensive by contract: a row that cannot be interpreted is
// converted into data (an Unknown record counted as a decode failure),
// never into an error, so a partially damaged database still produces a
// report of everything that could be recovered.
//
// Reading the database file lives in package cachedb; laying the report out
// as a PDF lives in package render. Neither concern leaks into this
// package: the pipeline never opens files, formats dates for display, or
// writes output.
package telegommor
