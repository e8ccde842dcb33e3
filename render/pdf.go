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

// Package render lays a finished report out as a PDF document. It is the
// rendering sink of the pipeline: it reads the report and nothing else.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/structs"
	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/adriangomezmorales/telegommor"
)

const barWidth = 40

// PDF writes the report as a PDF file to the given filesystem.
func PDF(report *telegommor.Report, fs afero.Fs, path string) error {
	doc := newDocument(report)

	doc.coverPage()
	doc.summaryPage()
	doc.conversationPages()
	doc.activityPage()
	doc.sessionPage()
	doc.conclusionsPage()

	file, err := fs.Create(path)
	if err != nil {
		return errors.Wrap(err, "could not create report file")
	}
	defer file.Close() // nolint:errcheck

	if err := doc.pdf.Output(file); err != nil {
		return errors.Wrap(err, "could not write report")
	}
	return nil
}

type document struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	report *telegommor.Report
}

func newDocument(report *telegommor.Report) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)

	doc := &document{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		report: report,
	}

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 10, "Telegram Forensic Report", "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		generated := report.GeneratedAt.Format("2006-01-02 15:04:05 MST")
		pdf.CellFormat(0, 8, doc.tr("Generated: "+generated), "", 1, "C", false, 0, "")
		w, _ := pdf.GetPageSize()
		pdf.Line(10, 25, w-10, 25)
		pdf.Ln(5)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	return doc
}

func (d *document) sectionTitle(title string) {
	d.pdf.SetFont("Helvetica", "B", 12)
	d.pdf.SetFillColor(240, 240, 240)
	d.pdf.CellFormat(0, 8, d.tr(title), "", 1, "L", true, 0, "")
	d.pdf.Ln(2)
}

func (d *document) coverPage() {
	d.pdf.AddPage()
	d.pdf.SetFont("Helvetica", "B", 24)
	d.pdf.CellFormat(0, 40, "TELEGRAM FORENSIC ANALYSIS", "", 1, "C", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 16)
	d.pdf.CellFormat(0, 20, "Full analysis of the cache4.db database", "", 1, "C", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.CellFormat(0, 10, d.tr("Report id: "+d.report.ID), "", 1, "C", false, 0, "")
}

func (d *document) summaryPage() {
	d.pdf.AddPage()
	d.sectionTitle("Executive Summary")

	d.pdf.SetFont("Helvetica", "", 10)
	intro := "This report contains a full analysis of the conversation history recovered from a Telegram cache database."
	d.pdf.MultiCell(0, 6, d.tr(intro), "", "L", false)
	d.pdf.Ln(4)

	counts, _ := telegommor.Lower(structs.Map(d.report.Summary)).(map[string]interface{})
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		label := strings.ReplaceAll(k, "_", " ")
		d.pdf.SetX(20)
		d.pdf.CellFormat(0, 6, d.tr(fmt.Sprintf("- %s: %v", label, counts[k])), "", 1, "L", false, 0, "")
	}
}

func (d *document) conversationPages() {
	d.pdf.AddPage()
	d.sectionTitle("Conversations")

	if len(d.report.Conversations) == 0 {
		d.pdf.SetFont("Helvetica", "", 10)
		d.pdf.MultiCell(0, 6, "No messages were found in the database.", "", "L", false)
		return
	}

	for _, conv := range d.report.Conversations {
		d.conversationHeader(conv)

		day := ""
		for _, msg := range conv.Messages {
			if msgDay := msg.Timestamp.Format("2006-01-02"); msgDay != day {
				day = msgDay
				d.dateHeader(day)
			}
			d.message(conv.Contact, msg)
		}
		d.pdf.Ln(8)
	}
}

func (d *document) conversationHeader(conv telegommor.Conversation) {
	d.pdf.SetFont("Helvetica", "B", 11)
	d.pdf.SetFillColor(200, 220, 255)
	title := fmt.Sprintf("Conversation with: %s (%d messages)", conv.Contact.Label(), conv.MessageCount())
	d.pdf.CellFormat(0, 8, d.tr(title), "", 1, "L", true, 0, "")
	d.pdf.Ln(2)
}

func (d *document) dateHeader(day string) {
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.SetFillColor(230, 230, 230)
	d.pdf.CellFormat(0, 6, d.tr("Date: "+day), "", 1, "L", true, 0, "")
	d.pdf.Ln(1)
}

func (d *document) message(contact telegommor.Contact, msg telegommor.Message) {
	direction := "From"
	if msg.Direction == telegommor.Outgoing {
		direction = "To"
	}

	d.pdf.SetFont("Helvetica", "B", 9)
	d.pdf.SetTextColor(50, 50, 50)
	header := fmt.Sprintf("%s %s | %s", direction, contact.Label(), msg.Timestamp.Format("15:04:05"))
	d.pdf.CellFormat(0, 5, d.tr(header), "", 1, "L", false, 0, "")

	body := msg.Body
	if strings.TrimSpace(body) == "" {
		body = "[" + msg.Payload.String() + " message]"
	}

	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.SetX(d.pdf.GetX() + 5)
	d.pdf.MultiCell(0, 6, d.tr(body), "", "L", false)
	d.pdf.Ln(3)
}

func (d *document) activityPage() {
	d.pdf.AddPage()
	d.sectionTitle("Activity Statistics")

	hist := d.report.Activity.Global
	if hist.Total() == 0 {
		d.pdf.SetFont("Helvetica", "", 10)
		d.pdf.MultiCell(0, 6, "No data available for the activity chart.", "", "L", false)
		return
	}

	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.MultiCell(0, 6, "Message activity by hour of day (UTC):", "", "L", false)
	d.pdf.Ln(2)

	max := 0
	for _, n := range hist.Hourly {
		if n > max {
			max = n
		}
	}

	d.pdf.SetFont("Courier", "", 9)
	for hour, n := range hist.Hourly {
		if n == 0 {
			continue
		}
		bar := strings.Repeat("#", 1+n*(barWidth-1)/max)
		d.pdf.CellFormat(0, 5, fmt.Sprintf("%02d:00 %-*s %d", hour, barWidth, bar, n), "", 1, "L", false, 0, "")
	}
}

func (d *document) sessionPage() {
	d.pdf.AddPage()
	d.sectionTitle("Session Information")

	d.pdf.SetFont("Helvetica", "", 10)
	session := d.report.Session
	if session == nil {
		d.pdf.MultiCell(0, 6, "No session information was found in the database.", "", "L", false)
		return
	}

	d.pdf.MultiCell(0, 6, "Technical state of the Telegram session:", "", "L", false)
	d.pdf.Ln(2)

	rows := []string{
		fmt.Sprintf("- Last sequence: %d", session.Seq),
		fmt.Sprintf("- PTS (peer-to-peer timestamp): %d", session.Pts),
		fmt.Sprintf("- QTS (secret chat timestamp): %d", session.Qts),
		"- Last synchronization: " + session.LastSyncAt.Format("2006-01-02 15:04:05 MST"),
	}
	for _, row := range rows {
		d.pdf.SetX(20)
		d.pdf.CellFormat(0, 6, d.tr(row), "", 1, "L", false, 0, "")
	}
}

func (d *document) conclusionsPage() {
	d.pdf.AddPage()
	d.sectionTitle("Forensic Conclusions")

	d.pdf.SetFont("Helvetica", "", 10)
	lines := []string{
		fmt.Sprintf("A total of %d messages across %d conversations were analyzed.",
			d.report.Summary.TotalMessages, d.report.Summary.TotalContacts),
	}
	if d.report.Summary.DecodeFailures > 0 {
		lines = append(lines, fmt.Sprintf("%d records could not be decoded and were excluded.",
			d.report.Summary.DecodeFailures))
	}
	if hour, count := d.report.Activity.Global.PeakHour(); count > 0 {
		lines = append(lines, fmt.Sprintf("Peak activity hour: %02d:00 UTC (%d messages).", hour, count))
	}
	for _, line := range lines {
		d.pdf.MultiCell(0, 6, d.tr(line), "", "L", false)
		d.pdf.Ln(2)
	}
}
