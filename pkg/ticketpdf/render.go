// Package ticketpdf prints tickets as single-page PDFs.
package ticketpdf

import (
	"bytes"
	"fmt"
	"time"

	"cinema-ticketing/internal/data/entity"

	"github.com/phpdave11/gofpdf"
)

// Render returns the PDF for a ticket. Times are printed in loc (UTC when nil).
func Render(ticket *entity.TicketDetail, holder string, loc *time.Location) ([]byte, error) {
	if ticket == nil {
		return nil, fmt.Errorf("render ticket: nil ticket")
	}
	if loc == nil {
		loc = time.UTC
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetTitle("Ticket "+ticket.ID.String(), false)
	pdf.SetCreator("cinema-ticketing", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "CINEMA TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(0, 8, tr(ticket.MovieTitle), "", "", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		"Hall      : " + ticket.HallName,
		"Starts    : " + ticket.StartTime.In(loc).Format("Mon 02 Jan 2006 15:04"),
		"Seat      : " + ticket.SeatNumber,
		"Price     : " + fmt.Sprintf("%.2f", ticket.Price),
		"Holder    : " + holder,
		"Purchased : " + ticket.PurchaseTime.In(loc).Format("2006-01-02 15:04"),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, tr(s))
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Courier", "", 9)
	pdf.Cell(0, 6, "Ticket ID: "+ticket.ID.String())
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Valid for one admission to the session above. Show this ticket at the entrance.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ticket %s: %w", ticket.ID.String(), err)
	}
	return buf.Bytes(), nil
}
