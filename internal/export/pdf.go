// Package export packages generated codes into printable documents.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	// qrSideMM is the printed edge length of the code on an A4 page.
	qrSideMM        = 120.0
	titleFontSize   = 18
	captionFontSize = 10
	maxCaptionRunes = 500
	minPasswordLen  = 4
)

var ErrPasswordTooShort = fmt.Errorf("PDF password must be at least %d characters", minPasswordLen)

// PDFOptions controls the document layout and protection.
type PDFOptions struct {
	Title string
	// Caption is printed below the code, usually the encoded text.
	Caption string
	// ImageType is "PNG" or "JPG".
	ImageType      string
	EnablePassword bool
	Password       string
	CreatedAt      time.Time
}

// RenderPDF lays out image as a single A4 page. When password protection is
// enabled the document requires the password to open and only allows
// printing.
func RenderPDF(image []byte, opts PDFOptions) ([]byte, error) {
	if len(image) == 0 {
		return nil, errors.New("no image to export")
	}
	if opts.EnablePassword && len(opts.Password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}
	imageType := strings.ToUpper(opts.ImageType)
	if imageType == "" {
		imageType = "PNG"
	}
	if imageType == "JPEG" {
		imageType = "JPG"
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	if opts.EnablePassword {
		pdf.SetProtection(fpdf.CnProtectPrint, opts.Password, "")
	}
	pdf.SetTitle(opts.Title, true)
	pdf.SetCreator("qrstudio", true)
	if !opts.CreatedAt.IsZero() {
		pdf.SetCreationDate(opts.CreatedAt)
	}
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, _ := pdf.GetPageSize()
	left, top, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	if opts.Title != "" {
		pdf.SetFont("Helvetica", "B", titleFontSize)
		pdf.CellFormat(contentW, 12, tr(opts.Title), "", 1, "C", false, 0, "")
		pdf.Ln(6)
	}

	imgOpts := fpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader("qr", imgOpts, bytes.NewReader(image))
	y := pdf.GetY()
	if opts.Title == "" {
		y = top + 20
	}
	pdf.ImageOptions("qr", (pageW-qrSideMM)/2, y, qrSideMM, qrSideMM, false, imgOpts, 0, "")
	pdf.SetY(y + qrSideMM + 8)

	if caption := truncateRunes(opts.Caption, maxCaptionRunes); caption != "" {
		pdf.SetFont("Helvetica", "", captionFontSize)
		pdf.MultiCell(contentW, 5, tr(caption), "", "C", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncateRunes(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
