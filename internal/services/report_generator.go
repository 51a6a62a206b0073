package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"plant-analyzer/internal/logger"
	"plant-analyzer/internal/tempfile"

	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"
)

const (
	ReportTitle = "Plant Analysis Report"

	pageMargin     = 72.0
	lineSpacing    = 1.2
	titleFontSize  = 24.0
	dateFontSize   = 20.0
	bodyFontSize   = 14.0
	imageBoxWidth  = 500.0
	imageBoxHeight = 300.0
)

// Report is a finished PDF on disk. The caller owns File and must release
// it once the response is done.
type Report struct {
	File     *tempfile.File
	Filename string
}

type ReportGenerator struct {
	dir       *tempfile.Dir
	images    *ImageProcessor
	sanitizer *TextSanitizer
	now       func() time.Time
}

func NewReportGenerator(dir *tempfile.Dir, images *ImageProcessor, sanitizer *TextSanitizer) *ReportGenerator {
	return &ReportGenerator{
		dir:       dir,
		images:    images,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// Generate lays out the analysis and optional image data URI, and returns
// only after the PDF is fully written and synced. The temporary image is
// released after the write, or on the way out of any failure.
func (g *ReportGenerator) Generate(ctx context.Context, analysis, imageDataURI string) (*Report, error) {
	if err := g.dir.Ensure(); err != nil {
		return nil, err
	}

	created := g.now()
	report := &Report{
		File:     g.dir.Reserve("plant_analysis_report_", ".pdf"),
		Filename: fmt.Sprintf("plant_analysis_report_%d.pdf", created.UnixMilli()),
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(ReportTitle, true)
	pdf.SetCreator("plant-analyzer", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", titleFontSize)
	pdf.CellFormat(0, titleFontSize*lineSpacing, ReportTitle, "", 1, "C", false, 0, "")
	pdf.Ln(titleFontSize * lineSpacing)

	pdf.SetFont("Helvetica", "", dateFontSize)
	pdf.CellFormat(0, dateFontSize*lineSpacing, "Date: "+created.Format("1/2/2006"), "", 1, "L", false, 0, "")
	pdf.Ln(dateFontSize * lineSpacing)

	pdf.SetFont("Helvetica", "", bodyFontSize)
	pdf.MultiCell(0, bodyFontSize*lineSpacing, tr(g.sanitizer.Normalize(analysis)), "", "L", false)
	pdf.Ln(2 * bodyFontSize * lineSpacing)

	var tmpImage *tempfile.File
	if imageDataURI != "" {
		tmpImage = g.dir.Reserve("temp-", ".jpg")
		defer tmpImage.Release()
		if err := g.embedImage(pdf, imageDataURI, tmpImage.Path); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("report generation cancelled: %w", err)
	}

	if err := g.write(pdf, report.File); err != nil {
		report.File.Release()
		return nil, err
	}
	if tmpImage != nil {
		tmpImage.Release()
	}

	logger.WithFields(logrus.Fields{
		"path":     report.File.Path,
		"filename": report.Filename,
		"pages":    pdf.PageCount(),
	}).Info("PDF report generated")

	return report, nil
}

// embedImage re-encodes the image to tmpPath and places it centered in
// the fit box, starting a new page when the box does not fit.
func (g *ReportGenerator) embedImage(pdf *fpdf.Fpdf, dataURI, tmpPath string) error {
	_, payload, err := g.images.ParseDataURI(dataURI)
	if err != nil {
		return err
	}

	if err := g.images.ReencodeJPEG(payload, tmpPath); err != nil {
		return err
	}

	opts := fpdf.ImageOptions{ImageType: "JPG"}
	info := pdf.RegisterImageOptions(tmpPath, opts)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to embed image: %w", err)
	}

	w, h := fitWithin(info.Width(), info.Height(), imageBoxWidth, imageBoxHeight)

	pageW, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+imageBoxHeight > pageH-bottom {
		pdf.AddPage()
	}
	boxX := (pageW - imageBoxWidth) / 2
	boxY := pdf.GetY()
	x := boxX + (imageBoxWidth-w)/2
	y := boxY + (imageBoxHeight-h)/2
	pdf.ImageOptions(tmpPath, x, y, w, h, false, opts, 0, "")
	pdf.SetY(boxY + imageBoxHeight)
	return nil
}

func (g *ReportGenerator) write(pdf *fpdf.Fpdf, file *tempfile.File) error {
	f, err := os.Create(file.Path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if err := pdf.Output(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush PDF: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close PDF: %w", err)
	}
	return nil
}

// fitWithin scales (w, h) to the largest size that fits the box while
// keeping the aspect ratio, upscaling small images as well.
func fitWithin(w, h, boxW, boxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return boxW, boxH
	}
	scale := boxW / w
	if s := boxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}
