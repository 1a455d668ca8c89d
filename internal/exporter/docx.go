package exporter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"strings"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/common/units"
	"github.com/gomutex/godocx/docx"
	"github.com/gomutex/godocx/packager"
	"github.com/gomutex/godocx/wml/ctypes"
	"github.com/gomutex/godocx/wml/stypes"
)

const (
	corePropsPart = "docProps/core.xml"
	rosterStyle   = "TableGrid"
)

// CoreProperties is written to docProps/core.xml
type CoreProperties struct {
	Title   string
	Creator string
	Created time.Time
}

// addChart embeds a PNG scaled to widthInches, keeping its aspect ratio.
// godocx reads pictures from disk, so the image goes through a temp file
// owned by this call.
func addChart(doc *docx.RootDoc, png []byte, widthInches float64) error {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(png))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	if format != "png" {
		return fmt.Errorf("unsupported image format %q", format)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("image has no pixels")
	}

	tmp, err := os.CreateTemp("", "regreport-chart-*.png")
	if err != nil {
		return fmt.Errorf("stage image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(png); err != nil {
		tmp.Close()
		return fmt.Errorf("stage image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("stage image: %w", err)
	}

	width := units.Inch(widthInches)
	height := units.Inch(widthInches * float64(cfg.Height) / float64(cfg.Width))
	pic, err := doc.AddPicture(tmp.Name(), width, height)
	if err != nil {
		return fmt.Errorf("embed image: %w", err)
	}
	pic.Para.Justification(stypes.JustificationCenter)
	return nil
}

// addRosterTable adds a bordered grid with a header row.
func addRosterTable(doc *docx.RootDoc, header []string, rows [][]string) {
	if len(header) == 0 {
		return
	}
	tbl := doc.AddTable()
	tbl.Style(rosterStyle)

	hdr := tbl.AddRow()
	for _, text := range header {
		hdr.AddCell().AddParagraph(text)
	}
	for _, row := range rows {
		r := tbl.AddRow()
		for i := range header {
			text := ""
			if i < len(row) {
				text = row[i]
			}
			r.AddCell().AddParagraph(text)
		}
	}
}

type w3cdtf struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

type corePropsXML struct {
	XMLName xml.Name `xml:"cp:coreProperties"`
	CP      string   `xml:"xmlns:cp,attr"`
	DC      string   `xml:"xmlns:dc,attr"`
	DCTerms string   `xml:"xmlns:dcterms,attr"`
	XSI     string   `xml:"xmlns:xsi,attr"`
	Title   string   `xml:"dc:title"`
	Creator string   `xml:"dc:creator"`
	Created *w3cdtf  `xml:"dcterms:created,omitempty"`
}

// setCoreProperties replaces the template metadata. godocx loads core
// properties but has no setter for them.
func setCoreProperties(doc *docx.RootDoc, p CoreProperties) error {
	core := corePropsXML{
		CP:      "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		DC:      "http://purl.org/dc/elements/1.1/",
		DCTerms: "http://purl.org/dc/terms/",
		XSI:     "http://www.w3.org/2001/XMLSchema-instance",
		Title:   p.Title,
		Creator: p.Creator,
	}
	if !p.Created.IsZero() {
		core.Created = &w3cdtf{Type: "dcterms:W3CDTF", Value: p.Created.UTC().Format(time.RFC3339)}
	}

	data, err := xml.Marshal(core)
	if err != nil {
		return err
	}
	doc.FileMap.Store(corePropsPart, append([]byte(xml.Header), data...))
	return nil
}

// newDocument starts from the godocx template, which carries the Title,
// Heading and TableGrid styles the report uses.
func newDocument() (*docx.RootDoc, error) {
	return godocx.NewDocument()
}

// encodeDocument serializes doc. godocx sorts entries and fixes their
// timestamps, so equal documents encode to equal bytes.
func encodeDocument(doc *docx.RootDoc) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DocumentText is the readable content of a .docx body
type DocumentText struct {
	// Paragraphs outside tables, in document order
	Paragraphs []string
	// Tables as rows of cell text
	Tables [][][]string
}

// ReadDocument extracts paragraph and table text from a .docx package.
func ReadDocument(data []byte) (*DocumentText, error) {
	doc, err := packager.Unpack(&data)
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}
	if doc.Document == nil || doc.Document.Body == nil {
		return nil, fmt.Errorf("document has no body")
	}

	var out DocumentText
	for _, child := range doc.Document.Body.Children {
		switch {
		case child.Para != nil:
			out.Paragraphs = append(out.Paragraphs, paragraphText(child.Para.GetCT()))
		case child.Table != nil:
			out.Tables = append(out.Tables, tableText(child.Table.GetCT()))
		}
	}
	return &out, nil
}

// ReadParagraphs returns the text of every paragraph outside tables.
func ReadParagraphs(data []byte) ([]string, error) {
	doc, err := ReadDocument(data)
	if err != nil {
		return nil, err
	}
	return doc.Paragraphs, nil
}

func paragraphText(p *ctypes.Paragraph) string {
	var sb strings.Builder
	for _, child := range p.Children {
		if child.Run == nil {
			continue
		}
		for _, rc := range child.Run.Children {
			if rc.Text != nil {
				sb.WriteString(rc.Text.Text)
			}
		}
	}
	return sb.String()
}

func tableText(t *ctypes.Table) [][]string {
	var rows [][]string
	for _, rc := range t.RowContents {
		if rc.Row == nil {
			continue
		}
		var row []string
		for _, cc := range rc.Row.Contents {
			if cc.Cell == nil {
				continue
			}
			var sb strings.Builder
			for _, block := range cc.Cell.Contents {
				if block.Paragraph != nil {
					sb.WriteString(paragraphText(block.Paragraph))
				}
			}
			row = append(row, sb.String())
		}
		rows = append(rows, row)
	}
	return rows
}
