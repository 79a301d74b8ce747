// Package exporter renders the assembled report as the make-ready
// spreadsheet: pole-level columns A–I, existing midspan data in J–K, and the
// attacher list in L–O, with span header rows colored by their style hint.
package exporter

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/linecrew/makeready-cli/internal/model"
	"github.com/linecrew/makeready-cli/internal/units"
)

const sheetName = "Make Ready Report"

// Fill colors, matching the report template.
const (
	colorHeader    = "A6C9EC"
	colorLightBlue = "ADD8E6"
	colorOrange    = "FFCC99"
	colorPurple    = "E6C3E6"
)

// Column indexes (0-based).
const (
	colOperation = iota
	colAction
	colOwner
	colPoleNumber
	colStructure
	colRiser
	colGuy
	colPLA
	colGrade
	colLowestComm
	colLowestElectrical
	colDescription
	colExisting
	colProposed
	colMidspan
)

var columnWidths = []float64{10, 15, 15, 12, 20, 15, 15, 15, 15, 15, 15, 25, 12, 12, 12}

// WriteFile renders the poles to an xlsx file at path.
func WriteFile(poles []model.Pole, path string) error {
	f, err := build(poles)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "exporter: save %s", path)
}

// Write renders the poles as xlsx to w.
func Write(poles []model.Pole, w io.Writer) error {
	f, err := build(poles)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "exporter: write")
}

func build(poles []model.Pole) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return nil, eris.Wrap(err, "exporter: add sheet")
	}

	for i, w := range columnWidths {
		sheet.SetColWidth(i, i, w)
	}

	writeHeaders(sheet)

	row := 3
	for i, pole := range poles {
		row = writePole(sheet, row, i+1, pole)
	}

	return f, nil
}

func writeHeaders(sheet *xlsx.Sheet) {
	mainHeaders := []string{
		"Operation Number",
		"Attachment Action\n(I)nstalling\n(R)emoving\n(E)xisting",
		"Pole Owner",
		"Pole #",
		"Pole Structure",
		"Proposed Riser\n(Yes/No) &\nQTY",
		"Proposed Guy\n(Yes/No) &\nQTY",
		"PLA (%) with proposed attachment",
		"Construction Grade of Analysis",
	}
	for col, text := range mainHeaders {
		c := sheet.Cell(0, col)
		c.SetString(text)
		c.Merge(0, 2)
		c.SetStyle(headerStyle(colorHeader))
	}

	groupComm := sheet.Cell(0, colLowestComm)
	groupComm.SetString("Existing Mid-Span Data")
	groupComm.Merge(1, 0)
	groupComm.SetStyle(headerStyle(colorHeader))

	groupMR := sheet.Cell(0, colDescription)
	groupMR.SetString("Make Ready Data")
	groupMR.Merge(3, 0)
	groupMR.SetStyle(headerStyle(colorHeader))

	for col, text := range map[int]string{
		colLowestComm:       "Height Lowest Com",
		colLowestElectrical: "Height Lowest CPS Electrical",
		colDescription:      "Attacher Description",
	} {
		c := sheet.Cell(1, col)
		c.SetString(text)
		c.Merge(0, 1)
		c.SetStyle(headerStyle(colorHeader))
	}

	height := sheet.Cell(1, colExisting)
	height.SetString("Attachment Height")
	height.Merge(1, 0)
	height.SetStyle(headerStyle(colorHeader))

	midspan := sheet.Cell(1, colMidspan)
	midspan.SetString("Mid-Span\n(same span as existing)\nProposed")
	midspan.SetStyle(headerStyle(colorHeader))

	for col, text := range map[int]string{
		colExisting: "Existing",
		colProposed: "Proposed",
		colMidspan:  "Proposed",
	} {
		c := sheet.Cell(2, col)
		c.SetString(text)
		c.SetStyle(headerStyle(colorHeader))
	}
}

// writePole renders one pole starting at startRow and returns the next free
// row. Pole-level cells (A–I) merge vertically across every row the pole
// occupies; J–K carry the existing midspan values down to the from/to block.
func writePole(sheet *xlsx.Sheet, startRow, fallbackOp int, pole model.Pole) int {
	attachers := pole.Attachers
	attacherRows := len(attachers)
	if attacherRows == 0 {
		attacherRows = 1
	}
	// attacher rows + from/to header + from/to data
	totalRows := attacherRows + 2

	op := pole.OperationNum
	if op == 0 {
		op = fallbackOp
	}

	poleValues := []string{
		"", // operation number set as int below
		string(pole.Action),
		orNA(pole.Owner),
		orNA(pole.PoleNumber),
		orNA(pole.Structure),
		orNA(pole.ProposedRiser),
		orNA(pole.ProposedGuy),
		orNA(pole.PLAPercentage),
		orNA(pole.ConstructionGrade),
	}
	for col, text := range poleValues {
		c := sheet.Cell(startRow, col)
		if col == colOperation {
			c.SetInt(op)
		} else {
			c.SetString(text)
		}
		c.Merge(0, totalRows-1)
		c.SetStyle(centeredStyle())
	}

	comm := sheet.Cell(startRow, colLowestComm)
	comm.SetString(orNA(pole.LowestMidspanComm))
	comm.Merge(0, attacherRows-1)
	comm.SetStyle(centeredStyle())

	elec := sheet.Cell(startRow, colLowestElectrical)
	elec.SetString(orNA(pole.LowestMidspanElectrical))
	elec.Merge(0, attacherRows-1)
	elec.SetStyle(centeredStyle())

	row := startRow
	for _, a := range attachers {
		if a.IsHeader() {
			writeSpanHeader(sheet, row, a)
		} else {
			writeAttachment(sheet, row, a)
		}
		row++
	}
	if len(attachers) == 0 {
		for col := colDescription; col <= colMidspan; col++ {
			sheet.Cell(row, col).SetStyle(centeredStyle())
		}
		row++
	}

	// From/To pole block under the midspan columns.
	fromHeader := sheet.Cell(row, colLowestComm)
	fromHeader.SetString("From Pole")
	fromHeader.SetStyle(headerStyle(colorLightBlue))
	toHeader := sheet.Cell(row, colLowestElectrical)
	toHeader.SetString("To Pole")
	toHeader.SetStyle(headerStyle(colorLightBlue))
	row++

	fromCell := sheet.Cell(row, colLowestComm)
	fromCell.SetString(orNA(pole.FromPole))
	fromCell.SetStyle(centeredStyle())
	toCell := sheet.Cell(row, colLowestElectrical)
	toCell.SetString(orNA(pole.ToPole))
	toCell.SetStyle(centeredStyle())

	spanMidspan := sheet.Cell(row, colMidspan)
	spanMidspan.SetString(pole.MidspanProposed)
	spanMidspan.SetStyle(centeredStyle())
	row++

	return row
}

func writeSpanHeader(sheet *xlsx.Sheet, row int, a model.Attachment) {
	c := sheet.Cell(row, colDescription)
	c.SetString(a.Description)
	c.Merge(colMidspan-colDescription, 0)
	c.SetStyle(headerStyle(fillForHint(a.StyleHint)))
}

func writeAttachment(sheet *xlsx.Sheet, row int, a model.Attachment) {
	desc := sheet.Cell(row, colDescription)
	desc.SetString(a.Description)
	desc.SetStyle(leftStyle())

	existing := sheet.Cell(row, colExisting)
	existing.SetString(formatHeight(a.Existing))
	existing.SetStyle(centeredStyle())

	proposed := sheet.Cell(row, colProposed)
	proposed.SetString(formatHeight(a.Proposed))
	proposed.SetStyle(centeredStyle())

	midspan := sheet.Cell(row, colMidspan)
	midspan.SetString(a.Midspan)
	midspan.SetStyle(centeredStyle())
}

func fillForHint(hint string) string {
	switch hint {
	case "purple":
		return colorPurple
	case "light-blue":
		return colorLightBlue
	default:
		return colorOrange
	}
}

func formatHeight(inches *float64) string {
	if s := units.ToFeetInchesPtr(inches); s != "" {
		return s
	}
	return "N/A"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func headerStyle(color string) *xlsx.Style {
	s := xlsx.NewStyle()
	s.Fill = *xlsx.NewFill("solid", color, color)
	s.ApplyFill = true
	s.Font.Bold = true
	s.ApplyFont = true
	s.Alignment = xlsx.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	s.ApplyAlignment = true
	s.Border = *xlsx.NewBorder("thin", "thin", "thin", "thin")
	s.ApplyBorder = true
	return s
}

func centeredStyle() *xlsx.Style {
	s := xlsx.NewStyle()
	s.Alignment = xlsx.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	s.ApplyAlignment = true
	s.Border = *xlsx.NewBorder("thin", "thin", "thin", "thin")
	s.ApplyBorder = true
	return s
}

func leftStyle() *xlsx.Style {
	s := xlsx.NewStyle()
	s.Alignment = xlsx.Alignment{Horizontal: "left", Vertical: "center"}
	s.ApplyAlignment = true
	s.Border = *xlsx.NewBorder("thin", "thin", "thin", "thin")
	s.ApplyBorder = true
	return s
}
