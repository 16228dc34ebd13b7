package facultyload

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet name of the xlsx export.
const SheetName = "Faculty Loads"

func headerRecord() []string {
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = string(c)
	}
	return out
}

func (r Row) record() []string {
	return []string{
		r.Faculty,
		r.FallCourseSections, formatHours(r.FallHours),
		r.SpringCourseSections, formatHours(r.SpringHours),
		r.SummerCourseSections, formatHours(r.SummerHours),
		r.OtherDuties, formatHours(r.OtherHours),
		formatHours(r.TotalHours),
	}
}

// WriteCSV writes the report with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headerRecord()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return fmt.Errorf("write csv row %q: %w", r.Faculty, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX renders the report as a single-sheet workbook. Hour columns are
// written as numbers so they can be summed in a spreadsheet.
func WriteXLSX(rows []Row) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	f.SetColWidth(SheetName, "A", "A", 20)
	f.SetColWidth(SheetName, "B", "J", 24)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	header := headerRecord()
	for i, h := range header {
		f.SetCellValue(SheetName, cellName(i, 1), h)
	}
	f.SetCellStyle(SheetName, cellName(0, 1), cellName(len(header)-1, 1), headerStyle)

	for i, r := range rows {
		row := i + 2
		values := []any{
			r.Faculty,
			r.FallCourseSections, r.FallHours,
			r.SpringCourseSections, r.SpringHours,
			r.SummerCourseSections, r.SummerHours,
			r.OtherDuties, r.OtherHours,
			r.TotalHours,
		}
		for col, v := range values {
			f.SetCellValue(SheetName, cellName(col, row), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
