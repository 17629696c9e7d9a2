package tabular

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"salescope/domain/core"

	"github.com/xuri/excelize/v2"
)

// RawTable is a header row plus untyped string cells, exactly as read
// from disk. Typing happens in the loader, not here.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// DataReader reads delimited text and Excel workbooks into a RawTable.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader for the given path, picking the format
// from the file extension. Anything that is not .xlsx is treated as CSV.
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" {
		fileType = "xlsx"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// Read loads the file into a RawTable.
func (r *DataReader) Read() (*RawTable, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", core.ErrParse, r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readExcel()
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", core.ErrParse, r.fileType)
	}
}

func (r *DataReader) readCSV() (*RawTable, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", core.ErrParse, r.filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", core.ErrParse, r.filePath, err)
	}
	log.Printf("[DataReader] CSV file read (%d rows)", len(rows))

	return r.assemble(rows)
}

func (r *DataReader) readExcel() (*RawTable, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", core.ErrParse, r.filePath, err)
	}
	defer f.Close()

	// First sheet, whatever it is named.
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook %s has no sheets", core.ErrParse, r.filePath)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %v", core.ErrParse, sheets[0], err)
	}
	log.Printf("[DataReader] Excel sheet %q read (%d rows)", sheets[0], len(rows))

	return r.assemble(rows)
}

func (r *DataReader) assemble(rows [][]string) (*RawTable, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s needs a header row and at least one data row", core.ErrParse, r.filePath)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell)
		}
		data = append(data, cells)
	}

	log.Printf("[DataReader] %s processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(data))

	return &RawTable{Headers: headers, Rows: data}, nil
}
