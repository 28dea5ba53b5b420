package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cpapescrim1106/blueprintproject/internal/omsdata"
)

// ReadCSV parses an OMS report export into positional rows. The first record
// is the header. Exports come straight out of the Jasper-to-CSV converter, so
// the reader tolerates a UTF-8 BOM, loose quoting, and ragged records; short
// records leave trailing columns empty, extra cells get positional names.
func ReadCSV(r io.Reader) ([]Row, error) {
	buffered := bufio.NewReaderSize(r, 64*1024)
	if bom, err := buffered.Peek(3); err == nil && len(bom) == 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = buffered.Discard(3)
	}

	reader := csv.NewReader(buffered)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ingest: read csv header: %w", err)
	}
	for i, col := range header {
		header[i] = strings.TrimSpace(col)
	}

	var rows []Row
	for index := 0; ; index++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read csv row %d: %w", index, err)
		}
		data := omsdata.NewRowData()
		for i, cell := range record {
			col := ""
			if i < len(header) {
				col = header[i]
			}
			if col == "" {
				col = fmt.Sprintf("Column %d", i+1)
			}
			data.Set(col, cell)
		}
		rows = append(rows, Row{Index: index, Data: data})
	}
	return rows, nil
}
