package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	custom_error "procurement/pkg/errors"

	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html"
)

const (
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultSheet = "Export"
)

type Column struct {
	Key   string `json:"key" binding:"required"`
	Title string `json:"title"`
}

type Request struct {
	Sheet   string                   `json:"sheet"`
	Columns []Column                 `json:"columns" binding:"required,min=1,dive"`
	Rows    []map[string]interface{} `json:"rows"`
}

func (r Request) SheetName() string {
	if strings.TrimSpace(r.Sheet) == "" {
		return defaultSheet
	}
	return strings.TrimSpace(r.Sheet)
}

// Build writes a header row with the column titles followed by one row per
// entry, every cell stringified.
func Build(req Request) (*excelize.File, error) {
	if len(req.Columns) == 0 {
		return nil, &custom_error.ValidationError{Message: "at least one column is required", Property: "columns"}
	}

	f := excelize.NewFile()
	sheet := req.SheetName()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, &custom_error.ValidationError{Message: err.Error(), Property: "sheet"}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, col := range req.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		title := col.Title
		if title == "" {
			title = col.Key
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			f.Close()
			return nil, fmt.Errorf("write header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("style header %s: %w", cell, err)
		}
	}

	for r, row := range req.Rows {
		for i, col := range req.Columns {
			text := Stringify(row[col.Key])
			if text == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellStr(sheet, cell, text); err != nil {
				f.Close()
				return nil, fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}

	return f, nil
}

// Stringify renders a JSON value as cell text. Strings holding markup are
// reduced to their text content.
func Stringify(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		if strings.Contains(value, "<") {
			return htmlText(value)
		}
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case json.Number:
		return value.String()
	case fmt.Stringer:
		return value.String()
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(b)
	}
}

func htmlText(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	var text strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(text.String()), " ")
}
