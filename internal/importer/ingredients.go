package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/tabletpath/internal/model"
	"github.com/xuri/excelize/v2"
)

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Name       int
	Percentage int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"name":       {"name", "ingredient", "excipient", "component", "material", "item", "description"},
	"percentage": {"percentage", "percent", "%", "pct", "w/w", "w/w %", "% w/w", "share", "proportion"},
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// Returns the mapping and true if a header was detected, or a default positional
// mapping (name, percentage) and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Name: -1, Percentage: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "name":
					if mapping.Name == -1 {
						mapping.Name = i
					}
				case "percentage":
					if mapping.Percentage == -1 {
						mapping.Percentage = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Name: 0, Percentage: 1}, false
	}
	return mapping, true
}

// parsePercentage accepts "45", "45%", "12,5" and "12.5 %".
func parsePercentage(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}

// parseIngredientRow extracts an Ingredient from a row using the given
// column mapping. Returns the ingredient and any error message.
func parseIngredientRow(row []string, mapping ColumnMapping, rowLabel string) (model.Ingredient, string) {
	name := getCell(row, mapping.Name)
	if name == "" {
		return model.Ingredient{}, fmt.Sprintf("%s: Missing ingredient name", rowLabel)
	}

	pctStr := getCell(row, mapping.Percentage)
	if pctStr == "" {
		return model.Ingredient{}, fmt.Sprintf("%s: Missing percentage for '%s'", rowLabel, name)
	}
	pct, err := parsePercentage(pctStr)
	if err != nil {
		return model.Ingredient{}, fmt.Sprintf("%s: Invalid percentage '%s'", rowLabel, pctStr)
	}
	if pct <= 0 || pct > 100 {
		return model.Ingredient{}, fmt.Sprintf("%s: Percentage must be within (0, 100], got %g", rowLabel, pct)
	}

	return model.Ingredient{Name: name, Percentage: pct}, ""
}

// ImportIngredients imports a base-excipient table, choosing the reader
// from the file extension (.csv, .txt, .xlsx, .xls).
func ImportIngredients(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls", ".xlsm":
		return ImportExcel(path)
	case ".csv", ".txt", ".tsv":
		return ImportCSV(path)
	default:
		return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type '%s'", filepath.Ext(path))}}
	}
}

// ImportCSV imports ingredients from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports ingredients from a CSV reader with a specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports ingredients from the first sheet of an Excel workbook.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Name == -1 {
			missing = append(missing, "Name")
		}
		if mapping.Percentage == -1 {
			missing = append(missing, "Percentage")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 2 {
		// Unrecognised header: second column is not a number
		if _, err := parsePercentage(getCell(rows[0], 1)); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		ing, errMsg := parseIngredientRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Ingredients = append(result.Ingredients, ing)
	}

	if len(result.Ingredients) > 0 {
		var total float64
		for _, ing := range result.Ingredients {
			total += ing.Percentage
		}
		if math.Abs(total-100) > 0.01 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Ingredient percentages sum to %.2f%%, not 100%%", total))
		}
	}

	return result
}

// Template builds a formulation template from the imported ingredients.
func (r ImportResult) Template(productType, description string) (model.FormulationTemplate, error) {
	if len(r.Ingredients) == 0 {
		return model.FormulationTemplate{}, fmt.Errorf("no ingredients imported for %q", productType)
	}
	return model.NewFormulationTemplate(productType, description, r.Ingredients), nil
}
