package importer

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/toeicbot/pkg/models"
)

// Placeholder values for fields a plain word list does not carry
const (
	DefaultPartOfSpeech = "unknown"
	DefaultTranslation  = "To be updated"
)

// Store receives imported words
type Store interface {
	InsertIfAbsent(ctx context.Context, entry *models.VocabularyEntry) (bool, error)
}

// ImportConfig defines the column layout for CSV and Excel imports
type ImportConfig struct {
	WordColumn          string // Column with the word
	PartOfSpeechColumn  string // Column with the part of speech
	PronunciationColumn string // Column with the pronunciation
	TranslationColumn   string // Column with the translation
	SheetName           string // Sheet to import, empty means the first sheet
	StartRow            int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn:          "A",
		PartOfSpeechColumn:  "B",
		PronunciationColumn: "C",
		TranslationColumn:   "D",
		StartRow:            2, // By default, start from the second row (skip header)
	}
}

// Result holds the result of an import operation
type Result struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// Importer loads vocabulary files into the word bank
type Importer struct {
	store  Store
	config ImportConfig
}

// New creates an importer writing to store
func New(store Store, config ImportConfig) *Importer {
	if config.StartRow < 1 {
		config.StartRow = 1
	}
	return &Importer{store: store, config: config}
}

// ImportFile imports the file at path, picking the format from its extension
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return im.ImportNamed(ctx, filepath.Base(path), f)
}

// ImportNamed imports r, using name's extension to pick the format.
// .csv and .xlsx have their own readers, anything else is a plain word list.
func (im *Importer) ImportNamed(ctx context.Context, name string, r io.Reader) (*Result, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return im.ImportCSV(ctx, r)
	case ".xlsx", ".xlsm":
		return im.ImportExcel(ctx, r)
	default:
		return im.ImportText(ctx, r)
	}
}

// ImportText imports a plain list with one word per line.
// Blank lines and lines starting with '<' are ignored.
func (im *Importer) ImportText(ctx context.Context, r io.Reader) (*Result, error) {
	result := &Result{Errors: make([]string, 0)}
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "<") {
			continue
		}
		result.TotalProcessed++
		if err := im.add(ctx, result, line, "", "", ""); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return result, err
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Line %d: %v", lineNum, err))
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("error reading word list: %w", err)
	}
	return result, nil
}

// ImportCSV imports rows laid out per the importer's column config
func (im *Importer) ImportCSV(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	result := &Result{Errors: make([]string, 0)}
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("error reading CSV: %w", err)
		}
		rowNum++
		if rowNum < im.config.StartRow {
			continue
		}
		if err := im.processRow(ctx, result, row, rowNum); err != nil {
			return result, err
		}
	}
	return result, nil
}

// ImportExcel imports a workbook laid out per the importer's column config
func (im *Importer) ImportExcel(ctx context.Context, r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := im.config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &Result{Errors: make([]string, 0)}
	for i, row := range rows {
		// Skip header rows
		if i < im.config.StartRow-1 {
			continue
		}
		if err := im.processRow(ctx, result, row, i+1); err != nil {
			return result, err
		}
	}
	return result, nil
}

// processRow only returns an error when the import must stop
func (im *Importer) processRow(ctx context.Context, result *Result, row []string, rowNum int) error {
	word := cell(row, im.config.WordColumn)
	if word == "" {
		return nil
	}
	result.TotalProcessed++
	err := im.add(ctx, result, word,
		cell(row, im.config.PartOfSpeechColumn),
		cell(row, im.config.PronunciationColumn),
		cell(row, im.config.TranslationColumn),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
	}
	return nil
}

func (im *Importer) add(ctx context.Context, result *Result, word, partOfSpeech, pronunciation, translation string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	word = models.NormalizeWord(word)
	if partOfSpeech == "" {
		partOfSpeech = DefaultPartOfSpeech
	}
	if pronunciation == "" {
		pronunciation = word
	}
	if translation == "" {
		translation = DefaultTranslation
	}

	created, err := im.store.InsertIfAbsent(ctx, &models.VocabularyEntry{
		Word:          word,
		PartOfSpeech:  strings.TrimSpace(partOfSpeech),
		Pronunciation: strings.TrimSpace(pronunciation),
		Translation:   strings.TrimSpace(translation),
		IsActive:      true,
	})
	if err != nil {
		return err
	}
	if created {
		result.Created++
	} else {
		result.Skipped++
	}
	return nil
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// columnToIndex converts a column letter to a 0-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	index := 0
	for i := 0; i < len(column); i++ {
		if column[i] < 'A' || column[i] > 'Z' {
			return -1
		}
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
