package extract

import (
	"log"
	"path/filepath"
	"strings"
)

// Extractor converts raw document bytes into plain text keyed on the
// file extension. Unsupported formats yield empty content rather than
// an error so a single odd file never sinks a whole folder.
type Extractor struct {
	logger *log.Logger
}

func NewExtractor(logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.Default()
	}
	return &Extractor{logger: logger}
}

func (e *Extractor) Extract(fileName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf":
		return extractPDF(data)
	case ".xlsx", ".xlsm", ".xls":
		return extractExcel(data)
	case ".docx":
		return extractDocx(data)
	case ".txt", ".md", ".csv", ".json":
		return string(data), nil
	default:
		e.logger.Printf("[WARN] extract: unsupported file type %q (%s), skipping content", ext, fileName)
		return "", nil
	}
}
