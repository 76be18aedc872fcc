package output

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/khaledserafy/gobarb/core"
)

var _ Output = (*File)(nil)

// File writes a formatted result to a file. Create-or-overwrite by default;
// append mode is only meaningful for delimited text formats, where the
// header row is skipped when the file already has content.
type File struct {
	fileName  string
	formatter core.Formatter
	log       *zap.Logger
	append    bool
}

type FileOption func(*File)

// WithAppend appends instead of truncating. The header is written only when
// the file is empty or new.
func WithAppend() FileOption {
	return func(fo *File) {
		fo.append = true
	}
}

// WithFileLogger attaches a logger.
func WithFileLogger(log *zap.Logger) FileOption {
	return func(fo *File) {
		fo.log = log
	}
}

func NewFile(fileName string, formatter core.Formatter, opts ...FileOption) *File {
	fo := &File{
		fileName:  fileName,
		formatter: formatter,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(fo)
	}
	return fo
}

func (fo *File) Write(result *core.Result) (*ExportSummary, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if fo.append {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}

	file, err := os.OpenFile(fo.fileName, flags, 0o644)
	if err != nil {
		return nil, &ExportError{Target: fo.fileName, Err: err}
	}
	defer file.Close()

	opts := &core.FormatOpts{}
	if fo.append {
		info, err := file.Stat()
		if err != nil {
			return nil, &ExportError{Target: fo.fileName, Err: err}
		}
		opts.NoHeader = info.Size() > 0
	}

	if err := fo.formatter.Format(result, opts, file); err != nil {
		return nil, &ExportError{
			Target: fo.fileName,
			Err:    fmt.Errorf("format results as %s: %w", fo.formatter.Name(), err),
		}
	}

	fo.log.Debug("saved result to file",
		zap.String("format", fo.formatter.Name()),
		zap.String("file", fo.fileName),
		zap.Int("rows", result.Len()),
	)
	return &ExportSummary{RowsWritten: result.Len()}, nil
}
