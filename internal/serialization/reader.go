package serialization

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ModelReader reads models from the text model format.
type ModelReader struct {
	file   *os.File
	opts   ReaderOptions
	closed bool
}

// ReaderOptions configures the behavior of ModelReader.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// NewModelReader creates a new model file reader with default options (strict validation).
func NewModelReader(path string) (*ModelReader, error) {
	return NewModelReaderWithOptions(path, ReaderOptions{
		ValidationLevel: ValidationStrict,
	})
}

// NewModelReaderWithOptions creates a new model file reader with custom options.
func NewModelReaderWithOptions(path string, opts ReaderOptions) (*ModelReader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return &ModelReader{
		file:   file,
		opts:   opts,
		closed: false,
	}, nil
}

// ReadModel reads and validates the model.
func (r *ModelReader) ReadModel() (*Model, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}
	return Decode(r.file, r.opts)
}

// Close closes the reader.
func (r *ModelReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// Decode reads a model from in.
//
//nolint:gocyclo,cyclop // One switch over the header keywords
func Decode(in io.Reader, opts ReaderOptions) (*Model, error) {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), MaxHeaderLine)
	line := 0

	// Magic line
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("failed to read magic line: %w", err)
		}
		return nil, ErrInvalidMagic
	}
	line++
	magic := strings.Fields(sc.Text())
	if len(magic) != 2 || magic[0] != MagicWord {
		return nil, ErrInvalidMagic
	}
	version, err := strconv.Atoi(magic[1])
	if err != nil {
		return nil, &LineError{Line: line, Text: sc.Text(), Err: ErrInvalidMagic}
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	h := Header{Version: version, Params: make(map[string]string)}
	var stored *[32]byte
	inWeights := false

header:
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		key, rest, _ := strings.Cut(text, " ")
		rest = strings.TrimSpace(rest)
		bad := func(err error) error {
			return &LineError{Line: line, Text: text, Err: err}
		}

		switch key {
		case keyAlgorithm:
			h.Algorithm = rest
		case keyLoss:
			h.Loss = rest
		case keyClasses:
			fields := strings.Fields(rest)
			if len(fields) == 0 {
				return nil, bad(ErrBadFormat)
			}
			k, err := strconv.Atoi(fields[0])
			if err != nil || k < 0 || k > MaxClasses || len(fields) != k+1 {
				return nil, bad(fmt.Errorf("%w: class count and labels disagree", ErrBadFormat))
			}
			h.Classes = make([]float64, k)
			for i := range h.Classes {
				if h.Classes[i], err = strconv.ParseFloat(fields[i+1], 64); err != nil {
					return nil, bad(fmt.Errorf("%w: %w", ErrBadFormat, err))
				}
			}
		case keyFeatures:
			if h.NumFeatures, err = strconv.Atoi(rest); err != nil {
				return nil, bad(fmt.Errorf("%w: %w", ErrBadFormat, err))
			}
		case keyBias:
			h.Bias = true
		case keyParam:
			k, v, ok := strings.Cut(rest, " ")
			if !ok {
				return nil, bad(fmt.Errorf("%w: param needs a key and a value", ErrBadFormat))
			}
			h.Params[k] = strings.TrimSpace(v)
		case keyChecksum:
			sum, err := ParseChecksum(rest)
			if err != nil {
				return nil, bad(err)
			}
			stored = &sum
		case keyWeights:
			inWeights = true
			break header
		default:
			return nil, bad(fmt.Errorf("%w: unknown keyword %q", ErrBadFormat, key))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if !inWeights {
		return nil, fmt.Errorf("%w: missing weight section", ErrBadFormat)
	}

	if err := ValidateHeader(&h, opts.ValidationLevel); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	// Allocation guard, applied at every validation level.
	rows, rowLen := h.Rows(), h.RowLen()
	if h.NumFeatures <= 0 || h.NumFeatures > MaxFeatures || rows*rowLen > MaxWeights {
		return nil, fmt.Errorf("%w: %d x %d weights", ErrTooManyWeights, rows, rowLen)
	}

	// Weight section
	want := rows * rowLen
	flat := make([]float64, 0, want)
	var body bytes.Buffer
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if len(flat) == want {
			return nil, fmt.Errorf("%w: more than %d weights", ErrWeightCount, want)
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, &LineError{Line: line, Text: text, Err: fmt.Errorf("%w: %w", ErrBadFormat, err)}
		}
		flat = append(flat, v)
		body.WriteString(text)
		body.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read weights: %w", err)
	}
	if len(flat) != want {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrWeightCount, len(flat), want)
	}

	if !opts.SkipChecksumValidation {
		switch {
		case stored != nil:
			if err := ValidateChecksum(ComputeChecksum(body.Bytes()), *stored); err != nil {
				return nil, err
			}
		case opts.ValidationLevel == ValidationStrict:
			return nil, ErrMissingChecksum
		}
	}

	m := &Model{Header: h, Weights: make([][]float64, rows)}
	for i := range m.Weights {
		m.Weights[i] = flat[i*rowLen : (i+1)*rowLen : (i+1)*rowLen]
	}
	if opts.ValidationLevel == ValidationStrict {
		if err := ValidateWeights(m.Weights); err != nil {
			return nil, err
		}
	}
	return m, nil
}
