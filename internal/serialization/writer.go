package serialization

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ModelWriter writes models in the text model format.
type ModelWriter struct {
	file   *os.File
	closed bool
}

// NewModelWriter creates a new model file writer.
func NewModelWriter(path string) (*ModelWriter, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return &ModelWriter{
		file:   file,
		closed: false,
	}, nil
}

// WriteModel writes m to the file.
func (w *ModelWriter) WriteModel(m *Model) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}
	return Encode(w.file, m)
}

// Close closes the writer.
func (w *ModelWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// Encode writes m to out. The version field of the header is ignored; the
// current FormatVersion is always written.
func Encode(out io.Writer, m *Model) error {
	h := m.Header
	h.Version = FormatVersion
	if err := ValidateHeader(&h, ValidationStrict); err != nil {
		return fmt.Errorf("invalid header: %w", err)
	}
	if err := m.checkShape(); err != nil {
		return err
	}
	if err := ValidateWeights(m.Weights); err != nil {
		return err
	}

	// Weight section first: the checksum in the header covers it.
	var body bytes.Buffer
	for _, row := range m.Weights {
		for _, v := range row {
			body.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			body.WriteByte('\n')
		}
	}
	sum := ComputeChecksum(body.Bytes())

	bw := bufio.NewWriter(out)
	fmt.Fprintf(bw, "%s %d\n", MagicWord, FormatVersion)
	fmt.Fprintf(bw, "%s %s\n", keyAlgorithm, h.Algorithm)
	if h.Loss != "" {
		fmt.Fprintf(bw, "%s %s\n", keyLoss, h.Loss)
	}
	fmt.Fprintf(bw, "%s %d", keyClasses, len(h.Classes))
	for _, c := range h.Classes {
		fmt.Fprintf(bw, " %s", strconv.FormatFloat(c, 'g', -1, 64))
	}
	bw.WriteByte('\n')
	fmt.Fprintf(bw, "%s %d\n", keyFeatures, h.NumFeatures)
	if h.Bias {
		fmt.Fprintln(bw, keyBias)
	}
	for _, k := range h.sortedParams() {
		fmt.Fprintf(bw, "%s %s %s\n", keyParam, k, h.Params[k])
	}
	fmt.Fprintf(bw, "%s %s\n", keyChecksum, FormatChecksum(sum))
	fmt.Fprintln(bw, keyWeights)
	if _, err := bw.Write(body.Bytes()); err != nil {
		return fmt.Errorf("failed to write weights: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	return nil
}
