package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/convex/internal/linalg"
)

// maxLineSize bounds a single text line; wide sparse rows can be long.
const maxLineSize = 64 * 1024 * 1024

// ReadLibSVM parses the LIBSVM text format:
//
//	<label> <index>:<value> <index>:<value> ...
//
// Indices are used as given, so the dataset dimension is the largest index
// plus one. Blank lines and lines starting with '#' are skipped.
func ReadLibSVM(r io.Reader) (*Dataset, error) {
	var (
		features []*SparseFeature
		labels   linalg.Vector
		maxIndex = -1
	)

	sc := newScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		label, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Token: fields[0], Err: err}
		}
		f := &SparseFeature{}
		for _, tok := range fields[1:] {
			j, v, err := parsePair(tok)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Token: tok, Err: err}
			}
			maxIndex = max(maxIndex, j)
			f.Index = append(f.Index, j)
			f.Value = append(f.Value, v)
		}
		features = append(features, f)
		labels = append(labels, label)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read libsvm: %w", err)
	}

	return finishSparse(features, labels, maxIndex+1)
}

// LoadLibSVM reads a LIBSVM file from disk.
func LoadLibSVM(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	d, err := ReadLibSVM(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// WriteLibSVM writes d in LIBSVM format.
func WriteLibSVM(w io.Writer, d *Dataset) error {
	bw := bufio.NewWriter(w)
	for i, f := range d.Features {
		bw.WriteString(strconv.FormatFloat(d.Labels[i], 'g', -1, 64))
		f.ForEach(func(j int, v float64) {
			fmt.Fprintf(bw, " %d:%s", j, strconv.FormatFloat(v, 'g', -1, 64))
		})
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ReadSparseMatrix parses the header-first sparse format: a first line
// "<n> <numFeatures>" followed by n lines of "<index> <value>" pairs.
func ReadSparseMatrix(r io.Reader) ([]*SparseFeature, int, error) {
	sc := newScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, 0, err
		}
		return nil, 0, ErrEmptyDataset
	}
	var n, numFeatures int
	if _, err := fmt.Sscanf(sc.Text(), "%d %d", &n, &numFeatures); err != nil {
		return nil, 0, &ParseError{Line: 1, Err: fmt.Errorf("%w: %v", ErrBadHeader, err)}
	}

	features := make([]*SparseFeature, 0, n)
	lineNo := 1
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields)%2 != 0 {
			return nil, 0, &ParseError{Line: lineNo, Err: errors.New("odd number of index/value tokens")}
		}
		f := &SparseFeature{NumFeatures: numFeatures}
		for k := 0; k < len(fields); k += 2 {
			j, err := strconv.Atoi(fields[k])
			if err != nil {
				return nil, 0, &ParseError{Line: lineNo, Token: fields[k], Err: err}
			}
			v, err := strconv.ParseFloat(fields[k+1], 64)
			if err != nil {
				return nil, 0, &ParseError{Line: lineNo, Token: fields[k+1], Err: err}
			}
			f.Index = append(f.Index, j)
			f.Value = append(f.Value, v)
		}
		if err := f.Validate(); err != nil {
			return nil, 0, &ParseError{Line: lineNo, Err: err}
		}
		features = append(features, f)
	}
	if err := sc.Err(); err != nil {
		return nil, 0, err
	}
	if len(features) != n {
		return nil, 0, fmt.Errorf("%w: header declares %d rows, found %d", ErrBadHeader, n, len(features))
	}
	return features, numFeatures, nil
}

// ReadLabels parses whitespace-separated label values.
func ReadLabels(r io.Reader) (linalg.Vector, error) {
	sc := newScanner(r)
	sc.Split(bufio.ScanWords)
	var labels linalg.Vector
	for sc.Scan() {
		y, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, &ParseError{Line: len(labels) + 1, Token: sc.Text(), Err: err}
		}
		labels = append(labels, y)
	}
	return labels, sc.Err()
}

// LoadSparsePair reads a sparse feature file and its companion label file.
func LoadSparsePair(featurePath, labelPath string) (*Dataset, error) {
	ff, err := os.Open(featurePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", featurePath, err)
	}
	defer ff.Close()
	features, numFeatures, err := ReadSparseMatrix(ff)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", featurePath, err)
	}

	lf, err := os.Open(labelPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", labelPath, err)
	}
	defer lf.Close()
	labels, err := ReadLabels(lf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", labelPath, err)
	}

	out := make([]Feature, len(features))
	for i, f := range features {
		out[i] = f
	}
	d := &Dataset{Features: out, Labels: labels, NumFeatures: numFeatures}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func finishSparse(features []*SparseFeature, labels linalg.Vector, numFeatures int) (*Dataset, error) {
	if len(features) == 0 {
		return nil, ErrEmptyDataset
	}
	out := make([]Feature, len(features))
	for i, f := range features {
		f.NumFeatures = numFeatures
		out[i] = f
	}
	d := &Dataset{Features: out, Labels: labels, NumFeatures: numFeatures}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func parsePair(tok string) (int, float64, error) {
	idx, val, ok := strings.Cut(tok, ":")
	if !ok {
		return 0, 0, errors.New("expected index:value")
	}
	j, err := strconv.Atoi(idx)
	if err != nil {
		return 0, 0, err
	}
	if j < 0 {
		return 0, 0, fmt.Errorf("negative index %d", j)
	}
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, 0, err
	}
	return j, v, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}
