package corpus

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

// LoadFile reads a corpus file; see Load for the accepted formats.
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()

	records, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return records, nil
}

// Load decodes either a JSON array of records or newline-delimited JSON
// objects. Records are returned in input order; timestamps are not validated
// here.
func Load(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}

	if first == '[' {
		var records []Record
		if err := json.NewDecoder(br).Decode(&records); err != nil {
			return nil, fmt.Errorf("decoding corpus array: %w", err)
		}
		return records, nil
	}

	var records []Record
	dec := json.NewDecoder(br)
	for {
		var rec Record
		err := dec.Decode(&rec)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		br.Discard(3)
	}
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
