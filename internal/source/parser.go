// Package source discovers, parses and normalizes work-item snapshots.
package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// containerKeys are the object keys that may hold a record array inside a
// JSON or YAML snapshot document.
var containerKeys = []string{
	"items", "data", "contracts", "sows", "statementsOfWork",
	"statements_of_work", "purchaseOrders", "purchase_orders",
}

// ParseResult holds the output of parsing a single snapshot file.
type ParseResult struct {
	Records     []Record
	ParseErrors int
	Err         error
}

// ParseFile reads a snapshot file and decodes its records.
// Rows that fail to decode are counted in ParseErrors rather than failing the file.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	return Parse(f, df.Format)
}

// Parse decodes records of the given format from r.
func Parse(r io.Reader, format Format) ParseResult {
	switch format {
	case FormatJSONL:
		return parseJSONL(r)
	case FormatCSV:
		return parseCSV(r)
	case FormatJSON:
		data, err := io.ReadAll(r)
		if err != nil {
			return ParseResult{Err: err}
		}
		return parseJSON(data)
	case FormatYAML:
		data, err := io.ReadAll(r)
		if err != nil {
			return ParseResult{Err: err}
		}
		return parseYAML(data)
	}
	return ParseResult{Err: fmt.Errorf("unsupported snapshot format %q", format)}
}

func parseJSON(data []byte) ParseResult {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return ParseResult{Err: fmt.Errorf("decoding json: %w", err)}
	}
	return fromDocument(doc)
}

func parseYAML(data []byte) ParseResult {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ParseResult{Err: fmt.Errorf("decoding yaml: %w", err)}
	}
	return fromDocument(doc)
}

// fromDocument accepts a top-level array, an object wrapping arrays under
// container keys, or a single record object.
func fromDocument(doc any) ParseResult {
	switch v := doc.(type) {
	case []any:
		return fromList(v)
	case map[string]any:
		var res ParseResult
		found := false
		for _, key := range containerKeys {
			list, ok := v[key].([]any)
			if !ok {
				continue
			}
			found = true
			sub := fromList(list)
			res.Records = append(res.Records, sub.Records...)
			res.ParseErrors += sub.ParseErrors
		}
		if !found {
			res.Records = []Record{Record(v)}
		}
		return res
	case nil:
		return ParseResult{}
	}
	return ParseResult{Err: errors.New("snapshot must be an array or object of records")}
}

func fromList(list []any) ParseResult {
	var res ParseResult
	for _, elem := range list {
		m, ok := elem.(map[string]any)
		if !ok {
			res.ParseErrors++
			continue
		}
		res.Records = append(res.Records, Record(m))
	}
	return res
}

func parseJSONL(r io.Reader) ParseResult {
	var res ParseResult

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil || rec == nil {
			res.ParseErrors++
			continue
		}
		res.Records = append(res.Records, Record(rec))
	}
	if err := scanner.Err(); err != nil {
		return ParseResult{Err: err}
	}
	return res
}

func parseCSV(r io.Reader) ParseResult {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return ParseResult{}
	}
	if err != nil {
		return ParseResult{Err: fmt.Errorf("reading csv header: %w", err)}
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var res ParseResult
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.ParseErrors++
			continue
		}
		rec := make(Record, len(header))
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				rec[header[i]] = cell
			}
		}
		res.Records = append(res.Records, rec)
	}
	return res
}
