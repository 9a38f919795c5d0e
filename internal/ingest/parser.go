package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"example.com/wellness/internal/domain"
)

// Parser reads a comma-separated export with a header row into decoded rows.
type Parser struct {
	resolver *Resolver
}

// NewParser constructs a Parser backed by resolver.
func NewParser(resolver *Resolver) *Parser {
	if resolver == nil {
		resolver = NewResolver(nil)
	}
	return &Parser{resolver: resolver}
}

// Parse resolves the header once and decodes every following record. Any unresolvable
// required column or bad date aborts the whole parse; no partial result is returned.
// Records whose cells are all blank are skipped.
func (p *Parser) Parse(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index, err := p.resolver.Resolve(header)
	if err != nil {
		return nil, err
	}
	decoder := NewDecoder(index)

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if blankRecord(record) {
			continue
		}

		line, _ := reader.FieldPos(0)
		row, err := decoder.Decode(line, record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blankRecord(record []string) bool {
	return lo.EveryBy(record, func(cell string) bool { return strings.TrimSpace(cell) == "" })
}
