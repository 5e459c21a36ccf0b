package processor

import (
	"context"

	"github.com/pkg/errors"

	"github.com/MasterOfBinary/ocrbatch/batch"
	"github.com/MasterOfBinary/ocrbatch/record"
	"github.com/MasterOfBinary/ocrbatch/source"
)

// Parse is a Processor that decodes each item's raw record into a
// *record.Example. Item data must be a source.Record or a []byte.
//
// A record that fails to parse has its item's Error set; the error names
// the file and record index when they are known.
type Parse struct {
	// Parser decodes the records. If nil, an inference-mode Parser is used.
	Parser *record.Parser
}

// Process implements the Processor interface.
func (p *Parse) Process(ctx context.Context, items []*batch.Item) ([]*batch.Item, error) {
	parser := p.Parser
	if parser == nil {
		parser = &record.Parser{}
	}

	for _, item := range items {
		if item.Error != nil {
			continue
		}

		select {
		case <-ctx.Done():
			return items, ctx.Err()
		default:
		}

		switch data := item.Data.(type) {
		case source.Record:
			ex, err := parser.Parse(data.Data)
			if err != nil {
				if data.Path != "" {
					err = errors.Wrapf(err, "%s: record %d", data.Path, data.Index)
				} else {
					err = errors.Wrapf(err, "record %d", data.Index)
				}
				item.Error = err
				continue
			}
			item.Data = ex
		case []byte:
			ex, err := parser.Parse(data)
			if err != nil {
				item.Error = err
				continue
			}
			item.Data = ex
		default:
			item.Error = errors.Errorf("parse: unsupported item data %T", item.Data)
		}
	}

	return items, nil
}
