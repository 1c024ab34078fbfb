package synthetic

import (
	"context"
	"slices"

	"github.com/okian/excess/internal/domain/model"
)

// Loader serves generated records in memory.
type Loader struct {
	Records []model.Record
	Err     error
}

// NewLoader generates the records of cfg once.
func NewLoader(cfg Config) *Loader {
	return &Loader{Records: Generate(cfg)}
}

// Load returns a copy of the records, or Err when set.
func (l *Loader) Load(ctx context.Context) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.Err != nil {
		return nil, l.Err
	}
	return slices.Clone(l.Records), nil
}
