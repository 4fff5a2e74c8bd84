package querylog

import (
	"context"

	"github.com/0xERR0R/argus/model"
)

// NoneStore discards all entries
type NoneStore struct{}

func NewNoneStore() *NoneStore {
	return &NoneStore{}
}

func (d *NoneStore) Append(context.Context, *model.LogEntry) error {
	// Nothing to do
	return nil
}

func (d *NoneStore) Recent(context.Context, int) []model.LogEntry {
	return []model.LogEntry{}
}

func (d *NoneStore) ClearAll(context.Context) error {
	// Nothing to do
	return nil
}

func (d *NoneStore) CleanUp(context.Context) {
	// Nothing to do
}

func (d *NoneStore) Close() error {
	return nil
}
