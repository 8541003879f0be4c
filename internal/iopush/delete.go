package iopush

import (
	"context"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/push"
)

// delete removes the instance of a row. Rows without a numeric id are
// ignored without a remote call.
func (p *pusher) delete(
	ctx context.Context,
	i int,
	rec dataset.Record,
) push.RowResult {
	id, ok := toInt64(rec[colID])
	if !ok {
		return ignored(i, "id is missing or not numeric")
	}
	res := push.RowResult{Row: i, InstanceID: id}
	if err := p.api.DeleteInstance(ctx, id); err != nil {
		return failed(res, "Cannot delete instance", err)
	}
	res.Outcome = push.Deleted
	return res
}
