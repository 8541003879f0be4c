package iopush

import (
	"context"
	"time"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/iaso"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/push"
	"github.com/google/uuid"
)

// create renders a row as a new instance, registers the instance and
// uploads its document.
func (p *pusher) create(
	ctx context.Context,
	r *run,
	i int,
	rec dataset.Record,
) push.RowResult {
	tpl, reason := r.template(i, rec)
	if tpl == nil {
		return ignored(i, reason)
	}
	orgUnit, ok := toInt64(rec[colOrgUnitID])
	if !ok {
		return ignored(i, "org_unit_id is missing or not an integer")
	}

	id := uuid.NewString()
	res := push.RowResult{Row: i, InstanceUUID: id}
	doc, err := tpl.Render(rec, id)
	if err != nil {
		return failed(res, "Cannot render instance", err)
	}

	name := id + ".xml"
	loc, err := p.saveDoc(ctx, r, name, []byte(doc))
	if err != nil {
		return failed(res, "Cannot write instance document", err)
	}

	ts := createdAt(rec, time.Now())
	inst := iaso.NewInstance{
		ID:        id,
		OrgUnitID: orgUnit,
		CreatedAt: ts.Unix(),
		FormID:    r.prm.FormID,
		Latitude:  floatPtr(rec, colLatitude),
		Longitude: floatPtr(rec, colLongitude),
		File:      loc,
		Name:      name,
		Period:    ts.Year(),
	}
	if err = p.api.CreateInstance(ctx, r.prm.AppID, inst); err != nil {
		return failed(res, "Cannot create instance", err)
	}
	if err = p.api.UploadSubmission(ctx, name, []byte(doc)); err != nil {
		return failed(res, "Cannot upload instance document", err)
	}

	res.Outcome = push.Imported
	return res
}
