package iopush

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/iaso"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/push"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/xform"
)

// update patches the attributes of an existing instance and replaces its
// document through an edit session.
func (p *pusher) update(
	ctx context.Context,
	r *run,
	i int,
	rec dataset.Record,
) push.RowResult {
	tpl, reason := r.template(i, rec)
	if tpl == nil {
		return ignored(i, reason)
	}
	id, ok := toInt64(rec[colID])
	if !ok {
		return ignored(i, "id is missing or not numeric")
	}
	res := push.RowResult{Row: i, InstanceID: id}

	if orgUnit, ok := toInt64(rec[colOrgUnitID]); ok {
		patch := iaso.InstancePatch{
			OrgUnitID: &orgUnit,
			Accuracy:  floatPtr(rec, colAccuracy),
			Altitude:  floatPtr(rec, colAltitude),
			Latitude:  floatPtr(rec, colLatitude),
			Longitude: floatPtr(rec, colLongitude),
		}
		if err := p.api.PatchInstance(ctx, id, patch); err != nil {
			return failed(res, "Cannot patch instance", err)
		}
	}

	inst, err := p.api.Instance(ctx, id)
	if err != nil {
		return failed(res, "Cannot get instance", err)
	}
	numericID := p.numericID(ctx, inst)

	uid := stripUUID(rec[colInstanceID])
	if uid == "" {
		uid = stripUUID(inst.UUID)
	}
	if uid == "" {
		return ignored(i, "instance has no uuid")
	}
	res.InstanceUUID = uid

	doc, err := tpl.Render(rec, uid)
	if err != nil {
		return failed(res, "Cannot render instance", err)
	}
	edited, err := xform.InjectIdentifiers([]byte(doc), numericID, p.api.UserID())
	if err != nil {
		return failed(res, "Cannot set instance identifiers", err)
	}

	name := uid + ".xml"
	if _, err = p.saveDoc(ctx, r, name, edited); err != nil {
		return failed(res, "Cannot write instance document", err)
	}

	session := stripUUID(inst.UUID)
	if session == "" {
		session = uid
	}
	editURL, err := p.api.EditURL(ctx, session)
	if err != nil {
		return failed(res, "Cannot open edit session", err)
	}
	if err = p.api.SubmitEdit(ctx, editURL, name, edited); err != nil {
		return failed(res, "Cannot submit edited instance", err)
	}

	res.Outcome = push.Updated
	return res
}

// numericID reads the platform id stored in the current document of an
// instance. The instance id is used when the document has none.
func (p *pusher) numericID(ctx context.Context, inst iaso.Instance) string {
	res := strconv.FormatInt(inst.ID, 10)
	if inst.FileURL == "" {
		return res
	}
	doc, err := p.api.Download(ctx, inst.FileURL)
	if err != nil {
		slog.Warn("Cannot download instance document",
			"instance_id", inst.ID, "error", err)
		return res
	}
	n, err := xform.NumericID(doc)
	if err != nil || n == "" {
		return res
	}
	return n
}
