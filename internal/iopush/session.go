package iopush

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aanoble/openhexa-pipelines-iaso/internal/iofs"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/config"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/form"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/iaso"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/push"
	"github.com/google/uuid"
)

// Prepare resolves the parameters of a push run. It checks that the
// authenticated user may push submissions to the project application and
// creates the output directory.
func Prepare(
	ctx context.Context,
	api iaso.API,
	cfg *config.Config,
) (push.Params, error) {
	var res push.Params
	strategy, err := push.ParseStrategy(cfg.Import.Strategy)
	if err != nil {
		return res, UnsupportedStrategyError(err)
	}

	appID, err := api.AppID(ctx, cfg.Import.ProjectID)
	if err != nil {
		return res, err
	}
	profile, err := api.Profile(ctx)
	if err != nil {
		return res, err
	}
	if !profile.HasRole(appID) {
		return res, PermissionDeniedError(appID)
	}
	slog.Info("User role checked", "app_id", appID)

	res, err = PrepareValidation(ctx, api, cfg)
	if err != nil {
		return res, err
	}
	res.AppID = appID
	res.Strategy = strategy
	return res, nil
}

// PrepareValidation resolves the parameters of a run that does not touch
// instances. No role check is done.
func PrepareValidation(
	ctx context.Context,
	forms iaso.Forms,
	cfg *config.Config,
) (push.Params, error) {
	var res push.Params
	strategy, err := push.ParseStrategy(cfg.Import.Strategy)
	if err != nil {
		return res, UnsupportedStrategyError(err)
	}

	name, err := forms.FormName(ctx, cfg.Import.FormID)
	if err != nil {
		return res, err
	}
	clean := form.CleanName(name)
	if clean == "" {
		clean = fmt.Sprintf("form_%d", cfg.Import.FormID)
	}

	out := cfg.Import.OutputDir
	if out == "" {
		out = config.DefaultOutputDir(cfg.HomeDir, clean)
	}
	if err = iofs.EnsureDir(out); err != nil {
		return res, err
	}

	res = push.Params{
		RunID:     uuid.NewString(),
		ProjectID: cfg.Import.ProjectID,
		FormID:    cfg.Import.FormID,
		FormName:  name,
		Strategy:  strategy,
		Strict:    cfg.Import.StrictValidation,
		OutputDir: out,
	}
	slog.Info("Run prepared",
		"run_id", res.RunID,
		"form_id", res.FormID,
		"form_name", name,
		"output_dir", out,
	)
	return res, nil
}
