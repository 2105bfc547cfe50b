package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/siteforge/demoimport/internal/logger"
	"github.com/siteforge/demoimport/internal/model"
	"github.com/siteforge/demoimport/internal/recorder"
	"github.com/siteforge/demoimport/internal/site"
	apperrors "github.com/siteforge/demoimport/pkg/errors"
)

var (
	validFormTypes   = map[string]struct{}{"payment": {}, "subscription": {}, "donation": {}}
	validFormLayouts = map[string]struct{}{"inline": {}, "checkout": {}}
)

// formIDSuffix marks data keys carrying foreign-system form identifiers.
// These must be regenerated by the forms subsystem, never copied.
const formIDSuffix = "FormID"

// PaymentForms inserts the demo's payment forms. The stage is insertion-only:
// an existing form with the same (layout, type, name) identity is left alone.
type PaymentForms struct {
	forms site.Forms
	rec   recorder.Recorder
	log   *logger.Logger
}

// NewPaymentForms creates the payment forms stage.
func NewPaymentForms(forms site.Forms, rec recorder.Recorder, log *logger.Logger) *PaymentForms {
	return &PaymentForms{forms: forms, rec: rec, log: log.WithComponent(model.StagePaymentForms)}
}

func (s *PaymentForms) Name() string { return model.StagePaymentForms }

// Apply validates each form spec, dispatches through the (layout, type)
// table, and inserts forms that do not already exist. A missing dispatch
// entry is a stage-local error: logged and reflected in the outcome without
// touching the rest of the run.
func (s *PaymentForms) Apply(ctx context.Context, req *model.ImportRequest) model.StageResult {
	if !present(req.PaymentForms) {
		return model.Skipped(s.Name(), "no payment forms payload")
	}

	s.log.Progress("setting up payment forms")

	if !s.forms.Active(ctx) {
		s.log.Info("no payment forms subsystem")
		return model.Skipped(s.Name(), "no payment forms subsystem")
	}

	var specs []model.PaymentFormSpec
	if err := decodePayload(req.PaymentForms, &specs); err != nil {
		return model.Skipped(s.Name(), "payment forms payload is not a list")
	}

	ops := s.forms.Ops()

	type plannedInsert struct {
		key  site.FormKey
		ops  site.FormOps
		name string
		data map[string]any
	}

	snap := recorder.NewSnapshot(recorder.NamespacePaymentForm)
	var planned []plannedInsert
	var stageErrs []string

	for _, form := range specs {
		if _, ok := validFormTypes[form.Type]; !ok {
			continue
		}
		if _, ok := validFormLayouts[form.Layout]; !ok {
			continue
		}

		key := site.FormKey{Layout: form.Layout, Type: form.Type}
		entry, ok := ops[key]
		if !ok || entry.Insert == nil {
			err := apperrors.NewStageError(s.Name(), fmt.Sprintf("no insert capability for %s %s form", form.Layout, form.Type), nil)
			s.log.Error(err, "dispatch entry missing")
			stageErrs = append(stageErrs, err.Error())
			continue
		}

		if entry.FindByName != nil {
			exists, err := entry.FindByName(ctx, form.Name)
			if err != nil {
				return model.Failed(s.Name(), apperrors.NewStageError(s.Name(), "form lookup failed", err))
			}
			if exists {
				s.log.WithFields(map[string]any{"form": form.Name}).Info("form already exists")
				continue
			}
		}

		planned = append(planned, plannedInsert{key: key, ops: entry, name: form.Name, data: stripFormIDs(form.Data)})
		snap.Put(form.Name, map[string]string{"layout": form.Layout, "type": form.Type})
	}

	if len(planned) == 0 {
		if len(stageErrs) > 0 {
			return model.Failed(s.Name(), apperrors.NewStageError(s.Name(), strings.Join(stageErrs, "; "), nil))
		}
		return model.Skipped(s.Name(), "no payment forms to insert")
	}

	if err := s.rec.Record(ctx, *snap); err != nil {
		return model.Failed(s.Name(), apperrors.NewStageError(s.Name(), "recording previous state failed", err))
	}

	inserted := 0
	for _, plan := range planned {
		if err := plan.ops.Insert(ctx, plan.name, plan.data); err != nil {
			wrapped := apperrors.NewStageError(s.Name(), fmt.Sprintf("inserting form %s failed", plan.name), err)
			s.log.Error(wrapped, "form insert failed")
			stageErrs = append(stageErrs, wrapped.Error())
			continue
		}
		inserted++
	}

	s.log.WithFields(map[string]any{"inserted": inserted}).Info("payment forms set up")

	message := fmt.Sprintf("inserted %d payment forms", inserted)
	if len(stageErrs) > 0 {
		message += "; " + strings.Join(stageErrs, "; ")
	}
	if inserted == 0 {
		return model.Failed(s.Name(), apperrors.NewStageError(s.Name(), message, nil))
	}
	return model.Applied(s.Name(), message)
}

// stripFormIDs drops every data key ending in FormID.
func stripFormIDs(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		if strings.HasSuffix(key, formIDSuffix) {
			continue
		}
		out[key] = value
	}
	return out
}
