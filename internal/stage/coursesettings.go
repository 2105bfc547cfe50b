package stage

import (
	"context"
	"fmt"
	"sort"

	"github.com/siteforge/demoimport/internal/logger"
	"github.com/siteforge/demoimport/internal/model"
	"github.com/siteforge/demoimport/internal/site"
	apperrors "github.com/siteforge/demoimport/pkg/errors"
)

// coursePayload is the course platform's slice of the request.
type coursePayload struct {
	Settings map[string]any `json:"settings"`
}

// CourseSettings writes the demo's course platform settings.
//
// Unlike the other stages this one records no prior-state snapshot before
// overwriting: course settings are not covered by the undo path.
type CourseSettings struct {
	courses site.Courses
	log     *logger.Logger
}

// NewCourseSettings creates the course settings stage.
func NewCourseSettings(courses site.Courses, log *logger.Logger) *CourseSettings {
	return &CourseSettings{courses: courses, log: log.WithComponent(model.StageCourseSettings)}
}

func (s *CourseSettings) Name() string { return model.StageCourseSettings }

// Apply writes each settings key straight to the course platform's store.
func (s *CourseSettings) Apply(ctx context.Context, req *model.ImportRequest) model.StageResult {
	if !present(req.MasteriyoData) {
		return model.Skipped(s.Name(), "no course data")
	}

	var payload coursePayload
	if err := decodePayload(req.MasteriyoData, &payload); err != nil {
		return model.Skipped(s.Name(), "course data is not structured")
	}
	if len(payload.Settings) == 0 {
		s.log.Info("no course data")
		return model.Skipped(s.Name(), "no course settings")
	}

	s.log.Progress("setting up course platform data")

	if !s.courses.Installed(ctx) {
		s.log.Info("course platform not installed")
		return model.Skipped(s.Name(), "course platform not installed")
	}

	keys := make([]string, 0, len(payload.Settings))
	for key := range payload.Settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := s.courses.SetSetting(ctx, key, payload.Settings[key]); err != nil {
			return model.Failed(s.Name(), apperrors.NewStageError(s.Name(), fmt.Sprintf("setting %s failed", key), err))
		}
	}

	s.log.Info("course platform data set up")
	return model.Applied(s.Name(), fmt.Sprintf("wrote %d course settings", len(keys)))
}
