package schema

import (
	"fmt"
	"regexp"
)

var templateIDPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateTemplate validates a catalog template.
func ValidateTemplate(t *Template) error {
	if !templateIDPattern.MatchString(t.ID) {
		return fmt.Errorf("id must be lowercase kebab-case, got %q", t.ID)
	}
	if len(t.Name) < TemplateNameMin || len(t.Name) > TemplateNameMax {
		return fmt.Errorf("name must be %d-%d characters", TemplateNameMin, TemplateNameMax)
	}
	if len(t.Description) < TemplateDescriptionMin || len(t.Description) > TemplateDescriptionMax {
		return fmt.Errorf("description must be %d-%d characters", TemplateDescriptionMin, TemplateDescriptionMax)
	}
	if t.Category == "" {
		return fmt.Errorf("category is required")
	}

	switch t.Engine {
	case EnginePixi, EngineBabylon, EngineAFrame:
		// Valid
	default:
		return fmt.Errorf("invalid engine: %s", t.Engine)
	}

	switch t.Difficulty {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		// Valid
	default:
		return fmt.Errorf("invalid difficulty: %s", t.Difficulty)
	}

	if len(t.Features) < TemplateFeaturesMin || len(t.Features) > TemplateFeaturesMax {
		return fmt.Errorf("must have %d-%d features", TemplateFeaturesMin, TemplateFeaturesMax)
	}
	for i, f := range t.Features {
		if f == "" {
			return fmt.Errorf("feature %d is empty", i)
		}
	}

	return ValidateProject(&t.Project)
}

// ValidateProject validates a template's project data.
func ValidateProject(p *ProjectData) error {
	if len(p.Scenes) == 0 {
		return fmt.Errorf("project must have at least one scene")
	}
	if p.Settings.Resolution.Width <= 0 || p.Settings.Resolution.Height <= 0 {
		return fmt.Errorf("resolution must be positive")
	}
	switch p.Settings.Orientation {
	case OrientationLandscape, OrientationPortrait:
		// Valid
	default:
		return fmt.Errorf("invalid orientation: %s", p.Settings.Orientation)
	}
	return nil
}
