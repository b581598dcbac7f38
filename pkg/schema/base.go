package schema

// Engine is the rendering engine a template targets.
type Engine string

const (
	EnginePixi    Engine = "pixi"    // PixiJS, 2D
	EngineBabylon Engine = "babylon" // Babylon.js, 3D
	EngineAFrame  Engine = "aframe"  // A-Frame, WebXR
)

// Difficulty is the skill level a template is aimed at.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Orientation is the preferred screen orientation of a project.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

// ValidationLimits defines the constraints for template fields.
const (
	TemplateNameMin        = 1
	TemplateNameMax        = 60
	TemplateDescriptionMin = 10
	TemplateDescriptionMax = 500
	TemplateFeaturesMin    = 1
	TemplateFeaturesMax    = 12
)
