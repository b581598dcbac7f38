package schema

// Template is a starter game project in the catalog.
type Template struct {
	ID            string      `yaml:"id" json:"id"`
	Name          string      `yaml:"name" json:"name"`
	Description   string      `yaml:"description" json:"description"`
	Category      string      `yaml:"category" json:"category"`
	Engine        Engine      `yaml:"engine" json:"engine"`
	Difficulty    Difficulty  `yaml:"difficulty" json:"difficulty"`
	Features      []string    `yaml:"features" json:"features"`
	Documentation string      `yaml:"documentation" json:"documentation"`
	Project       ProjectData `yaml:"project" json:"project"`
}

// ProjectData is the scaffold a template creates.
type ProjectData struct {
	Scenes   []string        `yaml:"scenes" json:"scenes"`
	Assets   []string        `yaml:"assets" json:"assets"`
	Scripts  []string        `yaml:"scripts" json:"scripts"`
	Settings ProjectSettings `yaml:"settings" json:"settings"`
}

// ProjectSettings holds display and simulation settings.
type ProjectSettings struct {
	Resolution  Resolution     `yaml:"resolution" json:"resolution"`
	Orientation Orientation    `yaml:"orientation" json:"orientation"`
	Physics     *PhysicsConfig `yaml:"physics,omitempty" json:"physics,omitempty"`
}

// Resolution is the logical canvas size.
type Resolution struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// PhysicsConfig is present only for templates that ship a physics engine.
type PhysicsConfig struct {
	Engine  string  `yaml:"engine" json:"engine"`
	Gravity float64 `yaml:"gravity" json:"gravity"`
}
