package logging

import (
	"github.com/rs/zerolog"
)

// ComponentKey is the field every sub-logger is tagged with.
const ComponentKey = "component"

// Component derives a sub-logger of parent tagged with the component name.
func Component(parent zerolog.Logger, name string) zerolog.Logger {
	return parent.With().Str(ComponentKey, name).Logger()
}
