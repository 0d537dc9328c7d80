package metadata

import (
	"embed"

	_ "github.com/viant/afs/embed"
)

// DefaultCrew is the embedded location of the default crew definitions.
const DefaultCrew = "embed://localhost/crew.yaml"

// FS exposes the embedded default crew definitions.
//
//go:embed crew.yaml
var FS embed.FS
