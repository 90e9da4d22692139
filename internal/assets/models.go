package assets

import _ "embed"

// ModelsData is the bundled model catalog.
//
//go:embed models.json
var ModelsData []byte
