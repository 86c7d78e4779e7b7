// Command cuentos runs the anonymous stories API.
//
//	@title       Cuentos API
//	@version     1.0
//	@description Anonymous stories with one reaction per visitor.
//	@BasePath    /api/v1
package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

//go:generate swag init --dir ../../ --generalInfo cmd/cuentos/main.go --output ../../docs --outputTypes go --parseInternal

// version is set at build time with -ldflags "-X main.version=...".
var version string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("cuentos failed")
		os.Exit(1)
	}
}
