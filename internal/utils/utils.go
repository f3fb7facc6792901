package utils

import "github.com/rs/zerolog/log"

// Must aborts startup on an unrecoverable error. Request-path code
// never uses it.
func Must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}
