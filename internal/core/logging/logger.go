// Package logging holds zerolog helpers shared by the gallery services.
package logging

import (
	"github.com/rs/zerolog"
)

// Attach returns l tagged with a component name and with the ContextHook
// installed, so events logged with .Ctx(ctx) carry the gallery mode and
// modal session.
func Attach(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger().Hook(ContextHook{})
}
