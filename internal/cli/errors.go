package cli

import (
	"errors"

	"github.com/allyourbase/demobundle/internal/bundle"
	"github.com/allyourbase/demobundle/internal/cli/ui"
	"github.com/allyourbase/demobundle/internal/demolist"
)

// FormatError renders err for the terminal with fix suggestions for the
// failures a release step commonly hits.
func FormatError(err error) string {
	var (
		readErr     *demolist.ReadError
		parseErr    *demolist.ParseError
		missingErr  *bundle.SourceMissingError
		manifestErr *bundle.ManifestWriteError
	)
	switch {
	case errors.Is(err, bundle.ErrMissingRequirement):
		return ui.FormatError(err.Error(),
			`demobundle build --primary-requirement "pkg==1.0" --secondary-requirement "other==2.0"`,
			"set DEMOBUNDLE_PRIMARY_REQUIREMENT and DEMOBUNDLE_SECONDARY_REQUIREMENT",
		)
	case errors.As(err, &readErr):
		return ui.FormatError(err.Error(),
			"create "+readErr.Path+" containing a JSON array of demo names",
			"demobundle build --demo-list <path> ...",
		)
	case errors.As(err, &parseErr):
		return ui.FormatError(err.Error(), `the demo list must be a JSON array of strings, e.g. ["kanban", "live-polls"]`)
	case errors.As(err, &missingErr):
		return ui.FormatError(err.Error(),
			"check the demo name in the demo list",
			"demobundle build --source <dir> ...",
		)
	case errors.As(err, &manifestErr):
		return ui.FormatError(err.Error(), "make sure the bundle directory exists and is writable")
	default:
		return ui.FormatError(err.Error())
	}
}
