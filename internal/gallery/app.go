package gallery

import (
	"github.com/colonyops/lightbox/internal/core/eventbus"
	"github.com/colonyops/lightbox/internal/core/notify"
	"github.com/rs/zerolog"
)

// Options tunes the gallery services.
type Options struct {
	PageSize       uint
	SwipeThreshold float64
	// ShareBaseURL is the public backend address used in share links.
	ShareBaseURL string
}

// Account is the signed in user and the id lists returned at sign in.
type Account struct {
	UserName string
	Owned    []string
	OpenedTo []string
}

// App groups the gallery services for one signed in user.
// Commands and the TUI consume App instead of building services themselves.
type App struct {
	Directory *UserDirectory
	Store     *Store
	Navigator *Navigator
	Share     *ShareService
}

// NewApp constructs an App from explicit dependencies. bus may be nil.
func NewApp(
	backend Backend,
	account Account,
	notifier notify.Notifier,
	bus *eventbus.EventBus,
	opts Options,
	log zerolog.Logger,
) *App {
	dir := NewUserDirectory(backend, account.UserName, account.Owned, account.OpenedTo)
	store := NewStore(backend, dir, notifier, bus, opts.PageSize, log)

	return &App{
		Directory: dir,
		Store:     store,
		Navigator: NewNavigator(store, notifier, bus, opts.SwipeThreshold, log),
		Share:     NewShareService(store, backend, notifier, bus, opts.ShareBaseURL, log),
	}
}
