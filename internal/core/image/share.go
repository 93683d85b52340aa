package image

// ShareOp is the pending change for one user in a share dialog.
type ShareOp string

const (
	ShareNone   ShareOp = "none"
	ShareAdd    ShareOp = "add"
	ShareRemove ShareOp = "remove"
)

// ShareAction tags a user name with the change to apply to that user's
// "images shared with me" list. Only the delta is transmitted.
type ShareAction struct {
	Name   string  `json:"name"`
	Action ShareOp `json:"action"`
}

// Sharing is the visibility state submitted from a share dialog.
type Sharing struct {
	IsPublic     bool
	SharedByLink bool
	Users        []ShareAction
}

// OpenedTo returns the user names that keep or gain access.
func (s Sharing) OpenedTo() []string {
	names := make([]string, 0, len(s.Users))
	for _, u := range s.Users {
		if u.Action != ShareRemove {
			names = append(names, u.Name)
		}
	}
	return names
}
