package casting

import "errors"

// Sentinel errors returned by casting operations. Callers match them with errors.Is;
// the returned errors usually wrap one of these with more context.
var (
	ErrInvalidProposal          = errors.New("invalid proposal")
	ErrEmptyName                = errors.New("proposal name must not be empty")
	ErrOutOfRange               = errors.New("score out of range")
	ErrTypeMismatch             = errors.New("participant type does not match role type")
	ErrAlreadyAssignedElsewhere = errors.New("participant already holds another role in this proposal")
	ErrValidationLocked         = errors.New("casting is validated, main assignment is locked")
	ErrNotFound                 = errors.New("not found")
	ErrStorage                  = errors.New("storage error")
)

// Error kinds exposed to API callers
const (
	KindInvalidProposal          = "InvalidProposal"
	KindEmptyName                = "EmptyName"
	KindOutOfRange               = "OutOfRange"
	KindTypeMismatch             = "TypeMismatch"
	KindAlreadyAssignedElsewhere = "AlreadyAssignedElsewhere"
	KindValidationLocked         = "ValidationLocked"
	KindNotFound                 = "NotFound"
	KindStorageError             = "StorageError"
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidProposal, KindInvalidProposal},
	{ErrEmptyName, KindEmptyName},
	{ErrOutOfRange, KindOutOfRange},
	{ErrTypeMismatch, KindTypeMismatch},
	{ErrAlreadyAssignedElsewhere, KindAlreadyAssignedElsewhere},
	{ErrValidationLocked, KindValidationLocked},
	{ErrNotFound, KindNotFound},
	{ErrStorage, KindStorageError},
}

// Kind returns the stable error kind for err, or an empty string for errors
// that are not casting errors
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}
