package glrender

import "fmt"

// owner records the thread a device or context was created on.
type owner struct {
	id       int64
	threadID func() int64
}

func newOwner(threadID func() int64) owner {
	return owner{id: threadID(), threadID: threadID}
}

// check fails fast when called from a thread other than the owner's.
func (o owner) check() error {
	if cur := o.threadID(); cur != o.id {
		return fmt.Errorf("%w: owner %d, caller %d", ErrWrongThread, o.id, cur)
	}
	return nil
}
