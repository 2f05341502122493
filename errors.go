package depot

import "fmt"

type LockedStorageError struct{}

func (e LockedStorageError) Error() string {
	return "storage is currently locked"
}

// UnknownEntityError reports an id that is not a live entity.
type UnknownEntityError struct {
	ID EntityID
}

func (e UnknownEntityError) Error() string {
	return fmt.Sprintf("unknown entity: %v", e.ID)
}

// ForeignDescriptorError reports a Descriptor that was not registered by the
// storage it was passed to.
type ForeignDescriptorError struct {
	Component string
}

func (e ForeignDescriptorError) Error() string {
	return fmt.Sprintf("descriptor for %s was not registered by this storage", e.Component)
}

type ComponentExistsError struct {
	ID        EntityID
	Component string
}

func (e ComponentExistsError) Error() string {
	return fmt.Sprintf("component already exists on %v: %s", e.ID, e.Component)
}

type ComponentNotFoundError struct {
	ID        EntityID
	Component string
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component does not exist on %v: %s", e.ID, e.Component)
}
