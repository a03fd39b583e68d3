package models

import "fmt"

// EntityKind logical entity stored by the backend
type EntityKind string

const (
	EntityRecoveryRequest EntityKind = "recovery_request"
)

// collectionNames static entity kind -> collection mapping.
// New entities must be registered here explicitly.
var collectionNames = map[EntityKind]string{
	EntityRecoveryRequest: "recoveryrequest",
}

// CollectionFor returns the collection holding documents of the given kind
func CollectionFor(kind EntityKind) (string, error) {
	name, ok := collectionNames[kind]
	if !ok {
		return "", fmt.Errorf("no collection registered for entity kind %q", kind)
	}
	return name, nil
}

// MustCollectionFor like CollectionFor but panics on unknown kinds; for package-level wiring only
func MustCollectionFor(kind EntityKind) string {
	name, err := CollectionFor(kind)
	if err != nil {
		panic(err)
	}
	return name
}
