package enums

import "fmt"

// DogStatus tracks where a dog is in the adoption pipeline.
type DogStatus string

const (
	DogStatusAvailable DogStatus = "available"
	DogStatusPending   DogStatus = "pending"
	DogStatusAdopted   DogStatus = "adopted"
)

var validDogStatuses = []DogStatus{
	DogStatusAvailable,
	DogStatusPending,
	DogStatusAdopted,
}

// String implements fmt.Stringer.
func (s DogStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DogStatus.
func (s DogStatus) IsValid() bool {
	for _, candidate := range validDogStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDogStatus converts raw input into a DogStatus.
func ParseDogStatus(value string) (DogStatus, error) {
	for _, candidate := range validDogStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dog status %q", value)
}
