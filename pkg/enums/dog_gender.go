package enums

import "fmt"

// DogGender is the gender recorded for a listed dog.
type DogGender string

const (
	DogGenderMale   DogGender = "male"
	DogGenderFemale DogGender = "female"
)

var validDogGenders = []DogGender{
	DogGenderMale,
	DogGenderFemale,
}

// String implements fmt.Stringer.
func (g DogGender) String() string {
	return string(g)
}

// IsValid reports whether the value is a known DogGender.
func (g DogGender) IsValid() bool {
	for _, candidate := range validDogGenders {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseDogGender converts raw input into a DogGender.
func ParseDogGender(value string) (DogGender, error) {
	for _, candidate := range validDogGenders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dog gender %q", value)
}
