package tracker

// DefaultColorToken is used for responsibles with no collaborator entry
const DefaultColorToken = "240"

// DefaultAreas is the area list of a fresh tracker
var DefaultAreas = []string{
	"Finance",
	"Customer Service",
	"Operations",
	"Technical",
	"Mentoring",
	"Innovation",
	"Marketing",
	"Research",
}

// DefaultCollaborators is the collaborator list of a fresh tracker
var DefaultCollaborators = []Collaborator{
	{Name: "Marcos", ColorToken: "33"},
	{Name: "Ester", ColorToken: "208"},
}

// Defaults holds the reference lists used when storage has none
type Defaults struct {
	Areas         []string
	Collaborators []Collaborator
}

// BuiltinDefaults returns copies of DefaultAreas and DefaultCollaborators
func BuiltinDefaults() Defaults {
	return Defaults{
		Areas:         append([]string(nil), DefaultAreas...),
		Collaborators: append([]Collaborator(nil), DefaultCollaborators...),
	}
}
