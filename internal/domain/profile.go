package domain

// Profile carries the display metadata used to attribute notifications.
// A missing profile is represented by zero-value fields, never an error.
type Profile struct {
	ID        string
	FullName  string
	AvatarURL string
}
