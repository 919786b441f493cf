package domain

import "fmt"

// Activity represents an extracurricular offering as stored
type Activity struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Schedule        string `json:"schedule"`
	MaxParticipants int    `json:"max_participants"`
}

// ActivityDetails is an activity together with its current roster.
// Participants are listed in registration order.
type ActivityDetails struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// ActivityDirectory maps activity name to its details
type ActivityDirectory map[string]ActivityDetails

// AddRow merges one activity/participant join row into the directory.
// An activity with no participants still appears, with an empty roster.
func (d ActivityDirectory) AddRow(name string, details ActivityDetails, email string, hasParticipant bool) {
	entry, ok := d[name]
	if !ok {
		entry = ActivityDetails{
			Description:     details.Description,
			Schedule:        details.Schedule,
			MaxParticipants: details.MaxParticipants,
			Participants:    []string{},
		}
	}
	if hasParticipant {
		entry.Participants = append(entry.Participants, email)
	}
	d[name] = entry
}

// Registration is the association between a student email and an activity.
// The email is an opaque identifier compared exactly as given.
type Registration struct {
	ActivityName string `json:"activity_name" validate:"required"`
	Email        string `json:"email"`
}

// Confirmation is returned by successful signup and unregister calls
type Confirmation struct {
	Message string `json:"message"`
}

// SignedUp builds the confirmation for a successful signup
func SignedUp(reg Registration) Confirmation {
	return Confirmation{Message: fmt.Sprintf("Signed up %s for %s", reg.Email, reg.ActivityName)}
}

// Unregistered builds the confirmation for a successful unregister
func Unregistered(reg Registration) Confirmation {
	return Confirmation{Message: fmt.Sprintf("Unregistered %s from %s", reg.Email, reg.ActivityName)}
}
