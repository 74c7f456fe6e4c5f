package outreach

import (
	"strings"
	"time"
)

// Channel identifies an outbound delivery channel.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// ParseChannel converts a raw string to a Channel.
func ParseChannel(s string) (Channel, bool) {
	c := Channel(s)
	if c == ChannelEmail || c == ChannelWhatsApp {
		return c, true
	}
	return "", false
}

// Candidate is one candidate's outreach record for a single role.
// Rows are created when the candidate enters tracking (external system) and
// mutated only through the orchestrator or single-candidate edits that pass
// the same state-machine validation; this service never deletes them.
type Candidate struct {
	ID     string `json:"id"`
	RoleID string `json:"roleId"`

	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	LinkedInURL *string `json:"linkedinUrl,omitempty"`
	RoleTitle   string  `json:"roleTitle"`
	ClientName  string  `json:"clientName"`
	Source      string  `json:"source"`

	Status Status `json:"status"`

	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
	LastContactAt       *time.Time `json:"lastContactAt,omitempty"`
	ResponseAt          *time.Time `json:"responseAt,omitempty"`
	DaysWithoutResponse *int       `json:"daysWithoutResponse,omitempty"`

	Notes           *string `json:"notes,omitempty"`
	ResponseMessage *string `json:"responseMessage,omitempty"`
}

// FullName returns "first last" for display and search.
func (c *Candidate) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// IsMissingContact is true when the candidate has neither email nor phone on
// file. It is derived, never stored: recompute after any email/phone change.
func (c *Candidate) IsMissingContact() bool {
	return !hasValue(c.Email) && !hasValue(c.Phone)
}

// CheckContactable returns *MissingContactError when automated outreach
// cannot reach the candidate on any channel.
func (c *Candidate) CheckContactable() error {
	if c.IsMissingContact() {
		return &MissingContactError{CandidateID: c.ID}
	}
	return nil
}

// LastKnownChannel returns the channel a resend should use: email when on
// file, otherwise whatsapp. The second return is false for missing-contact
// candidates.
func (c *Candidate) LastKnownChannel() (Channel, bool) {
	if hasValue(c.Email) {
		return ChannelEmail, true
	}
	if hasValue(c.Phone) {
		return ChannelWhatsApp, true
	}
	return "", false
}

// AddressFor returns the delivery address for a channel, empty when the
// candidate has none for it.
func (c *Candidate) AddressFor(ch Channel) string {
	switch ch {
	case ChannelEmail:
		if hasValue(c.Email) {
			return *c.Email
		}
	case ChannelWhatsApp:
		if hasValue(c.Phone) {
			return *c.Phone
		}
	}
	return ""
}

func hasValue(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// Filters is the ephemeral query object the board layer passes to
// ApplyFilters. It is never persisted.
type Filters struct {
	Status []Status `json:"status,omitempty"`
	Search string   `json:"search,omitempty"`
}
