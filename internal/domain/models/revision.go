package models

import (
	"time"

	"github.com/google/uuid"
)

// StyleProfile is the enumerated tone/format target a draft is written
// for. Each profile maps to a natural-language instruction passed to the
// generator; the mapping itself lives in the llm package's profile table.
type StyleProfile string

const (
	ProfileGeneric      StyleProfile = "generic"
	ProfileProfessional StyleProfile = "professional"
	ProfileCasual       StyleProfile = "casual"
	ProfileForum        StyleProfile = "forum"
	ProfileMicro        StyleProfile = "micro"
)

// Profiles lists every valid style profile.
func Profiles() []StyleProfile {
	return []StyleProfile{
		ProfileGeneric,
		ProfileProfessional,
		ProfileCasual,
		ProfileForum,
		ProfileMicro,
	}
}

// Valid reports whether p is one of the known profiles.
func (p StyleProfile) Valid() bool {
	switch p {
	case ProfileGeneric, ProfileProfessional, ProfileCasual, ProfileForum, ProfileMicro:
		return true
	}
	return false
}

// Revision is a timestamped, profile-tagged snapshot of document content
// in the append-only history. Only the latest revision's Content is ever
// mutated (by manual edits); earlier revisions are frozen.
type Revision struct {
	ID        string       `json:"id"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at"`
	Profile   StyleProfile `json:"profile"`
}

// NewRevision mints a revision with a fresh id and current timestamp.
func NewRevision(content string, profile StyleProfile) Revision {
	return Revision{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: time.Now().UTC(),
		Profile:   profile,
	}
}

// Attachment is an input file supplied with the initial prompt. It is
// consumed by draft generation and not retained afterwards.
type Attachment struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Data      []byte `json:"data"` // base64 on the wire via encoding/json
}
