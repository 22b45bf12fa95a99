// Package journal holds the shared domain types of a memory journal:
// profiles, memories, periods, and the interactions attached to them.
package journal

import "time"

// Profile is a registered user.
type Profile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	FullName    string    `json:"full_name,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Biography   string    `json:"biography,omitempty"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayName prefers the full name and falls back to the username.
func (p Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Username
}

// Memory is a dated journal entry.
type Memory struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Title         string        `json:"title"`
	Description   string        `json:"description,omitempty"`
	Date          string        `json:"date"`
	DatePrecision DatePrecision `json:"date_precision"`
	Category      Category      `json:"category"`
	Location      string        `json:"location,omitempty"`
	MediaURLs     []string      `json:"media_urls"`
	Visibility    Visibility    `json:"visibility"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// MemoryWithAuthor is a memory joined with its owner's profile.
type MemoryWithAuthor struct {
	Memory
	Author *Profile `json:"author,omitempty"`
}

// Period is a span of life (a residence, a job, a trip).
type Period struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Type        PeriodType `json:"type"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date,omitempty"`
	Location    string     `json:"location,omitempty"`
	Visibility  Visibility `json:"visibility"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Like marks a memory as liked by a user. At most one per (UserID, MemoryID).
type Like struct {
	UserID    string    `json:"user_id"`
	MemoryID  string    `json:"memory_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a text reply on a memory. Author is populated on reads.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MemoryID  string    `json:"memory_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Author    *Profile  `json:"author,omitempty"`
}

// List is a named group of users owned by one user, used for "lists" visibility.
type List struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	MemberIDs   []string  `json:"member_ids,omitempty"`
}

// Person is someone a user can tag in memories. RegisteredUserID links
// the person to a profile once they sign up.
type Person struct {
	ID               string     `json:"id"`
	CreatorID        string     `json:"creator_id"`
	FullName         string     `json:"full_name"`
	Email            string     `json:"email,omitempty"`
	Relationship     string     `json:"relationship,omitempty"`
	RegisteredUserID string     `json:"registered_user_id,omitempty"`
	InvitedAt        *time.Time `json:"invited_at,omitempty"`
}

// HasLiked reports whether userID appears in likes.
func HasLiked(likes []Like, userID string) bool {
	for _, l := range likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}
