package models

// Credentials is the body of POST /auth/login/.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register/.
//
// Password2 is the confirmation field checked by the backend.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Plan      int    `json:"plan"`
}

// AuthResponse is returned by both login and registration.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ProfilePatch is a partial update of the current user. Nil fields are omitted.
type ProfilePatch struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Plan      *int    `json:"plan,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (p ProfilePatch) Empty() bool {
	return p.Email == nil && p.FirstName == nil && p.LastName == nil && p.Plan == nil
}

// GenrePreference is the preference record returned by like/dislike genre.
type GenrePreference struct {
	ID           int     `json:"id"`
	Genre        int     `json:"genre"`
	Score        float64 `json:"score"`
	GenreDetails *Genre  `json:"genre_details"`
}

// PreferenceResponse wraps a [GenrePreference] with the backend status string.
type PreferenceResponse struct {
	Status     string          `json:"status"`
	Preference GenrePreference `json:"preference"`
}
