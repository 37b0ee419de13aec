package models

// User is the profile document keyed by identity id. The identity provider
// authenticates credentials; everything role-related lives here.
type User struct {
	ID         string `bson:"_id,omitempty"`
	IdentityID string `bson:"identityId"`
	Email      string `bson:"email"`
	FullName   string `bson:"fullName"`
	Password   string `bson:"password"`
	Role       string `bson:"role"`
	Disabled   bool   `bson:"disabled"`
	TimeModel  `bson:",inline"`
}
