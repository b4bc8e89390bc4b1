package schema

// UserAccountTable names the columns of users.account. Column names are
// lower-case without separators, matching the migrations.
type UserAccountTable struct {
	Table       string
	ID          string
	Username    string
	Email       string
	FirstName   string
	LastName    string
	Bio         string
	Role        string
	IsSuperuser string
	CreatedAt   string
	UpdatedAt   string

	// Constraint names surfaced by unique violations.
	UniqueUsername string
	UniqueEmail    string
}

// UserAccount holds every registered account, admins included.
var UserAccount = UserAccountTable{
	Table:       "users.account",
	ID:          "id",
	Username:    "username",
	Email:       "email",
	FirstName:   "firstname",
	LastName:    "lastname",
	Bio:         "bio",
	Role:        "role",
	IsSuperuser: "issuperuser",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",

	UniqueUsername: "account_username_key",
	UniqueEmail:    "account_email_key",
}

// Columns lists the full projection in scan order.
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.FirstName, t.LastName, t.Bio,
		t.Role, t.IsSuperuser, t.CreatedAt, t.UpdatedAt,
	}
}
