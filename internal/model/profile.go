package model

// ProfileBase holds the columns every role profile table shares.  LoginID
// is the 1:1 owning login; AddressID is nullable and may be shared with
// other profiles.
type ProfileBase struct {
	ID        uint64  `json:"id"`
	LoginID   uint64  `json:"loginId"`
	AddressID *uint64 `json:"addressId"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     string  `json:"phone"`
}

func (b *ProfileBase) targets() []any {
	return []any{&b.ID, &b.LoginID, &b.AddressID, &b.FirstName, &b.LastName, &b.Phone}
}

// ProfileID returns the primary key of the profile row.
func (b ProfileBase) ProfileID() uint64 { return b.ID }

var baseFields = []string{"firstName", "lastName", "phone"}

// Admin mirrors the `admins` table.
type Admin struct {
	ProfileBase
}

func (Admin) Table() string     { return "admins" }
func (Admin) Role() Role        { return RoleAdmin }
func (Admin) Fields() []string  { return baseFields }
func (a Admin) Values() []any   { return []any{a.FirstName, a.LastName, a.Phone} }
func (a *Admin) Targets() []any { return a.targets() }

// Trainer mirrors the `trainers` table.
type Trainer struct {
	ProfileBase
	Description *string `json:"description"`
	Specialty   *string `json:"specialty"`
	Certificate *string `json:"certificate"`
	ImageURL    *string `json:"imageUrl"`
}

func (Trainer) Table() string { return "trainers" }
func (Trainer) Role() Role    { return RoleTrainer }

func (Trainer) Fields() []string {
	return append(append([]string{}, baseFields...), "description", "specialty", "certificate", "imageUrl")
}

func (t Trainer) Values() []any {
	return []any{t.FirstName, t.LastName, t.Phone, t.Description, t.Specialty, t.Certificate, t.ImageURL}
}

func (t *Trainer) Targets() []any {
	return append(t.targets(), &t.Description, &t.Specialty, &t.Certificate, &t.ImageURL)
}

// Member mirrors the `members` table.
type Member struct {
	ProfileBase
	Age    *int    `json:"age"`
	Gender *string `json:"gender"`
}

func (Member) Table() string { return "members" }
func (Member) Role() Role    { return RoleMember }

func (Member) Fields() []string {
	return append(append([]string{}, baseFields...), "age", "gender")
}

func (m Member) Values() []any {
	return []any{m.FirstName, m.LastName, m.Phone, m.Age, m.Gender}
}

func (m *Member) Targets() []any {
	return append(m.targets(), &m.Age, &m.Gender)
}

// ProfileDetail joins a profile with its login and (optional) address.
type ProfileDetail[T any] struct {
	Profile  T        `json:"profile"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Role     Role     `json:"role"`
	Address  *Address `json:"address"`
}
