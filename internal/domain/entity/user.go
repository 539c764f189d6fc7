package entity

import "time"

// Roles válidos para User.
const (
	RoleStudent   = "student"
	RoleParent    = "parent"
	RoleCafeteria = "cafeteria"
)

// User representa un usuario de la cafetería escolar.
// ParentID y ChildID mantienen el vínculo padre↔hijo: el ParentID de un
// estudiante y el ChildID de su representante deben referirse mutuamente.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // student, parent, cafeteria
	FirstName    string
	LastName     string
	ParentID     string // solo estudiantes: referencia al representante
	ChildID      string // solo representantes: referencia al estudiante
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsParentOf indica si u es el representante vinculado del estudiante dado.
func (u *User) IsParentOf(studentID string) bool {
	return u.Role == RoleParent && u.ChildID != "" && u.ChildID == studentID
}
