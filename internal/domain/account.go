package domain

import (
	"context"

	"github.com/google/uuid"
)

// Role discriminates the three account variants sharing one collection. It is
// assigned at creation and never changes afterwards.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleAdmin || r == RoleStaff
}

type Account struct {
	ID       uuid.UUID
	Login    string `validate:"required,min=8,max=20,nowhitespace"`
	Password string `validate:"required,min=8,max=200,nowhitespace"`
	Active   bool
	Role     Role `validate:"required,oneof=client admin staff"`
}

// AccountRepository stores all three account variants in a single logical
// collection so login uniqueness holds globally, not per role. Role-scoped
// reads verify the stored discriminator after fetching; a document held under
// a different role is reported as ErrAccountNotFound.
type AccountRepository interface {
	CreateClient(ctx context.Context, login, password string) (*Account, error)
	CreateAdmin(ctx context.Context, login, password string) (*Account, error)
	CreateStaff(ctx context.Context, login, password string) (*Account, error)
	GetById(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByIdAndRole(ctx context.Context, id uuid.UUID, role Role) (*Account, error)
	GetByLogin(ctx context.Context, login string) (*Account, error)
	GetByLoginAndRole(ctx context.Context, login string, role Role) (*Account, error)
	GetAll(ctx context.Context) ([]*Account, error)
	GetAllByRole(ctx context.Context, role Role) ([]*Account, error)
	GetAllMatchingLogin(ctx context.Context, prefix string) ([]*Account, error)
	GetAllMatchingLoginByRole(ctx context.Context, prefix string, role Role) ([]*Account, error)
	Update(ctx context.Context, account *Account) error
	Activate(ctx context.Context, account *Account) error
	Deactivate(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id uuid.UUID, role Role) error
}
