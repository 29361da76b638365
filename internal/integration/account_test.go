package integration_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/pas-gr3/cinema/internal/domain"
)

type AccountSuite struct {
	BaseSuite
}

func TestAccountSuite(t *testing.T) {
	suite.Run(t, new(AccountSuite))
}

func (s *AccountSuite) TestCreateAndGetRoundTrip() {
	ctx := context.Background()

	created, err := s.accounts.CreateClient(ctx, "ClientLoginNo1", "ClientPasswordNo1")
	s.Require().NoError(err)
	s.NotEqual(uuid.Nil, created.ID)
	s.True(created.Active)
	s.Equal(domain.RoleClient, created.Role)

	found, err := s.accounts.GetById(ctx, created.ID)
	s.Require().NoError(err)

	if diff := cmp.Diff(created, found); diff != "" {
		s.Failf("round trip mismatch", "(-want +got):\n%s", diff)
	}
}

func (s *AccountSuite) TestLoginUniqueAcrossRoles() {
	ctx := context.Background()

	_, err := s.accounts.CreateClient(ctx, "SharedLogin01", "ClientPasswordNo1")
	s.Require().NoError(err)

	_, err = s.accounts.CreateAdmin(ctx, "SharedLogin01", "AdminPasswordNo1")
	s.Require().Error(err)
	s.ErrorIs(err, domain.ErrDuplicateLogin)

	_, err = s.accounts.CreateStaff(ctx, "SharedLogin01", "StaffPasswordNo1")
	s.Require().Error(err)
	s.ErrorIs(err, domain.ErrDuplicateLogin)
}

func (s *AccountSuite) TestDuplicateClientLogin() {
	ctx := context.Background()

	_, err := s.accounts.CreateClient(ctx, "ClientLoginNo1", "ClientPasswordNo1")
	s.Require().NoError(err)

	_, err = s.accounts.CreateClient(ctx, "ClientLoginNo1", "OtherPasswordNo1")
	s.Require().Error(err)
	s.ErrorIs(err, domain.ErrDuplicateLogin)
}

func (s *AccountSuite) TestCreateValidation() {
	ctx := context.Background()

	_, err := s.accounts.CreateClient(ctx, "short", "ClientPasswordNo1")
	s.Require().Error(err)

	var validationErrs validator.ValidationErrors
	s.ErrorAs(err, &validationErrs)

	_, err = s.accounts.CreateClient(ctx, "Client Login No1", "ClientPasswordNo1")
	s.Require().Error(err)
	s.ErrorAs(err, &validationErrs)
}

func (s *AccountSuite) TestRoleScopedReads() {
	ctx := context.Background()

	staff, err := s.accounts.CreateStaff(ctx, "StaffLoginNo1", "StaffPasswordNo1")
	s.Require().NoError(err)

	found, err := s.accounts.GetByIdAndRole(ctx, staff.ID, domain.RoleStaff)
	s.Require().NoError(err)
	s.Equal(domain.RoleStaff, found.Role)

	_, err = s.accounts.GetByIdAndRole(ctx, staff.ID, domain.RoleAdmin)
	s.ErrorIs(err, domain.ErrAccountNotFound)

	_, err = s.accounts.GetByIdAndRole(ctx, staff.ID, domain.RoleClient)
	s.ErrorIs(err, domain.ErrAccountNotFound)

	// The untyped read still resolves the account under its true role.
	found, err = s.accounts.GetById(ctx, staff.ID)
	s.Require().NoError(err)
	s.Equal(domain.RoleStaff, found.Role)
}

func (s *AccountSuite) TestGetByLogin() {
	ctx := context.Background()

	admin, err := s.accounts.CreateAdmin(ctx, "AdminLoginNo1", "AdminPasswordNo1")
	s.Require().NoError(err)

	found, err := s.accounts.GetByLogin(ctx, "AdminLoginNo1")
	s.Require().NoError(err)
	s.Equal(admin.ID, found.ID)

	found, err = s.accounts.GetByLoginAndRole(ctx, "AdminLoginNo1", domain.RoleAdmin)
	s.Require().NoError(err)
	s.Equal(admin.ID, found.ID)

	_, err = s.accounts.GetByLoginAndRole(ctx, "AdminLoginNo1", domain.RoleClient)
	s.ErrorIs(err, domain.ErrAccountNotFound)

	_, err = s.accounts.GetByLogin(ctx, "NoSuchLoginNo1")
	s.ErrorIs(err, domain.ErrAccountNotFound)
}

func (s *AccountSuite) TestMatchingLoginPrefix() {
	ctx := context.Background()

	for _, login := range []string{"ClientLoginNo1", "ClientLoginNo2", "ClientLoginNo3"} {
		_, err := s.accounts.CreateClient(ctx, login, "ClientPasswordNo1")
		s.Require().NoError(err)
	}
	_, err := s.accounts.CreateAdmin(ctx, "AdminLoginNo1", "AdminPasswordNo1")
	s.Require().NoError(err)

	matches, err := s.accounts.GetAllMatchingLogin(ctx, "ClientLogin")
	s.Require().NoError(err)
	s.Len(matches, 3)

	matches, err = s.accounts.GetAllMatchingLoginByRole(ctx, "ClientLogin", domain.RoleClient)
	s.Require().NoError(err)
	s.Len(matches, 3)

	matches, err = s.accounts.GetAllMatchingLoginByRole(ctx, "ClientLogin", domain.RoleAdmin)
	s.Require().NoError(err)
	s.Empty(matches)

	// Case-sensitive: a lowercase prefix matches nothing.
	matches, err = s.accounts.GetAllMatchingLogin(ctx, "clientlogin")
	s.Require().NoError(err)
	s.NotNil(matches)
	s.Empty(matches)
}

func (s *AccountSuite) TestGetAllByRole() {
	ctx := context.Background()

	_, err := s.accounts.CreateClient(ctx, "ClientLoginNo1", "ClientPasswordNo1")
	s.Require().NoError(err)
	_, err = s.accounts.CreateAdmin(ctx, "AdminLoginNo1", "AdminPasswordNo1")
	s.Require().NoError(err)
	_, err = s.accounts.CreateStaff(ctx, "StaffLoginNo1", "StaffPasswordNo1")
	s.Require().NoError(err)

	all, err := s.accounts.GetAll(ctx)
	s.Require().NoError(err)
	s.Len(all, 3)

	admins, err := s.accounts.GetAllByRole(ctx, domain.RoleAdmin)
	s.Require().NoError(err)
	s.Len(admins, 1)
	s.Equal("AdminLoginNo1", admins[0].Login)
}

func (s *AccountSuite) TestUpdate() {
	ctx := context.Background()

	client, err := s.accounts.CreateClient(ctx, "ClientLoginNo1", "ClientPasswordNo1")
	s.Require().NoError(err)

	client.Password = "NewClientPassword"
	s.Require().NoError(s.accounts.Update(ctx, client))

	found, err := s.accounts.GetById(ctx, client.ID)
	s.Require().NoError(err)
	s.Equal("NewClientPassword", found.Password)

	missing := *client
	missing.ID = uuid.New()
	err = s.accounts.Update(ctx, &missing)
	s.ErrorIs(err, domain.ErrAccountNotFound)

	client.Login = "bad login"
	err = s.accounts.Update(ctx, client)
	s.Require().Error(err)

	var validationErrs validator.ValidationErrors
	s.ErrorAs(err, &validationErrs)
}

func (s *AccountSuite) TestActivateDeactivate() {
	ctx := context.Background()

	client, err := s.accounts.CreateClient(ctx, "ClientLoginNo1", "ClientPasswordNo1")
	s.Require().NoError(err)

	s.Require().NoError(s.accounts.Deactivate(ctx, client))

	found, err := s.accounts.GetById(ctx, client.ID)
	s.Require().NoError(err)
	s.False(found.Active)

	s.Require().NoError(s.accounts.Activate(ctx, client))

	found, err = s.accounts.GetById(ctx, client.ID)
	s.Require().NoError(err)
	s.True(found.Active)

	gone := &domain.Account{
		ID:       uuid.New(),
		Login:    "GhostLoginNo1",
		Password: "GhostPasswordNo1",
		Role:     domain.RoleClient,
	}

	err = s.accounts.Deactivate(ctx, gone)
	s.ErrorIs(err, domain.ErrDeactivation)
	s.ErrorIs(err, domain.ErrAccountNotFound)

	err = s.accounts.Activate(ctx, gone)
	s.ErrorIs(err, domain.ErrActivation)
}

func (s *AccountSuite) TestDelete() {
	ctx := context.Background()

	admin, err := s.accounts.CreateAdmin(ctx, "AdminLoginNo1", "AdminPasswordNo1")
	s.Require().NoError(err)

	// An admin cannot be removed through a client-scoped delete.
	err = s.accounts.Delete(ctx, admin.ID, domain.RoleClient)
	s.ErrorIs(err, domain.ErrRoleMismatch)

	_, err = s.accounts.GetById(ctx, admin.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.accounts.Delete(ctx, admin.ID, domain.RoleAdmin))

	_, err = s.accounts.GetById(ctx, admin.ID)
	s.ErrorIs(err, domain.ErrAccountNotFound)

	err = s.accounts.Delete(ctx, admin.ID, domain.RoleAdmin)
	s.ErrorIs(err, domain.ErrAccountNotFound)
}
