package rbac_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/KarlovS28/dela/internal/audit"
	"github.com/KarlovS28/dela/internal/rbac"
)

func TestRBAC(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "RBAC Suite")
}

// Mock repository for testing
type mockRBACRepository struct {
	roles       map[int64]*rbac.Role
	rolesByName map[string]*rbac.Role
	permissions map[int64]*rbac.Permission
	grants      map[int64]map[int64]bool
	userCounts  map[int64]int64
	deleteError error
	nextRoleID  int64
}

func newMockRBACRepository() *mockRBACRepository {
	return &mockRBACRepository{
		roles:       make(map[int64]*rbac.Role),
		rolesByName: make(map[string]*rbac.Role),
		permissions: make(map[int64]*rbac.Permission),
		grants:      make(map[int64]map[int64]bool),
		userCounts:  make(map[int64]int64),
		nextRoleID:  1,
	}
}

func (m *mockRBACRepository) addRole(role *rbac.Role) *rbac.Role {
	if role.ID == 0 {
		role.ID = m.nextRoleID
		m.nextRoleID++
	}
	m.roles[role.ID] = role
	m.rolesByName[role.Name] = role
	return role
}

func (m *mockRBACRepository) addPermission(id int64, name string) *rbac.Permission {
	p := &rbac.Permission{ID: id, Name: name}
	m.permissions[id] = p
	return p
}

func (m *mockRBACRepository) GetAllPermissions() ([]*rbac.Permission, error) {
	out := make([]*rbac.Permission, 0, len(m.permissions))
	for _, p := range m.permissions {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRBACRepository) GetPermissionByID(id int64) (*rbac.Permission, error) {
	p, ok := m.permissions[id]
	if !ok {
		return nil, errors.New("permission not found")
	}
	return p, nil
}

func (m *mockRBACRepository) GetAllRoles() ([]*rbac.Role, error) {
	out := make([]*rbac.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRBACRepository) GetRoleByID(id int64) (*rbac.Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return nil, errors.New("role not found")
	}
	return r, nil
}

func (m *mockRBACRepository) GetRoleByName(name string) (*rbac.Role, error) {
	r, ok := m.rolesByName[name]
	if !ok {
		return nil, errors.New("role not found")
	}
	return r, nil
}

func (m *mockRBACRepository) CreateRole(role *rbac.Role) error {
	m.addRole(role)
	return nil
}

func (m *mockRBACRepository) UpdateRole(role *rbac.Role) error {
	m.roles[role.ID] = role
	return nil
}

func (m *mockRBACRepository) DeleteRole(id int64) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	role, ok := m.roles[id]
	if !ok {
		return errors.New("role not found")
	}
	delete(m.rolesByName, role.Name)
	delete(m.roles, id)
	delete(m.grants, id)
	return nil
}

func (m *mockRBACRepository) HasGrant(roleID, permissionID int64) (bool, error) {
	return m.grants[roleID][permissionID], nil
}

func (m *mockRBACRepository) AddGrant(roleID, permissionID int64) error {
	if m.grants[roleID] == nil {
		m.grants[roleID] = make(map[int64]bool)
	}
	m.grants[roleID][permissionID] = true

	role := m.roles[roleID]
	perm := m.permissions[permissionID]
	role.Permissions = append(role.Permissions, *perm)
	return nil
}

func (m *mockRBACRepository) RemoveGrant(roleID, permissionID int64) error {
	delete(m.grants[roleID], permissionID)

	role := m.roles[roleID]
	perm := m.permissions[permissionID]
	kept := role.Permissions[:0]
	for _, p := range role.Permissions {
		if p.Name != perm.Name {
			kept = append(kept, p)
		}
	}
	role.Permissions = kept
	return nil
}

func (m *mockRBACRepository) CountUsersWithRole(roleID int64) (int64, error) {
	return m.userCounts[roleID], nil
}

// mockRecorder captures audit entries for assertions.
type mockRecorder struct {
	entries []audit.Entry
}

func (m *mockRecorder) Record(_ context.Context, entry audit.Entry) {
	m.entries = append(m.entries, entry)
}

var _ = Describe("RBAC Service", func() {
	var (
		repo     *mockRBACRepository
		recorder *mockRecorder
		service  *rbac.Service
		ctx      context.Context
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	BeforeEach(func() {
		repo = newMockRBACRepository()
		recorder = &mockRecorder{}
		service = rbac.NewService(repo, recorder, testLogger)
		ctx = context.Background()
	})

	Describe("CreateRole", func() {
		It("creates a role with no permissions", func() {
			role, err := service.CreateRole(ctx, rbac.CreateRoleDTO{
				Name:        "auditor",
				DisplayName: "Auditor",
			}, 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(role.ID).To(BeNumerically(">", 0))
			Expect(role.Permissions).To(BeEmpty())
			Expect(role.IsSystem).To(BeFalse())
			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Action).To(Equal(audit.ActionCreate))
		})

		It("rejects a duplicate name", func() {
			repo.addRole(&rbac.Role{Name: "auditor"})

			_, err := service.CreateRole(ctx, rbac.CreateRoleDTO{Name: "auditor"}, 1)
			Expect(err).To(Equal(rbac.ErrRoleNameTaken))
			Expect(recorder.entries).To(BeEmpty())
		})
	})

	Describe("DeleteRole", func() {
		It("refuses to delete a system role", func() {
			role := repo.addRole(&rbac.Role{Name: "admin", IsSystem: true})

			err := service.DeleteRole(ctx, role.ID, 1)
			Expect(err).To(Equal(rbac.ErrSystemRole))
			Expect(repo.roles).To(HaveKey(role.ID))
		})

		It("refuses to delete a role still assigned to users", func() {
			role := repo.addRole(&rbac.Role{Name: "auditor"})
			repo.userCounts[role.ID] = 3

			err := service.DeleteRole(ctx, role.ID, 1)
			Expect(err).To(Equal(rbac.ErrRoleInUse))
		})

		It("deletes an unused custom role and audits it", func() {
			role := repo.addRole(&rbac.Role{Name: "auditor"})

			err := service.DeleteRole(ctx, role.ID, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.roles).NotTo(HaveKey(role.ID))
			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Action).To(Equal(audit.ActionDelete))
		})
	})

	Describe("GrantPermission", func() {
		var (
			role *rbac.Role
			perm *rbac.Permission
		)

		BeforeEach(func() {
			role = repo.addRole(&rbac.Role{Name: "auditor"})
			perm = repo.addPermission(10, rbac.PermAuditView)
		})

		It("grants and then authorizes", func() {
			allowed, err := service.RoleHasPermission("auditor", rbac.PermAuditView)
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeFalse())

			Expect(service.GrantPermission(ctx, role.ID, perm.ID, 1)).To(Succeed())

			allowed, err = service.RoleHasPermission("auditor", rbac.PermAuditView)
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeTrue())
		})

		It("treats a repeated grant as a no-op with a single audit entry", func() {
			Expect(service.GrantPermission(ctx, role.ID, perm.ID, 1)).To(Succeed())
			Expect(service.GrantPermission(ctx, role.ID, perm.ID, 1)).To(Succeed())

			Expect(role.Permissions).To(HaveLen(1))
			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Action).To(Equal(audit.ActionGrant))
		})
	})

	Describe("RevokePermission", func() {
		It("revokes a grant and denies afterwards", func() {
			role := repo.addRole(&rbac.Role{Name: "auditor"})
			perm := repo.addPermission(10, rbac.PermAuditView)
			Expect(service.GrantPermission(ctx, role.ID, perm.ID, 1)).To(Succeed())

			Expect(service.RevokePermission(ctx, role.ID, perm.ID, 1)).To(Succeed())

			allowed, err := service.RoleHasPermission("auditor", rbac.PermAuditView)
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeFalse())
		})

		It("treats revoking an absent grant as a no-op without auditing", func() {
			role := repo.addRole(&rbac.Role{Name: "auditor"})
			perm := repo.addPermission(10, rbac.PermAuditView)

			Expect(service.RevokePermission(ctx, role.ID, perm.ID, 1)).To(Succeed())
			Expect(recorder.entries).To(BeEmpty())
		})
	})

	Describe("Authorize", func() {
		It("allows a super role any permission, even unknown names", func() {
			repo.addRole(&rbac.Role{Name: "admin", IsSuperRole: true})

			Expect(service.Authorize("admin", rbac.PermEmployeesArchive)).To(BeTrue())
			Expect(service.Authorize("admin", "no.such.permission")).To(BeTrue())
		})

		It("denies an unknown role", func() {
			Expect(service.Authorize("ghost", rbac.PermEmployeesView)).To(BeFalse())
		})

		It("denies a role without the grant", func() {
			repo.addRole(&rbac.Role{Name: "user"})

			Expect(service.Authorize("user", rbac.PermEmployeesArchive)).To(BeFalse())
		})
	})
})
