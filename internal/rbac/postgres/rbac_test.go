package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/KarlovS28/dela/internal/rbac"
)

func TestRBACRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "RBACRepository Suite")
}

type SQLiteRole struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	DisplayName string    `gorm:"column:display_name"`
	Description string    `gorm:"column:description"`
	IsSystem    bool      `gorm:"column:is_system;default:false"`
	IsSuperRole bool      `gorm:"column:is_super_role;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (SQLiteRole) TableName() string {
	return "roles"
}

type SQLitePermission struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Category    string    `gorm:"column:category"`
	DisplayName string    `gorm:"column:display_name"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (SQLitePermission) TableName() string {
	return "permissions"
}

type SQLiteRolePermission struct {
	RoleID       int64 `gorm:"primaryKey;column:role_id"`
	PermissionID int64 `gorm:"primaryKey;column:permission_id"`
}

func (SQLiteRolePermission) TableName() string {
	return "role_permissions"
}

type SQLiteUser struct {
	ID     int64 `gorm:"primaryKey"`
	Email  string
	RoleID int64 `gorm:"column:role_id"`
}

func (SQLiteUser) TableName() string {
	return "users"
}

var _ = Describe("RBACRepository", func() {
	var (
		db   *gorm.DB
		repo *RBACRepository
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteRole{}, &SQLitePermission{}, &SQLiteRolePermission{}, &SQLiteUser{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewRBACRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())
	})

	createRole := func(name string) *rbac.Role {
		role := &rbac.Role{Name: name, DisplayName: name}
		Expect(repo.CreateRole(role)).To(Succeed())
		return role
	}

	createPermission := func(name string) *SQLitePermission {
		p := &SQLitePermission{Name: name, Category: "test"}
		Expect(db.Create(p).Error).To(Succeed())
		return p
	}

	Describe("roles", func() {
		It("should round-trip a role by id and name", func() {
			role := createRole("auditor")

			byID, err := repo.GetRoleByID(role.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(byID.Name).To(Equal("auditor"))

			byName, err := repo.GetRoleByName("auditor")
			Expect(err).NotTo(HaveOccurred())
			Expect(byName.ID).To(Equal(role.ID))
		})

		It("should report existence", func() {
			role := createRole("auditor")

			exists, err := repo.RoleExists(role.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())

			exists, err = repo.RoleExists(99999)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})

		It("should count users holding the role", func() {
			role := createRole("auditor")
			Expect(db.Create(&SQLiteUser{Email: "a@dela.local", RoleID: role.ID}).Error).To(Succeed())
			Expect(db.Create(&SQLiteUser{Email: "b@dela.local", RoleID: role.ID}).Error).To(Succeed())

			count, err := repo.CountUsersWithRole(role.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(2)))
		})
	})

	Describe("grants", func() {
		It("should add, detect and remove a grant", func() {
			role := createRole("auditor")
			perm := createPermission(rbac.PermAuditView)

			has, err := repo.HasGrant(role.ID, perm.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(has).To(BeFalse())

			Expect(repo.AddGrant(role.ID, perm.ID)).To(Succeed())

			has, err = repo.HasGrant(role.ID, perm.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(has).To(BeTrue())

			loaded, err := repo.GetRoleByName("auditor")
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.HasPermission(rbac.PermAuditView)).To(BeTrue())

			Expect(repo.RemoveGrant(role.ID, perm.ID)).To(Succeed())

			has, err = repo.HasGrant(role.ID, perm.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(has).To(BeFalse())
		})
	})

	Describe("DeleteRole", func() {
		It("should drop the role and its grants but keep permission definitions", func() {
			role := createRole("auditor")
			perm := createPermission(rbac.PermAuditView)
			Expect(repo.AddGrant(role.ID, perm.ID)).To(Succeed())

			Expect(repo.DeleteRole(role.ID)).To(Succeed())

			_, err := repo.GetRoleByID(role.ID)
			Expect(err).To(HaveOccurred())

			var grants int64
			Expect(db.Model(&rbac.RolePermission{}).
				Where("role_id = ?", role.ID).
				Count(&grants).Error).To(Succeed())
			Expect(grants).To(BeZero())

			kept, err := repo.GetPermissionByID(perm.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Name).To(Equal(rbac.PermAuditView))
		})
	})
})
